package claim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medisure/claims-portal/internal/apperr"
)

const claimColumns = `id, user_id, COALESCE(patient_id, ''), amount, description, policy_number, status, COALESCE(document_key, ''), created_at`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed claim repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new claim.
func (r *PostgresRepository) Create(ctx context.Context, claim Claim) error {
	_, err := r.db.Exec(ctx, `INSERT INTO claims (id, user_id, patient_id, amount, description, policy_number, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		claim.ID, claim.UserID, nullable(claim.PatientID), claim.Amount, claim.Description,
		claim.PolicyNumber, string(claim.Status), claim.CreatedAt.UTC())
	if err != nil {
		return apperr.Dependency("insert claim", err)
	}
	return nil
}

// FindByID fetches a claim by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Claim, error) {
	row := r.db.QueryRow(ctx, `SELECT `+claimColumns+` FROM claims WHERE id = $1`, id)
	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Claim{}, apperr.NotFound("claim not found")
		}
		return Claim{}, apperr.Dependency("query claim", err)
	}
	return claim, nil
}

// ListByOwner returns a user's claims, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string) ([]Claim, error) {
	return r.list(ctx, `SELECT `+claimColumns+` FROM claims WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// List returns all claims, optionally filtered by status, newest first.
func (r *PostgresRepository) List(ctx context.Context, status Status) ([]Claim, error) {
	if status == "" {
		return r.list(ctx, `SELECT `+claimColumns+` FROM claims ORDER BY created_at DESC`)
	}
	return r.list(ctx, `SELECT `+claimColumns+` FROM claims WHERE status = $1 ORDER BY created_at DESC`, string(status))
}

// ListByPatient returns a patient's claims, newest first.
func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID string) ([]Claim, error) {
	return r.list(ctx, `SELECT `+claimColumns+` FROM claims WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]Claim, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Dependency("query claims", err)
	}
	defer rows.Close()

	var claims []Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, apperr.Dependency("scan claim row", err)
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Dependency("iterate claims", err)
	}
	return claims, nil
}

// UpdateStatus transitions the claim only while it is still in the expected
// status. The WHERE clause makes the check-and-set a single atomic statement.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, from, to Status) (Claim, error) {
	row := r.db.QueryRow(ctx, `UPDATE claims SET status = $1 WHERE id = $2 AND status = $3 RETURNING `+claimColumns,
		string(to), id, string(from))
	claim, err := scanClaim(row)
	if err == nil {
		return claim, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Claim{}, apperr.Dependency("update claim status", err)
	}

	existing, ferr := r.FindByID(ctx, id)
	if ferr != nil {
		return Claim{}, ferr
	}
	return Claim{}, apperr.State(fmt.Sprintf("claim is %s, expected %s", existing.Status, from))
}

// SetDocumentKey records the document reference on an existing claim.
func (r *PostgresRepository) SetDocumentKey(ctx context.Context, id, key string) (Claim, error) {
	row := r.db.QueryRow(ctx, `UPDATE claims SET document_key = $1 WHERE id = $2 RETURNING `+claimColumns, key, id)
	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Claim{}, apperr.NotFound("claim not found")
		}
		return Claim{}, apperr.Dependency("set document key", err)
	}
	return claim, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (Claim, error) {
	var (
		claim     Claim
		status    string
		createdAt time.Time
	)
	if err := row.Scan(&claim.ID, &claim.UserID, &claim.PatientID, &claim.Amount, &claim.Description,
		&claim.PolicyNumber, &status, &claim.DocumentKey, &createdAt); err != nil {
		return Claim{}, err
	}
	claim.Status = Status(status)
	claim.CreatedAt = createdAt.UTC()
	return claim, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
