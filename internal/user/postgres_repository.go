package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medisure/claims-portal/internal/apperr"
)

const uniqueViolation = "23505"

// PostgresRepository implements Repository using PostgreSQL, for deployments
// that run against a relational store instead of DynamoDB.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	_, err := r.db.Exec(ctx, `INSERT INTO users (id, email, name, role, patient_id, password_hash, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.Name, user.Role, nullable(user.PatientID), user.PasswordHash, user.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.Validation("email already registered")
		}
		return apperr.Dependency("insert user", err)
	}
	return nil
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	return r.findBy(ctx, `WHERE id = $1`, id)
}

// FindByEmail fetches a user by email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.findBy(ctx, `WHERE email = $1`, email)
}

// FindByPatientID fetches a user by patient identifier.
func (r *PostgresRepository) FindByPatientID(ctx context.Context, patientID string) (User, error) {
	return r.findBy(ctx, `WHERE patient_id = $1`, patientID)
}

func (r *PostgresRepository) findBy(ctx context.Context, where string, arg any) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, name, role, COALESCE(patient_id, ''), password_hash, created_at FROM users `+where, arg)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.NotFound("user not found")
		}
		return User{}, apperr.Dependency("query user", err)
	}
	return user, nil
}

// List returns all users.
func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT id, email, name, role, COALESCE(patient_id, ''), password_hash, created_at FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperr.Dependency("query users", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperr.Dependency("scan user row", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Dependency("iterate users", err)
	}
	return users, nil
}

// Delete removes a user record.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperr.Dependency("delete user", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var (
		user      User
		createdAt time.Time
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.PatientID, &user.PasswordHash, &createdAt); err != nil {
		return User{}, err
	}
	user.CreatedAt = createdAt.UTC()
	return user, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
