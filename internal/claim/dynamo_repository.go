package claim

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/medisure/claims-portal/internal/apperr"
)

const (
	claimKeyPrefix = "CLAIM#"
	// ownerIndex is the GSI keyed on user_id for owner-based lookups.
	ownerIndex = "owner-index"
)

// claimRecord is the single-table item layout for a claim. The attribute is
// named claim_status because STATUS is a DynamoDB reserved word.
type claimRecord struct {
	PK           string  `dynamodbav:"PK"`
	ClaimID      string  `dynamodbav:"claim_id"`
	UserID       string  `dynamodbav:"user_id"`
	PatientID    string  `dynamodbav:"patient_id,omitempty"`
	Amount       float64 `dynamodbav:"amount"`
	Description  string  `dynamodbav:"description"`
	PolicyNumber string  `dynamodbav:"policy_number"`
	Status       string  `dynamodbav:"claim_status"`
	DocumentKey  string  `dynamodbav:"document_key,omitempty"`
	CreatedAt    string  `dynamodbav:"created_at"`
}

func claimPK(id string) string { return claimKeyPrefix + id }

func toClaimRecord(c Claim) claimRecord {
	return claimRecord{
		PK:           claimPK(c.ID),
		ClaimID:      c.ID,
		UserID:       c.UserID,
		PatientID:    c.PatientID,
		Amount:       c.Amount,
		Description:  c.Description,
		PolicyNumber: c.PolicyNumber,
		Status:       string(c.Status),
		DocumentKey:  c.DocumentKey,
		CreatedAt:    c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func fromClaimRecord(r claimRecord) Claim {
	createdAt, _ := time.Parse(time.RFC3339, r.CreatedAt)
	return Claim{
		ID:           r.ClaimID,
		UserID:       r.UserID,
		PatientID:    r.PatientID,
		Amount:       r.Amount,
		Description:  r.Description,
		PolicyNumber: r.PolicyNumber,
		Status:       Status(r.Status),
		DocumentKey:  r.DocumentKey,
		CreatedAt:    createdAt,
	}
}

// DynamoRepository implements Repository against the shared DynamoDB table.
type DynamoRepository struct {
	db    *dynamodb.Client
	table string
}

// NewDynamoRepository builds a DynamoDB-backed claim repository.
func NewDynamoRepository(db *dynamodb.Client, table string) *DynamoRepository {
	return &DynamoRepository{db: db, table: table}
}

// Create inserts a new claim item.
func (r *DynamoRepository) Create(ctx context.Context, claim Claim) error {
	item, err := attributevalue.MarshalMap(toClaimRecord(claim))
	if err != nil {
		return fmt.Errorf("marshal claim: %w", err)
	}
	_, err = r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var ccf *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return apperr.State("claim already exists")
		}
		return apperr.Dependency("put claim", err)
	}
	return nil
}

// FindByID fetches a claim by its identifier.
func (r *DynamoRepository) FindByID(ctx context.Context, id string) (Claim, error) {
	out, err := r.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       claimKey(id),
	})
	if err != nil {
		return Claim{}, apperr.Dependency("get claim", err)
	}
	if out.Item == nil {
		return Claim{}, apperr.NotFound("claim not found")
	}
	var rec claimRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return Claim{}, fmt.Errorf("unmarshal claim: %w", err)
	}
	return fromClaimRecord(rec), nil
}

// ListByOwner queries the owner GSI for the user's claims.
func (r *DynamoRepository) ListByOwner(ctx context.Context, userID string) ([]Claim, error) {
	var claims []Claim
	var startKey map[string]ddbtypes.AttributeValue
	for {
		out, err := r.db.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.table),
			IndexName:              aws.String(ownerIndex),
			KeyConditionExpression: aws.String("user_id = :u"),
			FilterExpression:       aws.String("begins_with(PK, :prefix)"),
			ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
				":u":      &ddbtypes.AttributeValueMemberS{Value: userID},
				":prefix": &ddbtypes.AttributeValueMemberS{Value: claimKeyPrefix},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, apperr.Dependency("query claims by owner", err)
		}
		page, err := unmarshalClaims(out.Items)
		if err != nil {
			return nil, err
		}
		claims = append(claims, page...)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	sortNewestFirst(claims)
	return claims, nil
}

// List scans claim items, optionally filtered by status.
func (r *DynamoRepository) List(ctx context.Context, status Status) ([]Claim, error) {
	filter := "begins_with(PK, :prefix)"
	values := map[string]ddbtypes.AttributeValue{
		":prefix": &ddbtypes.AttributeValueMemberS{Value: claimKeyPrefix},
	}
	if status != "" {
		filter += " AND claim_status = :s"
		values[":s"] = &ddbtypes.AttributeValueMemberS{Value: string(status)}
	}
	return r.scanClaims(ctx, filter, values)
}

// ListByPatient scans claim items for a patient identifier.
func (r *DynamoRepository) ListByPatient(ctx context.Context, patientID string) ([]Claim, error) {
	return r.scanClaims(ctx, "begins_with(PK, :prefix) AND patient_id = :p",
		map[string]ddbtypes.AttributeValue{
			":prefix": &ddbtypes.AttributeValueMemberS{Value: claimKeyPrefix},
			":p":      &ddbtypes.AttributeValueMemberS{Value: patientID},
		})
}

func (r *DynamoRepository) scanClaims(ctx context.Context, filter string, values map[string]ddbtypes.AttributeValue) ([]Claim, error) {
	var claims []Claim
	var startKey map[string]ddbtypes.AttributeValue
	for {
		out, err := r.db.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.table),
			FilterExpression:          aws.String(filter),
			ExpressionAttributeValues: values,
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, apperr.Dependency("scan claims", err)
		}
		page, err := unmarshalClaims(out.Items)
		if err != nil {
			return nil, err
		}
		claims = append(claims, page...)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	sortNewestFirst(claims)
	return claims, nil
}

// UpdateStatus performs a conditional update so a claim never leaves a
// terminal state, even under concurrent reviews.
func (r *DynamoRepository) UpdateStatus(ctx context.Context, id string, from, to Status) (Claim, error) {
	out, err := r.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 claimKey(id),
		UpdateExpression:    aws.String("SET claim_status = :to"),
		ConditionExpression: aws.String("attribute_exists(PK) AND claim_status = :from"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":to":   &ddbtypes.AttributeValueMemberS{Value: string(to)},
			":from": &ddbtypes.AttributeValueMemberS{Value: string(from)},
		},
		ReturnValues: ddbtypes.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return r.classifyConditionFailure(ctx, id, from)
		}
		return Claim{}, apperr.Dependency("update claim status", err)
	}
	var rec claimRecord
	if err := attributevalue.UnmarshalMap(out.Attributes, &rec); err != nil {
		return Claim{}, fmt.Errorf("unmarshal claim: %w", err)
	}
	return fromClaimRecord(rec), nil
}

// classifyConditionFailure distinguishes a missing claim from one that is no
// longer in the expected status.
func (r *DynamoRepository) classifyConditionFailure(ctx context.Context, id string, from Status) (Claim, error) {
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return Claim{}, err
	}
	return Claim{}, apperr.State(fmt.Sprintf("claim is %s, expected %s", existing.Status, from))
}

// SetDocumentKey records the document reference on an existing claim.
func (r *DynamoRepository) SetDocumentKey(ctx context.Context, id, key string) (Claim, error) {
	out, err := r.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 claimKey(id),
		UpdateExpression:    aws.String("SET document_key = :k"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":k": &ddbtypes.AttributeValueMemberS{Value: key},
		},
		ReturnValues: ddbtypes.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return Claim{}, apperr.NotFound("claim not found")
		}
		return Claim{}, apperr.Dependency("set document key", err)
	}
	var rec claimRecord
	if err := attributevalue.UnmarshalMap(out.Attributes, &rec); err != nil {
		return Claim{}, fmt.Errorf("unmarshal claim: %w", err)
	}
	return fromClaimRecord(rec), nil
}

func claimKey(id string) map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		"PK": &ddbtypes.AttributeValueMemberS{Value: claimPK(id)},
	}
}

func unmarshalClaims(items []map[string]ddbtypes.AttributeValue) ([]Claim, error) {
	var recs []claimRecord
	if err := attributevalue.UnmarshalListOfMaps(items, &recs); err != nil {
		return nil, fmt.Errorf("unmarshal claims: %w", err)
	}
	claims := make([]Claim, 0, len(recs))
	for _, rec := range recs {
		claims = append(claims, fromClaimRecord(rec))
	}
	return claims, nil
}

func sortNewestFirst(claims []Claim) {
	sort.Slice(claims, func(i, j int) bool {
		return claims[i].CreatedAt.After(claims[j].CreatedAt)
	})
}
