package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/medisure/claims-portal/internal/apperr"
)

const userKeyPrefix = "USER#"

// userRecord is the single-table item layout for a user. The PK prefix
// separates user items from claim items in the shared table.
type userRecord struct {
	PK           string `dynamodbav:"PK"`
	UserID       string `dynamodbav:"user_id"`
	Email        string `dynamodbav:"email"`
	Name         string `dynamodbav:"name"`
	Role         string `dynamodbav:"role"`
	PatientID    string `dynamodbav:"patient_id,omitempty"`
	PasswordHash string `dynamodbav:"password_hash"`
	CreatedAt    string `dynamodbav:"created_at"`
}

func userPK(id string) string { return userKeyPrefix + id }

func toUserRecord(u User) userRecord {
	return userRecord{
		PK:           userPK(u.ID),
		UserID:       u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		PatientID:    u.PatientID,
		PasswordHash: string(u.PasswordHash),
		CreatedAt:    u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func fromUserRecord(r userRecord) User {
	createdAt, _ := time.Parse(time.RFC3339, r.CreatedAt)
	return User{
		ID:           r.UserID,
		Email:        r.Email,
		Name:         r.Name,
		Role:         r.Role,
		PatientID:    r.PatientID,
		PasswordHash: []byte(r.PasswordHash),
		CreatedAt:    createdAt,
	}
}

// DynamoRepository implements Repository against the shared DynamoDB table.
type DynamoRepository struct {
	db    *dynamodb.Client
	table string
}

// NewDynamoRepository builds a DynamoDB-backed user repository.
func NewDynamoRepository(db *dynamodb.Client, table string) *DynamoRepository {
	return &DynamoRepository{db: db, table: table}
}

// Create inserts a new user item, refusing to overwrite an existing one.
func (r *DynamoRepository) Create(ctx context.Context, user User) error {
	item, err := attributevalue.MarshalMap(toUserRecord(user))
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var ccf *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return apperr.Validation("user already exists")
		}
		return apperr.Dependency("put user", err)
	}
	return nil
}

// FindByID fetches a user by its identifier.
func (r *DynamoRepository) FindByID(ctx context.Context, id string) (User, error) {
	out, err := r.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]ddbtypes.AttributeValue{
			"PK": &ddbtypes.AttributeValueMemberS{Value: userPK(id)},
		},
	})
	if err != nil {
		return User{}, apperr.Dependency("get user", err)
	}
	if out.Item == nil {
		return User{}, apperr.NotFound("user not found")
	}
	var rec userRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return User{}, fmt.Errorf("unmarshal user: %w", err)
	}
	return fromUserRecord(rec), nil
}

// FindByEmail scans user items for a matching email. Emails are not indexed;
// the table stays small enough that a filtered scan is acceptable.
func (r *DynamoRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.findByAttr(ctx, "email", email)
}

// FindByPatientID scans user items for a matching patient identifier.
func (r *DynamoRepository) FindByPatientID(ctx context.Context, patientID string) (User, error) {
	return r.findByAttr(ctx, "patient_id", patientID)
}

func (r *DynamoRepository) findByAttr(ctx context.Context, attr, value string) (User, error) {
	users, err := r.scanUsers(ctx, aws.String(fmt.Sprintf("begins_with(PK, :prefix) AND %s = :v", attr)),
		map[string]ddbtypes.AttributeValue{
			":prefix": &ddbtypes.AttributeValueMemberS{Value: userKeyPrefix},
			":v":      &ddbtypes.AttributeValueMemberS{Value: value},
		})
	if err != nil {
		return User{}, err
	}
	if len(users) == 0 {
		return User{}, apperr.NotFound("user not found")
	}
	return users[0], nil
}

// List returns every user item in the table.
func (r *DynamoRepository) List(ctx context.Context) ([]User, error) {
	return r.scanUsers(ctx, aws.String("begins_with(PK, :prefix)"),
		map[string]ddbtypes.AttributeValue{
			":prefix": &ddbtypes.AttributeValueMemberS{Value: userKeyPrefix},
		})
}

func (r *DynamoRepository) scanUsers(ctx context.Context, filter *string, values map[string]ddbtypes.AttributeValue) ([]User, error) {
	var users []User
	var startKey map[string]ddbtypes.AttributeValue
	for {
		out, err := r.db.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.table),
			FilterExpression:          filter,
			ExpressionAttributeValues: values,
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, apperr.Dependency("scan users", err)
		}
		var recs []userRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &recs); err != nil {
			return nil, fmt.Errorf("unmarshal users: %w", err)
		}
		for _, rec := range recs {
			users = append(users, fromUserRecord(rec))
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return users, nil
}

// Delete removes a user item.
func (r *DynamoRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key: map[string]ddbtypes.AttributeValue{
			"PK": &ddbtypes.AttributeValueMemberS{Value: userPK(id)},
		},
	})
	if err != nil {
		return apperr.Dependency("delete user", err)
	}
	return nil
}
