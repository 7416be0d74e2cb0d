// Package events publishes claim lifecycle events to a queue. Downstream
// processing (document analysis, notifications) consumes from the queue; no
// consumer ships with the portal.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/medisure/claims-portal/internal/apperr"
)

const (
	// ActionAnalyzeClaim asks downstream processing to inspect an uploaded document.
	ActionAnalyzeClaim = "ANALYZE_CLAIM"
	// ActionClaimDecided records an admin approving or rejecting a claim.
	ActionClaimDecided = "CLAIM_DECIDED"
)

// Event describes a claim lifecycle occurrence.
type Event struct {
	Action    string `json:"action"`
	ClaimID   string `json:"claim_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Key       string `json:"key,omitempty"`
	Status    string `json:"status,omitempty"`
	Timestamp string `json:"timestamp"`
}

// DocumentUploaded builds the event emitted after a document lands in storage.
func DocumentUploaded(claimID, userID, key string) Event {
	return Event{
		Action:    ActionAnalyzeClaim,
		ClaimID:   claimID,
		UserID:    userID,
		Key:       key,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ClaimDecided builds the event emitted after an admin decision.
func ClaimDecided(claimID, status string) Event {
	return Event{
		Action:    ActionClaimDecided,
		ClaimID:   claimID,
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Publisher delivers events to downstream systems.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type sqsAPI interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher sends events as JSON messages to an SQS queue.
type SQSPublisher struct {
	client   sqsAPI
	queueURL string
}

// NewSQSPublisher builds a queue-backed publisher.
func NewSQSPublisher(client *sqs.Client, queueURL string) *SQSPublisher {
	return &SQSPublisher{client: client, queueURL: queueURL}
}

// Publish serializes the event and enqueues it.
func (p *SQSPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return apperr.Dependency("send claim event", err)
	}
	return nil
}

// LogPublisher is a stub implementation that writes events to the logger.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher constructs a logging publisher stub.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish writes the event to the structured logger.
func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	if p == nil || p.logger == nil {
		return nil
	}
	p.logger.Info("claim event",
		"action", event.Action,
		"claim_id", event.ClaimID,
		"status", event.Status,
		"key", event.Key,
	)
	return nil
}
