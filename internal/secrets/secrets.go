// Package secrets resolves the JWT signing secret. Production deployments
// keep it in AWS Secrets Manager; development and tests use a static value.
package secrets

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/sony/gobreaker"

	"github.com/medisure/claims-portal/internal/apperr"
)

// Provider yields the current signing secret.
type Provider interface {
	Get(ctx context.Context) (string, error)
}

// Static is a fixed-value provider for development and tests.
type Static string

// Get returns the static secret value.
func (s Static) Get(context.Context) (string, error) {
	if s == "" {
		return "", apperr.Dependency("jwt secret not configured", nil)
	}
	return string(s), nil
}

type secretsAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ManagerProvider fetches a secret from AWS Secrets Manager and caches it.
// The fetch runs behind a circuit breaker so a Secrets Manager outage fails
// fast instead of stalling every login.
type ManagerProvider struct {
	client  secretsAPI
	name    string
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker

	mu        sync.RWMutex
	value     string
	fetchedAt time.Time
}

// NewManagerProvider builds a cached Secrets Manager provider. A zero ttl
// caches the value for the process lifetime.
func NewManagerProvider(client *secretsmanager.Client, name string, ttl time.Duration) *ManagerProvider {
	return newManagerProvider(client, name, ttl)
}

func newManagerProvider(client secretsAPI, name string, ttl time.Duration) *ManagerProvider {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "SecretsManager",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &ManagerProvider{client: client, name: name, ttl: ttl, breaker: breaker}
}

// Get returns the cached secret, refreshing it from Secrets Manager when the
// cache is empty or stale.
func (p *ManagerProvider) Get(ctx context.Context) (string, error) {
	p.mu.RLock()
	value, fresh := p.value, p.isFresh()
	p.mu.RUnlock()
	if value != "" && fresh {
		return value, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.value != "" && p.isFresh() {
		return p.value, nil
	}

	result, err := p.breaker.Execute(func() (any, error) {
		out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(p.name),
		})
		if err != nil {
			return nil, err
		}
		if out.SecretString == nil || *out.SecretString == "" {
			return nil, apperr.Dependency("empty jwt secret", nil)
		}
		return *out.SecretString, nil
	})
	if err != nil {
		// Serve a stale value over failing the request outright.
		if p.value != "" {
			return p.value, nil
		}
		return "", apperr.Dependency("fetch jwt secret", err)
	}

	p.value = result.(string)
	p.fetchedAt = time.Now()
	return p.value, nil
}

func (p *ManagerProvider) isFresh() bool {
	if p.ttl <= 0 {
		return p.value != ""
	}
	return time.Since(p.fetchedAt) < p.ttl
}
