package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/medisure/claims-portal/internal/apperr"
	"github.com/medisure/claims-portal/internal/secrets"
	"github.com/medisure/claims-portal/internal/user"
)

// Claims is the JWT payload carried by every bearer token. Subject holds the
// user identifier.
type Claims struct {
	Role      string `json:"role"`
	PatientID string `json:"patient_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 bearer tokens. The signing secret is
// resolved per call so a rotated secret takes effect without a restart.
type TokenService struct {
	secrets secrets.Provider
	ttl     time.Duration
}

// NewTokenService builds a token service issuing tokens valid for ttl.
func NewTokenService(provider secrets.Provider, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{secrets: provider, ttl: ttl}
}

// TTL returns the configured token lifetime.
func (t *TokenService) TTL() time.Duration { return t.ttl }

// Issue signs a token for the given user.
func (t *TokenService) Issue(ctx context.Context, u user.User) (string, error) {
	secret, err := t.secrets.Get(ctx)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := Claims{
		Role:      u.Role,
		PatientID: u.PatientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Verify checks the token signature and expiry and resolves the actor it
// identifies. Any failure is an authentication error.
func (t *TokenService) Verify(ctx context.Context, tokenString string) (user.Actor, error) {
	secret, err := t.secrets.Get(ctx)
	if err != nil {
		return user.Actor{}, err
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return user.Actor{}, apperr.Authentication("invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Subject == "" || claims.Role == "" {
		return user.Actor{}, apperr.Authentication("invalid token claims")
	}

	return user.Actor{ID: claims.Subject, Role: claims.Role, PatientID: claims.PatientID}, nil
}
