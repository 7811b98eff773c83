// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/dental-clinic/backend/internal/domain/entity"
)

// TokenClaims represents the claims extracted from an access token.
type TokenClaims struct {
	UserID    uint
	Role      entity.UserRole
	ExpiresAt time.Time
}

// TokenService defines the interface for access token operations.
// Tokens are issued by the clinic's authentication service; this backend
// only needs to validate them, and to mint them for tooling and tests.
type TokenService interface {
	// GenerateAccessToken creates a signed access token for a user acting in a role.
	GenerateAccessToken(ctx context.Context, userID uint, role entity.UserRole) (string, error)

	// ValidateAccessToken validates an access token and returns its claims.
	ValidateAccessToken(ctx context.Context, token string) (*TokenClaims, error)
}
