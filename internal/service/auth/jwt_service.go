package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService issues and checks the bearer tokens that scope API requests to
// one reader's library. Accounts live in an external identity system, so the
// service never sees credentials: it signs tokens for a user ID it is given
// and trusts any token carrying its own signature.
//
// Access tokens authorize /api/users/{userID} routes for the user in their
// subject. Refresh tokens are only accepted by the refresh endpoint, which
// trades one for a new pair.
type JWTService interface {
	// GenerateToken signs a short-lived access token for userID.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken checks an access token presented on a library request.
	// A valid refresh token is rejected with ErrWrongTokenType.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken signs a long-lived refresh token for userID.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateRefreshToken checks a token presented to the refresh endpoint.
	// Expired or malformed tokens yield ErrExpiredRefreshToken or
	// ErrInvalidRefreshToken; an access token yields ErrWrongTokenType.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the verified content of a token. UserID selects the library the
// bearer may read and change.
type Claims struct {
	UserID uuid.UUID
	// TokenType is "access" or "refresh".
	TokenType string

	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
