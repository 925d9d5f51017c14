package ports

import (
	"context"
	"time"

	"github.com/bookly/booking-platform/internal/core/domain"
)

// PasswordHasher hashes and verifies passwords. Verify never fails for a
// mismatching password; it simply returns false.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenClaims is the decoded payload of an access or refresh token.
// Refresh tokens only populate Subject and the time fields.
type TokenClaims struct {
	Subject   string
	UserID    int64
	Role      domain.Role
	FirstName string
	LastName  string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer mints and checks the two token kinds. Validation never
// returns an error: any defect collapses to false. Extraction fails on a
// token that would not validate.
type TokenIssuer interface {
	IssueAccessToken(identity *domain.Identity) (string, error)
	IssueRefreshToken(identity *domain.Identity) (string, error)
	ValidateAccessToken(token string) bool
	ValidateRefreshToken(token string) bool
	ExtractAccessClaims(token string) (*TokenClaims, error)
	ExtractRefreshClaims(token string) (*TokenClaims, error)
}

// AccessTokenValidator is the subset of TokenIssuer the request
// authenticator depends on.
type AccessTokenValidator interface {
	ValidateAccessToken(token string) bool
	ExtractAccessClaims(token string) (*TokenClaims, error)
}

// RefreshTokenStore tracks the latest refresh token handed out per subject.
type RefreshTokenStore interface {
	Save(ctx context.Context, subject, token string, ttl time.Duration) error
	// Matches reports whether token is the one currently recorded for subject.
	Matches(ctx context.Context, subject, token string) (bool, error)
	Revoke(ctx context.Context, subject string) error
}
