package ports

import (
	"context"

	"github.com/bookly/booking-platform/internal/core/domain"
)

// TokenPair is the result of login and refresh. An empty AccessToken from
// Refresh means the refresh was refused.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterInput carries the data for a public sign-up.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Identity, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	// Logout revokes the caller's refresh token. refreshToken may be empty
	// when the principal is authenticated.
	Logout(ctx context.Context, principal domain.Principal, refreshToken string) error
}

// UserService exposes account operations beyond authentication.
type UserService interface {
	Profile(ctx context.Context, principal domain.Principal) (*domain.Identity, error)
	ActivateMaster(ctx context.Context, id int64) (*domain.Identity, error)
}

// IDGenerator yields unique numeric identity ids.
type IDGenerator interface {
	NextID() int64
}
