package ports

import (
	"context"

	"github.com/bookly/booking-platform/internal/core/domain"
)

// IdentityRepository defines persistence of registered identities.
// Lookups return domain.ErrUserNotFound when nothing matches.
type IdentityRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	FindByID(ctx context.Context, id int64) (*domain.Identity, error)
	// Create stores a new identity. A duplicate email yields domain.ErrUserExists.
	Create(ctx context.Context, identity *domain.Identity) error
	SetActive(ctx context.Context, id int64, active bool) error
}
