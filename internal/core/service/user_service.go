package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bookly/booking-platform/internal/core/domain"
	"github.com/bookly/booking-platform/internal/core/ports"
)

type UserService struct {
	repo ports.IdentityRepository
	log  zerolog.Logger
}

func NewUserService(repo ports.IdentityRepository, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

// Profile returns the identity behind an authenticated principal. The
// lookup is fresh, so it reflects changes made after the token was issued.
func (s *UserService) Profile(ctx context.Context, principal domain.Principal) (*domain.Identity, error) {
	if !principal.Authenticated {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.FindByEmail(ctx, principal.Subject)
}

// ActivateMaster confirms a pending master account. Activating an already
// active master is a no-op.
func (s *UserService) ActivateMaster(ctx context.Context, id int64) (*domain.Identity, error) {
	identity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if identity.Role != domain.RoleMaster {
		return nil, domain.ErrNotMaster
	}
	if identity.Active {
		return identity, nil
	}

	if err := s.repo.SetActive(ctx, id, true); err != nil {
		return nil, fmt.Errorf("activate master %d: %w", id, err)
	}
	identity.Active = true

	s.log.Info().Int64("user_id", id).Msg("master activated")
	return identity, nil
}
