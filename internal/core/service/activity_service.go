package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bookly/booking-platform/internal/core/domain"
	"github.com/bookly/booking-platform/internal/core/ports"
)

type activityService struct {
	repo ports.ActivityRepository
	log  zerolog.Logger
}

// NewActivityService returns an ActivityService that persists each record.
func NewActivityService(repo ports.ActivityRepository, log zerolog.Logger) ports.ActivityService {
	return &activityService{repo: repo, log: log}
}

func (s *activityService) Process(ctx context.Context, a domain.Activity) error {
	if err := s.repo.Insert(ctx, &a); err != nil {
		return fmt.Errorf("persist activity: %w", err)
	}

	s.log.Debug().
		Str("email", a.Email).
		Str("kind", string(a.Kind)).
		Str("reason", a.Reason).
		Msg("activity recorded")
	return nil
}
