package ports

import (
	"context"

	"github.com/bookly/booking-platform/internal/core/domain"
)

// ActivityRepository persists the authentication audit trail.
type ActivityRepository interface {
	Insert(ctx context.Context, activity *domain.Activity) error
}

// ActivityService handles one dequeued activity record.
type ActivityService interface {
	Process(ctx context.Context, activity domain.Activity) error
}

// ActivityRecorder accepts activity records for asynchronous persistence.
// Record must not block the caller.
type ActivityRecorder interface {
	Record(activity domain.Activity)
}
