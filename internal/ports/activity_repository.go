package ports

import (
	"context"
	"daylog-service/internal/domain"
	"time"
)

// Snapshot is the full tracker state used by export and import.
type Snapshot struct {
	Settings     domain.Settings
	Activities   []domain.Activity
	CurrentSleep domain.SleepSession
}

// Port: persistence for the activity tracker.
type ActivityRepository interface {
	GetSettings(ctx context.Context) (domain.Settings, error)
	UpdateSettings(ctx context.Context, s domain.Settings) error

	ListActivities(ctx context.Context, f domain.ActivityFilter) ([]domain.Activity, error)
	// Return one activity, or domain.ErrNotFound.
	GetActivity(ctx context.Context, id int64) (*domain.Activity, error)
	CreateActivity(ctx context.Context, a *domain.Activity) (*domain.Activity, error)
	UpdateActivity(ctx context.Context, a *domain.Activity) (*domain.Activity, error)
	DeleteActivity(ctx context.Context, id int64) error

	GetSleepSession(ctx context.Context) (domain.SleepSession, error)
	// Persist an Idle -> Active transition.
	StartSleep(ctx context.Context, at time.Time) (domain.SleepSession, error)
	// Persist an Active -> Idle transition and the completed sleep, atomically.
	EndSleep(ctx context.Context, at time.Time) (*domain.Activity, error)

	SleepAggregate(ctx context.Context, day domain.DayBounds) (domain.SleepAggregate, error)
	FeedAggregate(ctx context.Context, day domain.DayBounds) (domain.FeedAggregate, error)
	DiaperAggregate(ctx context.Context, day domain.DayBounds) (domain.DiaperAggregate, error)
	// Return the end time of the most recently completed sleep, or nil.
	LastSleepEnd(ctx context.Context) (*time.Time, error)
	// Return wake-window pairs for the n most recent sleeps.
	WakeWindowPairs(ctx context.Context, n int) ([]domain.WakeWindowPair, error)

	Export(ctx context.Context) (Snapshot, error)
	// Apply settings (when non-nil) and append activities in one transaction.
	Import(ctx context.Context, settings *domain.Settings, activities []domain.Activity) error
	ClearAll(ctx context.Context) error
}
