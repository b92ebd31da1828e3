// Package persistence provides the data storage abstraction layer for flows,
// clients, onboardings and notification logs.
package persistence

import (
	"context"
	"time"

	"github.com/launchpath/launchpath/pkg/models"
)

// Persistence aggregates the repositories of one storage backend.
type Persistence interface {
	FlowRepository() FlowRepository
	ClientRepository() ClientRepository
	OnboardingRepository() OnboardingRepository
	NotificationLogRepository() NotificationLogRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// FlowRepository stores flow templates with their ordered step templates.
type FlowRepository interface {
	List(ctx context.Context) ([]*models.Flow, error)
	GetByID(ctx context.Context, id string) (*models.Flow, error)
	Save(ctx context.Context, flow *models.Flow) error
	Delete(ctx context.Context, id string) error
}

// ClientRepository stores the provider's clients.
type ClientRepository interface {
	List(ctx context.Context) ([]*models.Client, error)
	GetByID(ctx context.Context, id string) (*models.Client, error)
	Save(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id string) error
}

// StepCompletion is the unit persisted when a step submission is accepted.
// Status, data and completed-at change together or not at all.
type StepCompletion struct {
	StepProgressID string
	Data           map[string]any
	CompletedAt    time.Time
}

// OnboardingRepository stores onboardings with their owned step progress
// records. Create persists the onboarding and its full step set atomically;
// Delete cascades to the owned steps.
type OnboardingRepository interface {
	List(ctx context.Context) ([]*models.Onboarding, error)
	GetByID(ctx context.Context, id string) (*models.Onboarding, error)
	GetByToken(ctx context.Context, token string) (*models.Onboarding, error)
	GetByClient(ctx context.Context, clientID string) ([]*models.Onboarding, error)
	ListActiveByFlow(ctx context.Context, flowID string) ([]*models.Onboarding, error)
	ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*models.Onboarding, error)

	Create(ctx context.Context, onboarding *models.Onboarding) error
	Delete(ctx context.Context, id string) error

	// CompleteStep transitions one step to COMPLETED with a conditional write
	// keyed on the step not already being COMPLETED, persists the recomputed
	// onboarding status in the same unit, and bumps last-activity. When the
	// recomputed status reaches COMPLETED for the first time it also stamps
	// the aggregate's completed-at and reports the transition edge, so the
	// completion cascade fires at most once per onboarding regardless of
	// write ordering. Returns ErrStepAlreadyCompleted when a concurrent or
	// repeated submission lost the race; callers treat that as a no-op,
	// never a corruption.
	CompleteStep(ctx context.Context, onboardingID string, completion StepCompletion) (*models.Onboarding, bool, error)

	TouchActivity(ctx context.Context, onboardingID string, at time.Time) error
}

// NotificationLogRepository stores dispatched notifications and answers the
// reminder dedup question.
type NotificationLogRepository interface {
	Record(ctx context.Context, entry *models.NotificationLog) error
	ListByOnboarding(ctx context.Context, onboardingID string) ([]*models.NotificationLog, error)

	// HasRecentNotification reports whether a notification of the given type
	// was recorded for the onboarding after the cutoff.
	HasRecentNotification(ctx context.Context, onboardingID string, notificationType models.NotificationType, since time.Time) (bool, error)
}
