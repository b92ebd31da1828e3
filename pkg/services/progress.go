package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/launchpath/launchpath/pkg/cache"
	"github.com/launchpath/launchpath/pkg/eventbus"
	"github.com/launchpath/launchpath/pkg/events"
	"github.com/launchpath/launchpath/pkg/models"
	"github.com/launchpath/launchpath/pkg/persistence"
	"github.com/launchpath/launchpath/pkg/steps"
)

const tokenCacheTTL = 15 * time.Minute

// Progress is the portal-facing service: it authenticates portal tokens and
// drives the step progress state machine.
type Progress struct {
	persistence persistence.Persistence
	registry    *steps.Registry
	publisher   eventbus.EventPublisher
	tokens      cache.TokenCache
	logger      *slog.Logger
}

// NewProgress creates a new progress service.
func NewProgress(
	logger *slog.Logger,
	persist persistence.Persistence,
	registry *steps.Registry,
	publisher eventbus.EventPublisher,
	tokens cache.TokenCache,
) *Progress {
	if tokens == nil {
		tokens = cache.NewNoopTokenCache()
	}

	return &Progress{
		persistence: persist,
		registry:    registry,
		publisher:   publisher,
		tokens:      tokens,
		logger:      logger.With("module", "progress_service"),
	}
}

// Authenticate resolves a portal token to its onboarding. Every failure is
// ErrUnauthorized; the portal never learns whether a token is malformed,
// revoked or simply wrong.
func (s *Progress) Authenticate(ctx context.Context, token string) (*models.Onboarding, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	if id := s.tokens.Get(ctx, token); id != "" {
		onboarding, err := s.persistence.OnboardingRepository().GetByID(ctx, id)
		if err == nil && onboarding != nil && onboarding.PortalToken == token {
			return onboarding, nil
		}

		s.tokens.Invalidate(ctx, token)
	}

	onboarding, err := s.persistence.OnboardingRepository().GetByToken(ctx, token)
	if err != nil {
		if persistence.IsOnboardingNotFound(err) {
			return nil, ErrUnauthorized
		}

		return nil, fmt.Errorf("failed to resolve portal token: %w", err)
	}

	s.tokens.Set(ctx, token, onboarding.ID, tokenCacheTTL)

	return onboarding, nil
}

// SubmitStepResult is the outcome of an accepted (or idempotently ignored)
// step submission.
type SubmitStepResult struct {
	Onboarding   *models.Onboarding
	StepProgress *models.StepProgress
	// AllCompleted is true only on the submission that transitioned the whole
	// onboarding to COMPLETED.
	AllCompleted bool
}

// SubmitStep validates and persists one step submission.
//
// Submitting to an already-COMPLETED step returns success without mutating
// anything: the first accepted submission's data and timestamps are
// immutable. A rejected submission leaves the step untouched.
func (s *Progress) SubmitStep(ctx context.Context, token, stepProgressID string, data map[string]any) (*SubmitStepResult, error) {
	onboarding, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	stepProgress := onboarding.StepProgressByID(stepProgressID)
	if stepProgress == nil {
		return nil, ErrInvalidStep
	}

	if stepProgress.Status == models.StepProgressCompleted {
		return &SubmitStepResult{
			Onboarding:   onboarding,
			StepProgress: stepProgress,
			AllCompleted: false,
		}, nil
	}

	if stepProgress.Step == nil {
		return nil, fmt.Errorf("step progress %s has no step template", stepProgressID)
	}

	validated, verrs, err := s.registry.ValidateSubmission(stepProgress.Step.Type, stepProgress.Step.Config, data)
	if err != nil {
		return nil, fmt.Errorf("failed to validate submission: %w", err)
	}

	if len(verrs) > 0 {
		return nil, &StepValidationError{Errors: verrs}
	}

	now := time.Now().UTC()

	updated, completedNow, err := s.persistence.OnboardingRepository().CompleteStep(ctx, onboarding.ID, persistence.StepCompletion{
		StepProgressID: stepProgressID,
		Data:           validated,
		CompletedAt:    now,
	})
	if err != nil {
		// A concurrent submission won the race. The step is COMPLETED with the
		// winner's data, which is exactly the idempotent-success contract.
		if errors.Is(err, persistence.ErrStepAlreadyCompleted) {
			current, fetchErr := s.persistence.OnboardingRepository().GetByID(ctx, onboarding.ID)
			if fetchErr != nil || current == nil {
				return nil, fmt.Errorf("failed to reload onboarding %s: %w", onboarding.ID, fetchErr)
			}

			return &SubmitStepResult{
				Onboarding:   current,
				StepProgress: current.StepProgressByID(stepProgressID),
				AllCompleted: false,
			}, nil
		}

		if persistence.IsStepProgressNotFound(err) {
			return nil, ErrInvalidStep
		}

		return nil, fmt.Errorf("failed to complete step: %w", err)
	}

	completedStep := updated.StepProgressByID(stepProgressID)

	stepEvent := events.StepCompleted{
		BaseEvent:      events.NewBaseEvent(events.StepCompletedEvent, updated.ID),
		StepProgressID: stepProgressID,
		Progress:       updated.Progress(),
	}
	if completedStep != nil && completedStep.Step != nil {
		stepEvent.StepID = completedStep.StepID
		stepEvent.StepType = completedStep.Step.Type
	}

	s.publish(ctx, updated.ID, stepEvent)

	if completedNow {
		completedAt := now
		if updated.CompletedAt != nil {
			completedAt = *updated.CompletedAt
		}

		s.publish(ctx, updated.ID, events.OnboardingCompleted{
			BaseEvent:   events.NewBaseEvent(events.OnboardingCompletedEvent, updated.ID),
			ClientID:    updated.ClientID,
			FlowID:      updated.FlowID,
			CompletedAt: completedAt,
		})
	}

	return &SubmitStepResult{
		Onboarding:   updated,
		StepProgress: completedStep,
		AllCompleted: completedNow,
	}, nil
}

func (s *Progress) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(ctx, key, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			"event_type", event.GetType(), "onboarding_id", key, "error", err)
	}
}
