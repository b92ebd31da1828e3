package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/launchpath/launchpath/pkg/eventbus"
	"github.com/launchpath/launchpath/pkg/events"
	"github.com/launchpath/launchpath/pkg/models"
	"github.com/launchpath/launchpath/pkg/persistence"
)

// Onboarding manages the provider-facing side of onboardings: assignment,
// listing and removal.
type Onboarding struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
}

// NewOnboarding creates a new onboarding service.
func NewOnboarding(logger *slog.Logger, persist persistence.Persistence, publisher eventbus.EventPublisher) *Onboarding {
	return &Onboarding{
		persistence: persist,
		publisher:   publisher,
		logger:      logger.With("module", "onboarding_service"),
	}
}

// AssignFlowRequest carries the parameters for assigning a flow to a client.
type AssignFlowRequest struct {
	ClientID string
	FlowID   string
	Priority models.Priority
	DueDate  *time.Time
}

// AssignFlow instantiates a published flow for a client: a fresh portal token
// and one NOT_STARTED step progress per step template, in flow order.
func (s *Onboarding) AssignFlow(ctx context.Context, req AssignFlowRequest) (*models.Onboarding, error) {
	client, err := s.persistence.ClientRepository().GetByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	if client == nil {
		return nil, ErrClientNotFound
	}

	flow, err := s.persistence.FlowRepository().GetByID(ctx, req.FlowID)
	if err != nil {
		return nil, err
	}

	if flow == nil {
		return nil, ErrFlowNotFound
	}

	if !flow.IsAssignable() {
		return nil, ErrFlowNotPublished
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}

	if !models.ValidPriority(priority) {
		return nil, NewValidationError(
			"assignFlow",
			"INVALID_PRIORITY",
			fmt.Sprintf("unknown priority '%s'", priority),
			ErrInvalidPriority,
		)
	}

	token, err := models.NewPortalToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate portal token: %w", err)
	}

	now := time.Now().UTC()

	onboarding := &models.Onboarding{
		ID:             uuid.New().String(),
		ClientID:       client.ID,
		FlowID:         flow.ID,
		Status:         models.OnboardingStatusNotStarted,
		PortalToken:    token,
		Priority:       priority,
		DueDate:        req.DueDate,
		LastActivityAt: now,
		CreatedAt:      now,
	}

	for _, step := range flow.Steps {
		onboarding.Steps = append(onboarding.Steps, &models.StepProgress{
			ID:           uuid.New().String(),
			OnboardingID: onboarding.ID,
			StepID:       step.ID,
			Step:         step,
			Status:       models.StepProgressNotStarted,
		})
	}

	if err := s.persistence.OnboardingRepository().Create(ctx, onboarding); err != nil {
		return nil, fmt.Errorf("failed to create onboarding: %w", err)
	}

	s.publish(ctx, onboarding.ID, events.OnboardingAssigned{
		BaseEvent: events.NewBaseEvent(events.OnboardingAssignedEvent, onboarding.ID),
		ClientID:  client.ID,
		FlowID:    flow.ID,
	})

	return onboarding, nil
}

// List retrieves all onboardings.
func (s *Onboarding) List(ctx context.Context) ([]*models.Onboarding, error) {
	onboardings, err := s.persistence.OnboardingRepository().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list onboardings: %w", err)
	}

	return onboardings, nil
}

// FetchByID retrieves an onboarding by its ID.
func (s *Onboarding) FetchByID(ctx context.Context, id string) (*models.Onboarding, error) {
	onboarding, err := s.persistence.OnboardingRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if onboarding == nil {
		return nil, ErrOnboardingNotFound
	}

	return onboarding, nil
}

// FetchByClient retrieves the onboardings assigned to one client.
func (s *Onboarding) FetchByClient(ctx context.Context, clientID string) ([]*models.Onboarding, error) {
	onboardings, err := s.persistence.OnboardingRepository().GetByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list onboardings of client %s: %w", clientID, err)
	}

	return onboardings, nil
}

// Delete removes an onboarding and its step progress.
func (s *Onboarding) Delete(ctx context.Context, id string) error {
	_, err := s.FetchByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.persistence.OnboardingRepository().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete onboarding: %w", err)
	}

	return nil
}

// publish emits an event best-effort. State changes are already persisted by
// the time events go out, so a broker hiccup is logged, not propagated.
func (s *Onboarding) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(ctx, key, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			"event_type", event.GetType(), "onboarding_id", key, "error", err)
	}
}
