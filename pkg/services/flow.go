package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/launchpath/launchpath/pkg/models"
	"github.com/launchpath/launchpath/pkg/persistence"
	"github.com/launchpath/launchpath/pkg/steps"
)

// Flow manages onboarding flow templates.
type Flow struct {
	persistence persistence.Persistence
	registry    *steps.Registry
	validator   *validator.Validate
}

// NewFlow creates a new flow service.
func NewFlow(persist persistence.Persistence, registry *steps.Registry) *Flow {
	return &Flow{
		persistence: persist,
		registry:    registry,
		validator:   validator.New(),
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Flow) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List retrieves all flows.
func (s *Flow) List(ctx context.Context) ([]*models.Flow, error) {
	flows, err := s.persistence.FlowRepository().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}

	return flows, nil
}

// FetchByID retrieves a flow by its ID.
func (s *Flow) FetchByID(ctx context.Context, id string) (*models.Flow, error) {
	flow, err := s.persistence.FlowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if flow == nil {
		return nil, ErrFlowNotFound
	}

	return flow, nil
}

// Create adds a new flow in draft status.
func (s *Flow) Create(ctx context.Context, flow *models.Flow) (*models.Flow, error) {
	now := time.Now().UTC()
	flow.ID = uuid.New().String()
	flow.CreatedAt = now
	flow.UpdatedAt = now
	flow.PublishedAt = nil

	if flow.Status == "" {
		flow.Status = models.FlowStatusDraft
	}

	if err := s.validateFlow(flow); err != nil {
		return nil, err
	}

	if err := s.persistence.FlowRepository().Save(ctx, flow); err != nil {
		return nil, fmt.Errorf("failed to create flow: %w", err)
	}

	return flow, nil
}

// Update modifies an existing flow. Step edits are rejected while any
// onboarding still references the flow; name and description stay editable so
// a typo fix never requires re-assigning clients.
func (s *Flow) Update(ctx context.Context, flowID string, flow *models.Flow) (*models.Flow, error) {
	existing, err := s.FetchByID(ctx, flowID)
	if err != nil {
		return nil, err
	}

	flow.ID = flowID
	flow.Status = existing.Status
	flow.CreatedAt = existing.CreatedAt
	flow.PublishedAt = existing.PublishedAt
	flow.UpdatedAt = time.Now().UTC()

	if err := s.validateFlow(flow); err != nil {
		return nil, err
	}

	if !stepsEqual(existing.Steps, flow.Steps) {
		active, err := s.persistence.OnboardingRepository().ListActiveByFlow(ctx, flowID)
		if err != nil {
			return nil, fmt.Errorf("failed to check onboardings of flow %s: %w", flowID, err)
		}

		if len(active) > 0 {
			return nil, ErrFlowStepsLocked
		}
	}

	if err := s.persistence.FlowRepository().Save(ctx, flow); err != nil {
		return nil, fmt.Errorf("failed to update flow: %w", err)
	}

	return flow, nil
}

// Publish makes the flow assignable. A flow with no steps cannot be
// published.
func (s *Flow) Publish(ctx context.Context, flowID string) (*models.Flow, error) {
	flow, err := s.FetchByID(ctx, flowID)
	if err != nil {
		return nil, err
	}

	if len(flow.Steps) == 0 {
		return nil, ErrFlowStepsRequired
	}

	now := time.Now().UTC()

	flow.Status = models.FlowStatusPublished
	if flow.PublishedAt == nil {
		flow.PublishedAt = &now
	}

	if err := s.persistence.FlowRepository().Save(ctx, flow); err != nil {
		return nil, fmt.Errorf("failed to publish flow: %w", err)
	}

	return flow, nil
}

// Archive retires the flow from assignment. Existing onboardings keep
// running.
func (s *Flow) Archive(ctx context.Context, flowID string) (*models.Flow, error) {
	flow, err := s.FetchByID(ctx, flowID)
	if err != nil {
		return nil, err
	}

	flow.Status = models.FlowStatusArchived

	if err := s.persistence.FlowRepository().Save(ctx, flow); err != nil {
		return nil, fmt.Errorf("failed to archive flow: %w", err)
	}

	return flow, nil
}

// Delete removes a flow. It fails while any non-terminal onboarding still
// references it.
func (s *Flow) Delete(ctx context.Context, flowID string) error {
	_, err := s.FetchByID(ctx, flowID)
	if err != nil {
		return err
	}

	active, err := s.persistence.OnboardingRepository().ListActiveByFlow(ctx, flowID)
	if err != nil {
		return fmt.Errorf("failed to check onboardings of flow %s: %w", flowID, err)
	}

	if len(active) > 0 {
		return ErrFlowHasActiveOnboardings
	}

	if err := s.persistence.FlowRepository().Delete(ctx, flowID); err != nil {
		return fmt.Errorf("failed to delete flow: %w", err)
	}

	return nil
}

// validateFlow checks the flow's own fields and every step template's type
// and configuration, so malformed configs never reach a client portal.
func (s *Flow) validateFlow(flow *models.Flow) error {
	if err := s.validator.Struct(flow); err != nil {
		return NewValidationError("validateFlow", "INVALID_FLOW", err.Error(), ErrInvalidRequest)
	}

	for i, step := range flow.Steps {
		if step.ID == "" {
			step.ID = uuid.New().String()
		}

		step.FlowID = flow.ID

		if step.Title == "" {
			return NewValidationError(
				"validateFlow",
				"INVALID_STEP",
				fmt.Sprintf("step %d is missing a title", i),
				ErrInvalidRequest,
			)
		}

		if err := s.registry.ValidateConfig(step.Type, step.Config); err != nil {
			return NewValidationError(
				"validateFlow",
				"INVALID_STEP_CONFIG",
				fmt.Sprintf("step %d (%s): %v", i, step.Type, err),
				ErrInvalidRequest,
			)
		}
	}

	flow.Reorder()

	return nil
}

// stepsEqual compares step template sets structurally.
func stepsEqual(a, b []*models.StepTemplate) bool {
	if len(a) != len(b) {
		return false
	}

	aJSON, err := json.Marshal(a)
	if err != nil {
		return false
	}

	bJSON, err := json.Marshal(b)
	if err != nil {
		return false
	}

	return string(aJSON) == string(bJSON)
}
