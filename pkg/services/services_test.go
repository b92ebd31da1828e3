package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/launchpath/launchpath/pkg/eventbus"
	"github.com/launchpath/launchpath/pkg/events"
	"github.com/launchpath/launchpath/pkg/models"
	"github.com/launchpath/launchpath/pkg/persistence/file"
	"github.com/stretchr/testify/require"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *capturePublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)

	return nil
}

func (p *capturePublisher) byType(eventType events.EventType) []eventbus.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	matched := make([]eventbus.Event, 0)

	for _, event := range p.events {
		if event.GetType() == eventType {
			matched = append(matched, event)
		}
	}

	return matched
}

// seedOnboarding writes an onboarding for the flow straight into persistence,
// with every step progress in the given status.
func seedOnboarding(
	t *testing.T,
	persist *file.Persistence,
	flow *models.Flow,
	clientID string,
	stepStatus models.StepProgressStatus,
) *models.Onboarding {
	t.Helper()

	token, err := models.NewPortalToken()
	require.NoError(t, err)

	now := time.Now().UTC()

	onboarding := &models.Onboarding{
		ID:             uuid.New().String(),
		ClientID:       clientID,
		FlowID:         flow.ID,
		PortalToken:    token,
		Priority:       models.PriorityNormal,
		LastActivityAt: now,
		CreatedAt:      now,
	}

	for _, step := range flow.Steps {
		sp := &models.StepProgress{
			ID:           uuid.New().String(),
			OnboardingID: onboarding.ID,
			StepID:       step.ID,
			Step:         step,
			Status:       stepStatus,
		}
		if stepStatus == models.StepProgressCompleted {
			completedAt := now
			sp.CompletedAt = &completedAt
		}

		onboarding.Steps = append(onboarding.Steps, sp)
	}

	onboarding.Status = onboarding.DeriveStatus()
	if onboarding.Status == models.OnboardingStatusCompleted {
		completedAt := now
		onboarding.CompletedAt = &completedAt
	}

	require.NoError(t, persist.OnboardingRepository().Create(t.Context(), onboarding))

	return onboarding
}
