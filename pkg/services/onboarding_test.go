package services

import (
	"log/slog"
	"testing"
	"time"

	"github.com/launchpath/launchpath/pkg/events"
	"github.com/launchpath/launchpath/pkg/models"
	"github.com/launchpath/launchpath/pkg/persistence/file"
	"github.com/launchpath/launchpath/pkg/steps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	persist    *file.Persistence
	flows      *Flow
	clients    *Client
	onboarding *Onboarding
	publisher  *capturePublisher
	client     *models.Client
	flow       *models.Flow
}

// setupEnv creates the service stack over file persistence with one client
// and one published three-step flow.
func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.Default()
	persist := file.NewPersistence(t.TempDir())
	registry := steps.NewRegistry(logger)
	publisher := &capturePublisher{}

	flows := NewFlow(persist, registry)
	clients := NewClient(persist)
	onboarding := NewOnboarding(logger, persist, publisher)

	client, err := clients.Create(t.Context(), &models.Client{
		Name:  "Ada",
		Email: "ada@example.com",
	})
	require.NoError(t, err)

	flow, err := flows.Create(t.Context(), &models.Flow{
		Name: "Standard onboarding",
		Steps: []*models.StepTemplate{
			{Type: models.StepTypeWelcome, Title: "Welcome"},
			{
				Type:  models.StepTypeForm,
				Title: "Tell us about you",
				Config: &models.StepConfig{
					Form: &models.FormConfig{
						Fields: []models.FormField{
							{ID: "name", Type: models.FieldTypeText, Label: "Name", Required: true},
							{ID: "email", Type: models.FieldTypeEmail, Label: "Email"},
						},
					},
				},
			},
			{
				Type:  models.StepTypeContract,
				Title: "Sign the agreement",
				Config: &models.StepConfig{
					Contract: &models.ContractConfig{BodyText: "Terms and conditions."},
				},
			},
		},
	})
	require.NoError(t, err)

	flow, err = flows.Publish(t.Context(), flow.ID)
	require.NoError(t, err)

	return &testEnv{
		persist:    persist,
		flows:      flows,
		clients:    clients,
		onboarding: onboarding,
		publisher:  publisher,
		client:     client,
		flow:       flow,
	}
}

func TestOnboarding_AssignFlow(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)

	dueDate := time.Now().UTC().Add(7 * 24 * time.Hour)

	onboarding, err := env.onboarding.AssignFlow(t.Context(), AssignFlowRequest{
		ClientID: env.client.ID,
		FlowID:   env.flow.ID,
		Priority: models.PriorityHigh,
		DueDate:  &dueDate,
	})
	require.NoError(t, err)

	assert.Equal(t, models.OnboardingStatusNotStarted, onboarding.Status)
	assert.Equal(t, models.PriorityHigh, onboarding.Priority)
	assert.Len(t, onboarding.PortalToken, 32)
	assert.Equal(t, 0, onboarding.Progress())

	require.Len(t, onboarding.Steps, 3)

	for i, sp := range onboarding.Steps {
		assert.Equal(t, models.StepProgressNotStarted, sp.Status)
		assert.Equal(t, env.flow.Steps[i].ID, sp.StepID)
		assert.Nil(t, sp.CompletedAt)
	}

	assigned := env.publisher.byType(events.OnboardingAssignedEvent)
	require.Len(t, assigned, 1)
}

func TestOnboarding_AssignFlowDefaultsPriority(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)

	onboarding, err := env.onboarding.AssignFlow(t.Context(), AssignFlowRequest{
		ClientID: env.client.ID,
		FlowID:   env.flow.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityNormal, onboarding.Priority)
}

func TestOnboarding_AssignFlowRejectsUnpublished(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)

	draft, err := env.flows.Create(t.Context(), draftFlow())
	require.NoError(t, err)

	_, err = env.onboarding.AssignFlow(t.Context(), AssignFlowRequest{
		ClientID: env.client.ID,
		FlowID:   draft.ID,
	})
	assert.ErrorIs(t, err, ErrFlowNotPublished)

	archived, err := env.flows.Create(t.Context(), draftFlow())
	require.NoError(t, err)
	_, err = env.flows.Publish(t.Context(), archived.ID)
	require.NoError(t, err)
	_, err = env.flows.Archive(t.Context(), archived.ID)
	require.NoError(t, err)

	_, err = env.onboarding.AssignFlow(t.Context(), AssignFlowRequest{
		ClientID: env.client.ID,
		FlowID:   archived.ID,
	})
	assert.ErrorIs(t, err, ErrFlowNotPublished)
}

func TestOnboarding_AssignFlowValidation(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)

	_, err := env.onboarding.AssignFlow(t.Context(), AssignFlowRequest{
		ClientID: "missing",
		FlowID:   env.flow.ID,
	})
	assert.ErrorIs(t, err, ErrClientNotFound)

	_, err = env.onboarding.AssignFlow(t.Context(), AssignFlowRequest{
		ClientID: env.client.ID,
		FlowID:   "missing",
	})
	assert.ErrorIs(t, err, ErrFlowNotFound)

	_, err = env.onboarding.AssignFlow(t.Context(), AssignFlowRequest{
		ClientID: env.client.ID,
		FlowID:   env.flow.ID,
		Priority: "whenever",
	})
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestOnboarding_TokensAreUnique(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)

	seen := make(map[string]bool)

	for range 5 {
		onboarding, err := env.onboarding.AssignFlow(t.Context(), AssignFlowRequest{
			ClientID: env.client.ID,
			FlowID:   env.flow.ID,
		})
		require.NoError(t, err)
		assert.False(t, seen[onboarding.PortalToken])
		seen[onboarding.PortalToken] = true
	}
}

func TestOnboarding_Delete(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)

	onboarding, err := env.onboarding.AssignFlow(t.Context(), AssignFlowRequest{
		ClientID: env.client.ID,
		FlowID:   env.flow.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.onboarding.Delete(t.Context(), onboarding.ID))

	_, err = env.onboarding.FetchByID(t.Context(), onboarding.ID)
	assert.ErrorIs(t, err, ErrOnboardingNotFound)

	assert.ErrorIs(t, env.onboarding.Delete(t.Context(), onboarding.ID), ErrOnboardingNotFound)
}

func TestClient_DeleteCascadesOnboardings(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)

	onboarding, err := env.onboarding.AssignFlow(t.Context(), AssignFlowRequest{
		ClientID: env.client.ID,
		FlowID:   env.flow.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.clients.Delete(t.Context(), env.client.ID))

	_, err = env.onboarding.FetchByID(t.Context(), onboarding.ID)
	assert.ErrorIs(t, err, ErrOnboardingNotFound)
}
