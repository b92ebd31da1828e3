package web

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/launchpath/launchpath/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOnboarding() *models.Onboarding {
	due := time.Now().UTC().Add(24 * time.Hour)

	return &models.Onboarding{
		ID:          "onb-1",
		ClientID:    "client-1",
		FlowID:      "flow-1",
		Status:      models.OnboardingStatusInProgress,
		PortalToken: "secret-token",
		Priority:    models.PriorityHigh,
		DueDate:     &due,
		Steps: []*models.StepProgress{
			{
				ID:     "sp-1",
				StepID: "step-1",
				Status: models.StepProgressCompleted,
				Step: &models.StepTemplate{
					ID:    "step-1",
					Type:  models.StepTypeWelcome,
					Title: "Welcome",
					Order: 0,
				},
			},
			{
				ID:     "sp-2",
				StepID: "step-2",
				Status: models.StepProgressNotStarted,
				Step: &models.StepTemplate{
					ID:    "step-2",
					Type:  models.StepTypeContract,
					Title: "Sign",
					Order: 1,
				},
			},
		},
	}
}

func TestTransformOnboardingResponse(t *testing.T) {
	t.Parallel()

	response := TransformOnboardingResponse(sampleOnboarding())

	assert.Equal(t, 50, response.Progress)
	assert.Equal(t, models.DueDateDueSoon, response.DueStatus)
	assert.Equal(t, "onb-1", response.ID)
}

func TestTransformPortalResponse_OmitsProviderFields(t *testing.T) {
	t.Parallel()

	response := TransformPortalResponse(sampleOnboarding())

	assert.Equal(t, 50, response.Progress)
	require.Len(t, response.Steps, 2)
	assert.Equal(t, "Welcome", response.Steps[0].Title)
	assert.Equal(t, models.StepTypeContract, response.Steps[1].Type)

	// The portal payload must never leak the token, priority or client id.
	payload, err := json.Marshal(response)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "secret-token")
	assert.NotContains(t, string(payload), "priority")
	assert.NotContains(t, string(payload), "client_id")
}

func TestTransformSteps_AssignsDenseOrder(t *testing.T) {
	t.Parallel()

	templates := transformSteps([]StepTemplateRequest{
		{Type: models.StepTypeWelcome, Title: "One"},
		{Type: models.StepTypeContract, Title: "Two"},
		{Type: models.StepTypeForm, Title: "Three"},
	})

	require.Len(t, templates, 3)
	for i, template := range templates {
		assert.Equal(t, i, template.Order)
	}
}
