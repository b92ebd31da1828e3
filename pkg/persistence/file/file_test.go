package file

import (
	"testing"
	"time"

	"github.com/launchpath/launchpath/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistence_HealthCheck(t *testing.T) {
	t.Parallel()

	p := NewPersistence(t.TempDir())
	assert.NoError(t, p.HealthCheck(t.Context()))

	missing := NewPersistence("/nonexistent/launchpath-test")
	assert.Error(t, missing.HealthCheck(t.Context()))
}

func TestFlowRepository_SaveAndList(t *testing.T) {
	t.Parallel()

	p := NewPersistence(t.TempDir())
	repo := p.FlowRepository()

	flow := &models.Flow{
		ID:     "flow-1",
		Name:   "Standard onboarding",
		Status: models.FlowStatusDraft,
		Steps: []*models.StepTemplate{
			{ID: "st-1", FlowID: "flow-1", Type: models.StepTypeWelcome, Title: "Welcome", Order: 0},
			{ID: "st-2", FlowID: "flow-1", Type: models.StepTypeContract, Title: "Contract", Order: 1},
		},
	}

	require.NoError(t, repo.Save(t.Context(), flow))
	assert.False(t, flow.CreatedAt.IsZero())

	fetched, err := repo.GetByID(t.Context(), "flow-1")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Len(t, fetched.Steps, 2)
	assert.Equal(t, models.StepTypeWelcome, fetched.Steps[0].Type)

	flows, err := repo.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, flows, 1)

	require.NoError(t, repo.Delete(t.Context(), "flow-1"))

	gone, err := repo.GetByID(t.Context(), "flow-1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestNotificationLogRepository_Dedup(t *testing.T) {
	t.Parallel()

	p := NewPersistence(t.TempDir())
	repo := p.NotificationLogRepository()

	require.NoError(t, repo.Record(t.Context(), &models.NotificationLog{
		ID:           "n-1",
		OnboardingID: "ob-1",
		Type:         models.NotificationTypeReminder,
		SentAt:       time.Now().UTC().Add(-1 * time.Hour),
	}))
	require.NoError(t, repo.Record(t.Context(), &models.NotificationLog{
		ID:           "n-2",
		OnboardingID: "ob-1",
		Type:         models.NotificationTypeWelcome,
		SentAt:       time.Now().UTC().Add(-30 * 24 * time.Hour),
	}))

	cutoff := time.Now().UTC().Add(-24 * time.Hour)

	recent, err := repo.HasRecentNotification(t.Context(), "ob-1", models.NotificationTypeReminder, cutoff)
	require.NoError(t, err)
	assert.True(t, recent)

	recent, err = repo.HasRecentNotification(t.Context(), "ob-1", models.NotificationTypeWelcome, cutoff)
	require.NoError(t, err)
	assert.False(t, recent)

	recent, err = repo.HasRecentNotification(t.Context(), "ob-other", models.NotificationTypeReminder, cutoff)
	require.NoError(t, err)
	assert.False(t, recent)
}
