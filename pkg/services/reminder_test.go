package services

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/launchpath/launchpath/pkg/events"
	"github.com/launchpath/launchpath/pkg/models"
	"github.com/launchpath/launchpath/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingMailer struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (m *countingMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, msg)

	return nil
}

func newReminderService(t *testing.T, env *testEnv, threshold time.Duration) (*Reminder, *countingMailer) {
	t.Helper()

	mailer := &countingMailer{}
	notifier := notify.NewNotifier(slog.Default(), mailer, env.persist, "https://portal.example.com")

	return NewReminder(slog.Default(), env.persist, notifier, env.publisher, threshold), mailer
}

// backdate rewrites the onboarding's last activity so the sweep sees it as
// stalled.
func backdate(t *testing.T, env *testEnv, onboardingID string, age time.Duration) {
	t.Helper()

	err := env.persist.OnboardingRepository().TouchActivity(t.Context(), onboardingID, time.Now().UTC().Add(-age))
	require.NoError(t, err)
}

func TestReminder_SweepSendsForStalledOnboardings(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	reminder, mailer := newReminderService(t, env, 0)
	progress := newProgressService(t, env)

	stalled := assignTestOnboarding(t, env)
	_, err := progress.SubmitStep(t.Context(), stalled.PortalToken, stalled.Steps[0].ID, nil)
	require.NoError(t, err)
	backdate(t, env, stalled.ID, 4*24*time.Hour)

	active := assignTestOnboarding(t, env)
	_, err = progress.SubmitStep(t.Context(), active.PortalToken, active.Steps[0].ID, nil)
	require.NoError(t, err)

	// NOT_STARTED onboardings are never swept, however old.
	untouched := assignTestOnboarding(t, env)
	backdate(t, env, untouched.ID, 10*24*time.Hour)

	result, err := reminder.Sweep(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 1, result.CandidateCount)
	assert.Equal(t, 1, result.SentCount)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, stalled.ID, result.Entries[0].OnboardingID)
	assert.True(t, result.Entries[0].Sent)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ada@example.com", mailer.sent[0].To)

	assert.Len(t, env.publisher.byType(events.ReminderSentEvent), 1)
}

func TestReminder_SweepDedupsWithin24Hours(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	reminder, mailer := newReminderService(t, env, 0)
	progress := newProgressService(t, env)

	stalled := assignTestOnboarding(t, env)
	_, err := progress.SubmitStep(t.Context(), stalled.PortalToken, stalled.Steps[0].ID, nil)
	require.NoError(t, err)
	backdate(t, env, stalled.ID, 4*24*time.Hour)

	first, err := reminder.Sweep(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, first.SentCount)

	// The send itself does not bump activity, so without dedup the second
	// sweep would fire again.
	backdate(t, env, stalled.ID, 4*24*time.Hour)

	second, err := reminder.Sweep(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, second.CandidateCount)
	assert.Equal(t, 0, second.SentCount)
	require.Len(t, second.Entries, 1)
	assert.False(t, second.Entries[0].Sent)
	assert.NotEmpty(t, second.Entries[0].Reason)

	assert.Len(t, mailer.sent, 1)
}

func TestReminder_SweepSendsAgainAfterWindow(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	reminder, mailer := newReminderService(t, env, 0)
	progress := newProgressService(t, env)

	stalled := assignTestOnboarding(t, env)
	_, err := progress.SubmitStep(t.Context(), stalled.PortalToken, stalled.Steps[0].ID, nil)
	require.NoError(t, err)
	backdate(t, env, stalled.ID, 4*24*time.Hour)

	// An old reminder outside the rolling window does not block a new one.
	require.NoError(t, env.persist.NotificationLogRepository().Record(t.Context(), &models.NotificationLog{
		ID:           "old-reminder",
		OnboardingID: stalled.ID,
		Type:         models.NotificationTypeReminder,
		SentAt:       time.Now().UTC().Add(-30 * time.Hour),
	}))

	result, err := reminder.Sweep(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, result.SentCount)
	assert.Len(t, mailer.sent, 1)
}

func TestReminder_SendManual(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	reminder, mailer := newReminderService(t, env, 0)
	progress := newProgressService(t, env)

	onboarding := assignTestOnboarding(t, env)

	// Manual reminders ignore the inactivity threshold.
	require.NoError(t, reminder.SendManual(t.Context(), onboarding.ID))
	assert.Len(t, mailer.sent, 1)

	assert.ErrorIs(t, reminder.SendManual(t.Context(), "missing"), ErrOnboardingNotFound)

	// Complete everything, then a manual reminder is refused.
	token := onboarding.PortalToken
	_, err := progress.SubmitStep(t.Context(), token, onboarding.Steps[0].ID, nil)
	require.NoError(t, err)
	_, err = progress.SubmitStep(t.Context(), token, onboarding.Steps[1].ID, map[string]any{"name": "Ada"})
	require.NoError(t, err)
	_, err = progress.SubmitStep(t.Context(), token, onboarding.Steps[2].ID, map[string]any{"agreed": true})
	require.NoError(t, err)

	err = reminder.SendManual(t.Context(), onboarding.ID)
	assert.ErrorIs(t, err, ErrNoReminderDue)
	assert.True(t, IsValidationError(err))
}

func TestReminder_SendManualForClient(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	reminder, mailer := newReminderService(t, env, 0)
	progress := newProgressService(t, env)

	assert.ErrorIs(t, reminder.SendManualForClient(t.Context(), "missing"), ErrClientNotFound)

	// A client with no onboardings has nothing to remind.
	err := reminder.SendManualForClient(t.Context(), env.client.ID)
	assert.ErrorIs(t, err, ErrNoReminderDue)

	onboarding := assignTestOnboarding(t, env)
	require.NoError(t, reminder.SendManualForClient(t.Context(), env.client.ID))
	assert.Len(t, mailer.sent, 1)

	// Once every onboarding is completed the client drops out again.
	token := onboarding.PortalToken
	_, err = progress.SubmitStep(t.Context(), token, onboarding.Steps[0].ID, nil)
	require.NoError(t, err)
	_, err = progress.SubmitStep(t.Context(), token, onboarding.Steps[1].ID, map[string]any{"name": "Ada"})
	require.NoError(t, err)
	_, err = progress.SubmitStep(t.Context(), token, onboarding.Steps[2].ID, map[string]any{"agreed": true})
	require.NoError(t, err)

	err = reminder.SendManualForClient(t.Context(), env.client.ID)
	assert.ErrorIs(t, err, ErrNoReminderDue)
}
