package notify

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/launchpath/launchpath/pkg/models"
	"github.com/launchpath/launchpath/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureMailer struct {
	sent []Message
}

func (m *captureMailer) Send(_ context.Context, msg Message) error {
	m.sent = append(m.sent, msg)

	return nil
}

func setupNotifier(t *testing.T) (*Notifier, *captureMailer, *file.Persistence) {
	t.Helper()

	persist := file.NewPersistence(t.TempDir())
	mailer := &captureMailer{}
	notifier := NewNotifier(slog.Default(), mailer, persist, "https://portal.example.com")

	require.NoError(t, persist.ClientRepository().Save(t.Context(), &models.Client{
		ID:    "client-1",
		Name:  "Ada",
		Email: "ada@example.com",
	}))

	return notifier, mailer, persist
}

func testOnboarding() *models.Onboarding {
	return &models.Onboarding{
		ID:             "ob-1",
		ClientID:       "client-1",
		FlowID:         "flow-1",
		Status:         models.OnboardingStatusInProgress,
		PortalToken:    "tok-123",
		Priority:       models.PriorityNormal,
		LastActivityAt: time.Now().UTC().Add(-96 * time.Hour),
		Steps: []*models.StepProgress{
			{ID: "sp-1", Status: models.StepProgressCompleted},
			{ID: "sp-2", Status: models.StepProgressNotStarted},
		},
	}
}

func TestNotifier_SendWelcome(t *testing.T) {
	t.Parallel()

	notifier, mailer, persist := setupNotifier(t)

	require.NoError(t, notifier.SendWelcome(t.Context(), testOnboarding()))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ada@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Body, "https://portal.example.com/portal/tok-123")
	assert.True(t, strings.Contains(mailer.sent[0].Body, "Hi Ada"))

	logs, err := persist.NotificationLogRepository().ListByOnboarding(t.Context(), "ob-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.NotificationTypeWelcome, logs[0].Type)
	assert.Equal(t, "ada@example.com", logs[0].RecipientEmail)
}

func TestNotifier_SendReminder(t *testing.T) {
	t.Parallel()

	notifier, mailer, persist := setupNotifier(t)

	require.NoError(t, notifier.SendReminder(t.Context(), testOnboarding()))

	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].Body, "50% done")

	logs, err := persist.NotificationLogRepository().ListByOnboarding(t.Context(), "ob-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.NotificationTypeReminder, logs[0].Type)
	assert.EqualValues(t, 50, logs[0].Metadata["progress"])
}

func TestNotifier_SendCompletion(t *testing.T) {
	t.Parallel()

	notifier, mailer, _ := setupNotifier(t)

	require.NoError(t, notifier.SendCompletion(t.Context(), testOnboarding()))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Onboarding complete", mailer.sent[0].Subject)
}

func TestNotifier_UnknownClient(t *testing.T) {
	t.Parallel()

	notifier, mailer, _ := setupNotifier(t)

	onboarding := testOnboarding()
	onboarding.ClientID = "missing"

	err := notifier.SendWelcome(t.Context(), onboarding)
	require.Error(t, err)
	assert.Empty(t, mailer.sent)
}
