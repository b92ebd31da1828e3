package services

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/launchpath/launchpath/pkg/events"
	"github.com/launchpath/launchpath/pkg/models"
	"github.com/launchpath/launchpath/pkg/steps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProgressService(t *testing.T, env *testEnv) *Progress {
	t.Helper()

	return NewProgress(slog.Default(), env.persist, steps.NewRegistry(slog.Default()), env.publisher, nil)
}

func assignTestOnboarding(t *testing.T, env *testEnv) *models.Onboarding {
	t.Helper()

	onboarding, err := env.onboarding.AssignFlow(t.Context(), AssignFlowRequest{
		ClientID: env.client.ID,
		FlowID:   env.flow.ID,
	})
	require.NoError(t, err)

	return onboarding
}

func TestProgress_Authenticate(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	progress := newProgressService(t, env)
	onboarding := assignTestOnboarding(t, env)

	resolved, err := progress.Authenticate(t.Context(), onboarding.PortalToken)
	require.NoError(t, err)
	assert.Equal(t, onboarding.ID, resolved.ID)

	_, err = progress.Authenticate(t.Context(), "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = progress.Authenticate(t.Context(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestProgress_SubmitStepLifecycle(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	progress := newProgressService(t, env)
	onboarding := assignTestOnboarding(t, env)
	token := onboarding.PortalToken

	// Step 1: WELCOME accepts anything.
	result, err := progress.SubmitStep(t.Context(), token, onboarding.Steps[0].ID, nil)
	require.NoError(t, err)
	assert.False(t, result.AllCompleted)
	assert.Equal(t, models.OnboardingStatusInProgress, result.Onboarding.Status)
	assert.Equal(t, models.StepProgressCompleted, result.StepProgress.Status)
	assert.Equal(t, 33, result.Onboarding.Progress())
	require.NotNil(t, result.StepProgress.CompletedAt)

	// Step 2: FORM rejects a missing required field without mutating.
	_, err = progress.SubmitStep(t.Context(), token, onboarding.Steps[1].ID, map[string]any{
		"email": "not-an-email",
	})
	require.Error(t, err)

	sve, ok := AsStepValidationError(err)
	require.True(t, ok)
	assert.Len(t, sve.Errors, 2)

	current, err := progress.Authenticate(t.Context(), token)
	require.NoError(t, err)
	assert.Equal(t, models.StepProgressNotStarted, current.Steps[1].Status)
	assert.Equal(t, models.OnboardingStatusInProgress, current.Status)

	// Valid FORM submission.
	result, err = progress.SubmitStep(t.Context(), token, onboarding.Steps[1].ID, map[string]any{
		"name":  "Ada",
		"email": "ada@example.com",
	})
	require.NoError(t, err)
	assert.False(t, result.AllCompleted)
	assert.Equal(t, 67, result.Onboarding.Progress())
	assert.Equal(t, "Ada", result.StepProgress.Data["name"])

	// Step 3: CONTRACT completes the onboarding.
	result, err = progress.SubmitStep(t.Context(), token, onboarding.Steps[2].ID, map[string]any{
		"agreed": true,
	})
	require.NoError(t, err)
	assert.True(t, result.AllCompleted)
	assert.Equal(t, models.OnboardingStatusCompleted, result.Onboarding.Status)
	assert.Equal(t, 100, result.Onboarding.Progress())
	require.NotNil(t, result.Onboarding.CompletedAt)
	assert.Equal(t, true, result.StepProgress.Data["agreed"])

	assert.Len(t, env.publisher.byType(events.StepCompletedEvent), 3)
	assert.Len(t, env.publisher.byType(events.OnboardingCompletedEvent), 1)
}

func TestProgress_SubmitStepInvalidStep(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	progress := newProgressService(t, env)
	onboarding := assignTestOnboarding(t, env)

	_, err := progress.SubmitStep(t.Context(), onboarding.PortalToken, "unknown-step", nil)
	assert.ErrorIs(t, err, ErrInvalidStep)

	// A step of another onboarding is invalid too.
	other := assignTestOnboarding(t, env)

	_, err = progress.SubmitStep(t.Context(), onboarding.PortalToken, other.Steps[0].ID, nil)
	assert.ErrorIs(t, err, ErrInvalidStep)
}

func TestProgress_ResubmissionIsNoOp(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	progress := newProgressService(t, env)
	onboarding := assignTestOnboarding(t, env)
	token := onboarding.PortalToken

	first, err := progress.SubmitStep(t.Context(), token, onboarding.Steps[2].ID, map[string]any{
		"agreed": true,
	})
	require.NoError(t, err)

	firstAgreedAt := first.StepProgress.Data["agreedAt"]
	firstCompletedAt := *first.StepProgress.CompletedAt

	second, err := progress.SubmitStep(t.Context(), token, onboarding.Steps[2].ID, map[string]any{
		"agreed": true,
	})
	require.NoError(t, err)
	assert.False(t, second.AllCompleted)
	assert.Equal(t, firstAgreedAt, second.StepProgress.Data["agreedAt"])
	assert.True(t, firstCompletedAt.Equal(*second.StepProgress.CompletedAt))
}

func TestProgress_CompletionCascadeFiresOnce(t *testing.T) {
	t.Parallel()

	env := setupEnv(t)
	progress := newProgressService(t, env)
	onboarding := assignTestOnboarding(t, env)
	token := onboarding.PortalToken

	_, err := progress.SubmitStep(t.Context(), token, onboarding.Steps[0].ID, nil)
	require.NoError(t, err)

	_, err = progress.SubmitStep(t.Context(), token, onboarding.Steps[1].ID, map[string]any{
		"name": "Ada",
	})
	require.NoError(t, err)

	// Hammer the last step concurrently; the cascade must fire exactly once.
	var waitGroup sync.WaitGroup

	cascades := make([]bool, 8)

	for i := range cascades {
		waitGroup.Add(1)

		go func() {
			defer waitGroup.Done()

			result, err := progress.SubmitStep(t.Context(), token, onboarding.Steps[2].ID, map[string]any{
				"agreed": true,
			})
			if err == nil {
				cascades[i] = result.AllCompleted
			}
		}()
	}

	waitGroup.Wait()

	fired := 0

	for _, cascade := range cascades {
		if cascade {
			fired++
		}
	}

	assert.Equal(t, 1, fired)
	assert.Len(t, env.publisher.byType(events.OnboardingCompletedEvent), 1)
}
