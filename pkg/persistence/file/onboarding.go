package file

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/launchpath/launchpath/pkg/models"
	"github.com/launchpath/launchpath/pkg/persistence"
)

const onboardingsCollection = "onboardings"

// OnboardingRepository handles onboarding-related file operations. Each
// onboarding record carries its full step progress set, so a single file
// write is the atomic unit covering step status, data, completed-at and the
// derived aggregate status.
type OnboardingRepository struct {
	root string
	mu   *sync.Mutex
}

func (r *OnboardingRepository) List(_ context.Context) ([]*models.Onboarding, error) {
	onboardings, err := listRecords[models.Onboarding](r.root, onboardingsCollection)
	if err != nil {
		return nil, err
	}

	sort.Slice(onboardings, func(i, j int) bool {
		return onboardings[i].CreatedAt.After(onboardings[j].CreatedAt)
	})

	return onboardings, nil
}

func (r *OnboardingRepository) GetByID(_ context.Context, id string) (*models.Onboarding, error) {
	return readRecord[models.Onboarding](r.root, onboardingsCollection, id)
}

// GetByToken resolves the portal token to its onboarding. Token lookup is the
// portal's entire authentication, so an unknown token maps to
// ErrOnboardingNotFound rather than an empty result.
func (r *OnboardingRepository) GetByToken(ctx context.Context, token string) (*models.Onboarding, error) {
	onboardings, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, onboarding := range onboardings {
		if onboarding.PortalToken == token {
			return onboarding, nil
		}
	}

	return nil, persistence.ErrOnboardingNotFound
}

func (r *OnboardingRepository) GetByClient(ctx context.Context, clientID string) ([]*models.Onboarding, error) {
	onboardings, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*models.Onboarding, 0)

	for _, onboarding := range onboardings {
		if onboarding.ClientID == clientID {
			result = append(result, onboarding)
		}
	}

	return result, nil
}

// ListActiveByFlow returns non-terminal onboardings referencing the flow,
// feeding the flow deletion guard.
func (r *OnboardingRepository) ListActiveByFlow(ctx context.Context, flowID string) ([]*models.Onboarding, error) {
	onboardings, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*models.Onboarding, 0)

	for _, onboarding := range onboardings {
		if onboarding.FlowID == flowID && !onboarding.IsTerminal() {
			result = append(result, onboarding)
		}
	}

	return result, nil
}

// ListInactiveSince returns IN_PROGRESS onboardings whose last activity is
// older than the cutoff, feeding the reminder sweep.
func (r *OnboardingRepository) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*models.Onboarding, error) {
	onboardings, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*models.Onboarding, 0)

	for _, onboarding := range onboardings {
		if onboarding.Status == models.OnboardingStatusInProgress && onboarding.LastActivityAt.Before(cutoff) {
			result = append(result, onboarding)
		}
	}

	return result, nil
}

// Create persists a new onboarding together with its full step progress set.
func (r *OnboardingRepository) Create(ctx context.Context, onboarding *models.Onboarding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.GetByID(ctx, onboarding.ID)
	if err != nil {
		return err
	}

	if existing != nil {
		return persistence.NewOnboardingError("Create", onboarding.ID, persistence.ErrOnboardingAlreadyExists)
	}

	if onboarding.CreatedAt.IsZero() {
		onboarding.CreatedAt = time.Now().UTC()
	}

	return writeRecord(r.root, onboardingsCollection, onboarding.ID, onboarding)
}

// Delete removes an onboarding; the owned step progress set lives inside the
// record, so the cascade is implicit and no orphan can remain.
func (r *OnboardingRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return deleteRecord(r.root, onboardingsCollection, id)
}

// CompleteStep applies a step completion under the repository mutex: the
// read-check-write sequence is what a SQL backend expresses as a conditional
// UPDATE. Status, data payload and completed-at change as one unit, and the
// aggregate's terminal flip happens in the same write, so the completion edge
// is reported exactly once.
func (r *OnboardingRepository) CompleteStep(
	ctx context.Context,
	onboardingID string,
	completion persistence.StepCompletion,
) (*models.Onboarding, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	onboarding, err := r.GetByID(ctx, onboardingID)
	if err != nil {
		return nil, false, err
	}

	if onboarding == nil {
		return nil, false, persistence.NewOnboardingError("CompleteStep", onboardingID, persistence.ErrOnboardingNotFound)
	}

	step := onboarding.StepProgressByID(completion.StepProgressID)
	if step == nil {
		return nil, false, persistence.NewStepError("CompleteStep", onboardingID, completion.StepProgressID, persistence.ErrStepProgressNotFound)
	}

	if step.Status == models.StepProgressCompleted {
		return nil, false, persistence.NewStepError("CompleteStep", onboardingID, completion.StepProgressID, persistence.ErrStepAlreadyCompleted)
	}

	completedAt := completion.CompletedAt

	step.Status = models.StepProgressCompleted
	step.Data = completion.Data
	step.CompletedAt = &completedAt

	onboarding.LastActivityAt = completedAt

	wasTerminal := onboarding.Status == models.OnboardingStatusCompleted
	onboarding.Status = onboarding.DeriveStatus()

	completedNow := !wasTerminal && onboarding.Status == models.OnboardingStatusCompleted
	if completedNow && onboarding.CompletedAt == nil {
		onboarding.CompletedAt = &completedAt
	}

	if err := writeRecord(r.root, onboardingsCollection, onboarding.ID, onboarding); err != nil {
		return nil, false, err
	}

	return onboarding, completedNow, nil
}

// TouchActivity bumps the last-activity timestamp.
func (r *OnboardingRepository) TouchActivity(ctx context.Context, onboardingID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	onboarding, err := r.GetByID(ctx, onboardingID)
	if err != nil {
		return err
	}

	if onboarding == nil {
		return persistence.NewOnboardingError("TouchActivity", onboardingID, persistence.ErrOnboardingNotFound)
	}

	onboarding.LastActivityAt = at

	return writeRecord(r.root, onboardingsCollection, onboarding.ID, onboarding)
}
