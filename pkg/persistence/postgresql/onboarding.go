package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/launchpath/launchpath/pkg/models"
	"github.com/launchpath/launchpath/pkg/persistence"
)

// OnboardingRepository handles onboarding and step progress database
// operations.
type OnboardingRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const onboardingColumns = `
	id
  , client_id
  , flow_id
  , status
  , portal_token
  , priority
  , due_date
  , last_activity_at
  , created_at
  , completed_at
`

func (r *OnboardingRepository) List(ctx context.Context) ([]*models.Onboarding, error) {
	query := "SELECT " + onboardingColumns + " FROM onboardings ORDER BY created_at DESC"

	return r.queryOnboardings(ctx, query)
}

func (r *OnboardingRepository) GetByID(ctx context.Context, id string) (*models.Onboarding, error) {
	query := "SELECT " + onboardingColumns + " FROM onboardings WHERE id = $1"

	return r.getOne(ctx, query, id)
}

// GetByToken resolves the portal token to its onboarding. Unknown tokens
// return ErrOnboardingNotFound so callers cannot distinguish a revoked token
// from one that never existed.
func (r *OnboardingRepository) GetByToken(ctx context.Context, token string) (*models.Onboarding, error) {
	query := "SELECT " + onboardingColumns + " FROM onboardings WHERE portal_token = $1"

	onboarding, err := r.getOne(ctx, query, token)
	if err != nil {
		return nil, err
	}

	if onboarding == nil {
		return nil, persistence.ErrOnboardingNotFound
	}

	return onboarding, nil
}

func (r *OnboardingRepository) GetByClient(ctx context.Context, clientID string) ([]*models.Onboarding, error) {
	query := "SELECT " + onboardingColumns + " FROM onboardings WHERE client_id = $1 ORDER BY created_at DESC"

	return r.queryOnboardings(ctx, query, clientID)
}

// ListActiveByFlow returns the non-terminal onboardings assigned to a flow.
func (r *OnboardingRepository) ListActiveByFlow(ctx context.Context, flowID string) ([]*models.Onboarding, error) {
	query := "SELECT " + onboardingColumns + ` FROM onboardings
		WHERE flow_id = $1 AND status <> $2
		ORDER BY created_at DESC`

	return r.queryOnboardings(ctx, query, flowID, models.OnboardingStatusCompleted)
}

// ListInactiveSince returns IN_PROGRESS onboardings whose last activity is
// before the cutoff. This is the reminder sweep's candidate set.
func (r *OnboardingRepository) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*models.Onboarding, error) {
	query := "SELECT " + onboardingColumns + ` FROM onboardings
		WHERE status = $1 AND last_activity_at < $2
		ORDER BY last_activity_at ASC`

	return r.queryOnboardings(ctx, query, models.OnboardingStatusInProgress, cutoff)
}

// Create persists the onboarding and its full step progress set in one
// transaction.
func (r *OnboardingRepository) Create(ctx context.Context, onboarding *models.Onboarding) error {
	existing, err := r.GetByID(ctx, onboarding.ID)
	if err != nil {
		return err
	}

	if existing != nil {
		return persistence.ErrOnboardingAlreadyExists
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer rollback(ctx, r.logger, tx)

	insert := `
		INSERT INTO onboardings (id, client_id, flow_id, status, portal_token, priority, due_date, last_activity_at, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = tx.ExecContext(ctx, insert,
		onboarding.ID, onboarding.ClientID, onboarding.FlowID, onboarding.Status,
		onboarding.PortalToken, onboarding.Priority, onboarding.DueDate,
		onboarding.LastActivityAt, onboarding.CreatedAt, onboarding.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create onboarding %s: %w", onboarding.ID, err)
	}

	insertStep := `
		INSERT INTO step_progress (id, onboarding_id, step_id, status, data, step_order, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for i, sp := range onboarding.Steps {
		data, err := json.Marshal(sp.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal data of step progress %s: %w", sp.ID, err)
		}

		_, err = tx.ExecContext(ctx, insertStep,
			sp.ID, onboarding.ID, sp.StepID, sp.Status, data, i, sp.CompletedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create step progress %s: %w", sp.ID, err)
		}
	}

	return tx.Commit()
}

// Delete removes the onboarding; step progress and notification logs cascade.
func (r *OnboardingRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM onboardings WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete onboarding %s: %w", id, err)
	}

	return nil
}

// CompleteStep performs the whole step completion write in one transaction.
// The step transition is a conditional UPDATE keyed on status <> COMPLETED;
// losing that condition is reported as ErrStepAlreadyCompleted and leaves the
// first submission's data and timestamps untouched. The derived onboarding
// status and the completion edge come from the same transaction, so the edge
// is observed exactly once even under concurrent submissions.
func (r *OnboardingRepository) CompleteStep(ctx context.Context, onboardingID string, completion persistence.StepCompletion) (*models.Onboarding, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer rollback(ctx, r.logger, tx)

	var previousStatus models.OnboardingStatus

	err = tx.QueryRowContext(ctx,
		"SELECT status FROM onboardings WHERE id = $1 FOR UPDATE", onboardingID,
	).Scan(&previousStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, persistence.NewStepError("complete_step", onboardingID, completion.StepProgressID, persistence.ErrOnboardingNotFound)
		}

		return nil, false, fmt.Errorf("failed to lock onboarding %s: %w", onboardingID, err)
	}

	data, err := json.Marshal(completion.Data)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal step data: %w", err)
	}

	update := `
		UPDATE step_progress
		SET status = $1, data = $2, completed_at = $3
		WHERE id = $4 AND onboarding_id = $5 AND status <> $1
	`

	result, err := tx.ExecContext(ctx, update,
		models.StepProgressCompleted, data, completion.CompletedAt,
		completion.StepProgressID, onboardingID,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to complete step progress %s: %w", completion.StepProgressID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	if affected == 0 {
		var exists bool

		err = tx.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM step_progress WHERE id = $1 AND onboarding_id = $2)",
			completion.StepProgressID, onboardingID,
		).Scan(&exists)
		if err != nil {
			return nil, false, fmt.Errorf("failed to check step progress %s: %w", completion.StepProgressID, err)
		}

		if !exists {
			return nil, false, persistence.NewStepError("complete_step", onboardingID, completion.StepProgressID, persistence.ErrStepProgressNotFound)
		}

		return nil, false, persistence.NewStepError("complete_step", onboardingID, completion.StepProgressID, persistence.ErrStepAlreadyCompleted)
	}

	var remaining int

	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM step_progress WHERE onboarding_id = $1 AND status <> $2",
		onboardingID, models.StepProgressCompleted,
	).Scan(&remaining)
	if err != nil {
		return nil, false, fmt.Errorf("failed to count remaining steps: %w", err)
	}

	status := models.OnboardingStatusInProgress
	if remaining == 0 {
		status = models.OnboardingStatusCompleted
	}

	completedNow := previousStatus != models.OnboardingStatusCompleted && status == models.OnboardingStatusCompleted

	if completedNow {
		_, err = tx.ExecContext(ctx,
			"UPDATE onboardings SET status = $1, last_activity_at = $2, completed_at = $2 WHERE id = $3",
			status, completion.CompletedAt, onboardingID,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			"UPDATE onboardings SET status = $1, last_activity_at = $2 WHERE id = $3",
			status, completion.CompletedAt, onboardingID,
		)
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to update onboarding %s: %w", onboardingID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit step completion: %w", err)
	}

	onboarding, err := r.GetByID(ctx, onboardingID)
	if err != nil {
		return nil, false, err
	}

	if onboarding == nil {
		return nil, false, persistence.NewOnboardingError("complete_step", onboardingID, persistence.ErrOnboardingNotFound)
	}

	return onboarding, completedNow, nil
}

// TouchActivity bumps last-activity without touching step state.
func (r *OnboardingRepository) TouchActivity(ctx context.Context, onboardingID string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE onboardings SET last_activity_at = $1 WHERE id = $2", at, onboardingID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch onboarding %s: %w", onboardingID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if affected == 0 {
		return persistence.NewOnboardingError("touch_activity", onboardingID, persistence.ErrOnboardingNotFound)
	}

	return nil
}

func (r *OnboardingRepository) getOne(ctx context.Context, query string, arg any) (*models.Onboarding, error) {
	onboarding, err := scanOnboarding(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan onboarding: %w", err)
	}

	if err := r.loadSteps(ctx, onboarding); err != nil {
		return nil, err
	}

	return onboarding, nil
}

func (r *OnboardingRepository) queryOnboardings(ctx context.Context, query string, args ...any) ([]*models.Onboarding, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query onboardings: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	onboardings := make([]*models.Onboarding, 0)

	for rows.Next() {
		onboarding, err := scanOnboarding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan onboarding: %w", err)
		}

		onboardings = append(onboardings, onboarding)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating onboardings: %w", err)
	}

	for _, onboarding := range onboardings {
		if err := r.loadSteps(ctx, onboarding); err != nil {
			return nil, err
		}
	}

	return onboardings, nil
}

// loadSteps attaches the step progress records in flow order, each joined with
// its step template.
func (r *OnboardingRepository) loadSteps(ctx context.Context, onboarding *models.Onboarding) error {
	query := `
		SELECT
			sp.id
		  , sp.onboarding_id
		  , sp.step_id
		  , sp.status
		  , sp.data
		  , sp.completed_at
		  , fs.id
		  , fs.flow_id
		  , fs.step_type
		  , fs.title
		  , fs.description
		  , fs.config
		  , fs.step_order
		FROM step_progress sp
		JOIN flow_steps fs ON fs.flow_id = $2 AND fs.id = sp.step_id
		WHERE sp.onboarding_id = $1
		ORDER BY sp.step_order ASC
	`

	rows, err := r.db.QueryContext(ctx, query, onboarding.ID, onboarding.FlowID)
	if err != nil {
		return fmt.Errorf("failed to query steps of onboarding %s: %w", onboarding.ID, err)
	}

	defer closeRows(ctx, r.logger, rows)

	onboarding.Steps = make([]*models.StepProgress, 0)

	for rows.Next() {
		var (
			sp          models.StepProgress
			step        models.StepTemplate
			data        []byte
			completedAt sql.NullTime
			config      []byte
		)

		err := rows.Scan(
			&sp.ID, &sp.OnboardingID, &sp.StepID, &sp.Status, &data, &completedAt,
			&step.ID, &step.FlowID, &step.Type, &step.Title, &step.Description, &config, &step.Order,
		)
		if err != nil {
			return fmt.Errorf("failed to scan step progress of onboarding %s: %w", onboarding.ID, err)
		}

		if len(data) > 0 {
			if err := json.Unmarshal(data, &sp.Data); err != nil {
				return fmt.Errorf("failed to unmarshal data of step progress %s: %w", sp.ID, err)
			}
		}

		if completedAt.Valid {
			sp.CompletedAt = &completedAt.Time
		}

		if len(config) > 0 {
			if err := json.Unmarshal(config, &step.Config); err != nil {
				return fmt.Errorf("failed to unmarshal config of step %s: %w", step.ID, err)
			}
		}

		sp.Step = &step
		onboarding.Steps = append(onboarding.Steps, &sp)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating steps of onboarding %s: %w", onboarding.ID, err)
	}

	return nil
}

func scanOnboarding(row rowScanner) (*models.Onboarding, error) {
	var (
		onboarding  models.Onboarding
		dueDate     sql.NullTime
		completedAt sql.NullTime
	)

	err := row.Scan(
		&onboarding.ID, &onboarding.ClientID, &onboarding.FlowID, &onboarding.Status,
		&onboarding.PortalToken, &onboarding.Priority, &dueDate,
		&onboarding.LastActivityAt, &onboarding.CreatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		onboarding.DueDate = &dueDate.Time
	}

	if completedAt.Valid {
		onboarding.CompletedAt = &completedAt.Time
	}

	return &onboarding, nil
}
