package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/launchpath/launchpath/pkg/models"
)

// FlowRepository handles flow-related database operations.
type FlowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// List returns all flows with their step templates, newest first.
func (r *FlowRepository) List(ctx context.Context) ([]*models.Flow, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , status
		  , owner
		  , created_at
		  , updated_at
		  , published_at
		FROM flows
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query flows: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	flows := make([]*models.Flow, 0)

	for rows.Next() {
		flow, err := scanFlow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flow: %w", err)
		}

		flows = append(flows, flow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating flows: %w", err)
	}

	for _, flow := range flows {
		if err := r.loadSteps(ctx, flow); err != nil {
			return nil, err
		}
	}

	return flows, nil
}

// GetByID retrieves a flow with its step templates, or nil when absent.
func (r *FlowRepository) GetByID(ctx context.Context, id string) (*models.Flow, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , status
		  , owner
		  , created_at
		  , updated_at
		  , published_at
		FROM flows
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	flow, err := scanFlow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan flow: %w", err)
	}

	if err := r.loadSteps(ctx, flow); err != nil {
		return nil, err
	}

	return flow, nil
}

// Save upserts the flow row and rewrites its step templates in one
// transaction, keeping step orders dense.
func (r *FlowRepository) Save(ctx context.Context, flow *models.Flow) error {
	now := time.Now().UTC()
	if flow.CreatedAt.IsZero() {
		flow.CreatedAt = now
	}

	flow.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer rollback(ctx, r.logger, tx)

	upsert := `
		INSERT INTO flows (id, name, description, status, owner, created_at, updated_at, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name
		  , description = EXCLUDED.description
		  , status = EXCLUDED.status
		  , owner = EXCLUDED.owner
		  , updated_at = EXCLUDED.updated_at
		  , published_at = EXCLUDED.published_at
	`

	_, err = tx.ExecContext(ctx, upsert,
		flow.ID, flow.Name, flow.Description, flow.Status, flow.Owner,
		flow.CreatedAt, flow.UpdatedAt, flow.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save flow %s: %w", flow.ID, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM flow_steps WHERE flow_id = $1", flow.ID); err != nil {
		return fmt.Errorf("failed to clear steps of flow %s: %w", flow.ID, err)
	}

	insertStep := `
		INSERT INTO flow_steps (id, flow_id, step_type, title, description, config, step_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for i, step := range flow.Steps {
		if step.ID == "" {
			step.ID = uuid.New().String()
		}

		step.FlowID = flow.ID
		step.Order = i

		config, err := json.Marshal(step.Config)
		if err != nil {
			return fmt.Errorf("failed to marshal config of step %s: %w", step.ID, err)
		}

		_, err = tx.ExecContext(ctx, insertStep,
			step.ID, flow.ID, step.Type, step.Title, step.Description, config, step.Order,
		)
		if err != nil {
			return fmt.Errorf("failed to save step %s of flow %s: %w", step.ID, flow.ID, err)
		}
	}

	return tx.Commit()
}

// Delete removes a flow; its step templates cascade.
func (r *FlowRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM flows WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete flow %s: %w", id, err)
	}

	return nil
}

func (r *FlowRepository) loadSteps(ctx context.Context, flow *models.Flow) error {
	query := `
		SELECT
			id
		  , flow_id
		  , step_type
		  , title
		  , description
		  , config
		  , step_order
		FROM flow_steps
		WHERE flow_id = $1
		ORDER BY step_order ASC
	`

	rows, err := r.db.QueryContext(ctx, query, flow.ID)
	if err != nil {
		return fmt.Errorf("failed to query steps of flow %s: %w", flow.ID, err)
	}

	defer closeRows(ctx, r.logger, rows)

	flow.Steps = make([]*models.StepTemplate, 0)

	for rows.Next() {
		step, err := scanStepTemplate(rows)
		if err != nil {
			return fmt.Errorf("failed to scan step of flow %s: %w", flow.ID, err)
		}

		flow.Steps = append(flow.Steps, step)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating steps of flow %s: %w", flow.ID, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlow(row rowScanner) (*models.Flow, error) {
	var (
		flow        models.Flow
		owner       sql.NullString
		publishedAt sql.NullTime
	)

	err := row.Scan(
		&flow.ID, &flow.Name, &flow.Description, &flow.Status,
		&owner, &flow.CreatedAt, &flow.UpdatedAt, &publishedAt,
	)
	if err != nil {
		return nil, err
	}

	flow.Owner = owner.String

	if publishedAt.Valid {
		flow.PublishedAt = &publishedAt.Time
	}

	return &flow, nil
}

func scanStepTemplate(row rowScanner) (*models.StepTemplate, error) {
	var (
		step   models.StepTemplate
		config []byte
	)

	err := row.Scan(
		&step.ID, &step.FlowID, &step.Type, &step.Title,
		&step.Description, &config, &step.Order,
	)
	if err != nil {
		return nil, err
	}

	if len(config) > 0 {
		if err := json.Unmarshal(config, &step.Config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config of step %s: %w", step.ID, err)
		}
	}

	return &step, nil
}

func closeRows(ctx context.Context, logger *slog.Logger, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}

func rollback(ctx context.Context, logger *slog.Logger, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.ErrorContext(ctx, "failed to rollback transaction", "error", err)
	}
}
