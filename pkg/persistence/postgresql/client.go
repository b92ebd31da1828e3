package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/launchpath/launchpath/pkg/models"
)

// ClientRepository handles client-related database operations.
type ClientRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *ClientRepository) List(ctx context.Context) ([]*models.Client, error) {
	query := `
		SELECT id, name, email, company, notes, created_at, updated_at
		FROM clients
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	clients := make([]*models.Client, 0)

	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}

		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	query := `
		SELECT id, name, email, company, notes, created_at, updated_at
		FROM clients
		WHERE id = $1
	`

	client, err := scanClient(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan client: %w", err)
	}

	return client, nil
}

func (r *ClientRepository) Save(ctx context.Context, client *models.Client) error {
	now := time.Now().UTC()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}

	client.UpdatedAt = now

	query := `
		INSERT INTO clients (id, name, email, company, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name
		  , email = EXCLUDED.email
		  , company = EXCLUDED.company
		  , notes = EXCLUDED.notes
		  , updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		client.ID, client.Name, client.Email, client.Company, client.Notes,
		client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save client %s: %w", client.ID, err)
	}

	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete client %s: %w", id, err)
	}

	return nil
}

func scanClient(row rowScanner) (*models.Client, error) {
	var client models.Client

	err := row.Scan(
		&client.ID, &client.Name, &client.Email, &client.Company,
		&client.Notes, &client.CreatedAt, &client.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &client, nil
}
