package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/launchpath/launchpath/pkg/models"
)

// NotificationLogRepository handles notification log database operations.
type NotificationLogRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *NotificationLogRepository) Record(ctx context.Context, entry *models.NotificationLog) error {
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now().UTC()
	}

	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal notification metadata: %w", err)
	}

	query := `
		INSERT INTO notification_logs (id, onboarding_id, notification_type, recipient_email, metadata, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.ExecContext(ctx, query,
		entry.ID, entry.OnboardingID, entry.Type, entry.RecipientEmail, metadata, entry.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record notification %s: %w", entry.ID, err)
	}

	return nil
}

func (r *NotificationLogRepository) ListByOnboarding(ctx context.Context, onboardingID string) ([]*models.NotificationLog, error) {
	query := `
		SELECT id, onboarding_id, notification_type, recipient_email, metadata, sent_at
		FROM notification_logs
		WHERE onboarding_id = $1
		ORDER BY sent_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, onboardingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	entries := make([]*models.NotificationLog, 0)

	for rows.Next() {
		var (
			entry    models.NotificationLog
			metadata []byte
		)

		err := rows.Scan(
			&entry.ID, &entry.OnboardingID, &entry.Type,
			&entry.RecipientEmail, &metadata, &entry.SentAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal notification metadata: %w", err)
			}
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return entries, nil
}

// HasRecentNotification answers the dedup question with a single indexed
// EXISTS query.
func (r *NotificationLogRepository) HasRecentNotification(ctx context.Context, onboardingID string, notificationType models.NotificationType, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notification_logs
			WHERE onboarding_id = $1 AND notification_type = $2 AND sent_at > $3
		)
	`

	var exists bool

	err := r.db.QueryRowContext(ctx, query, onboardingID, notificationType, since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check recent notifications: %w", err)
	}

	return exists, nil
}
