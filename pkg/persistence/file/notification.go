package file

import (
	"context"
	"sort"
	"time"

	"github.com/launchpath/launchpath/pkg/models"
)

const notificationsCollection = "notifications"

// NotificationLogRepository handles notification log file operations.
type NotificationLogRepository struct {
	root string
}

func (r *NotificationLogRepository) Record(_ context.Context, entry *models.NotificationLog) error {
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now().UTC()
	}

	return writeRecord(r.root, notificationsCollection, entry.ID, entry)
}

func (r *NotificationLogRepository) ListByOnboarding(_ context.Context, onboardingID string) ([]*models.NotificationLog, error) {
	entries, err := listRecords[models.NotificationLog](r.root, notificationsCollection)
	if err != nil {
		return nil, err
	}

	result := make([]*models.NotificationLog, 0)

	for _, entry := range entries {
		if entry.OnboardingID == onboardingID {
			result = append(result, entry)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SentAt.After(result[j].SentAt)
	})

	return result, nil
}

// HasRecentNotification reports whether a notification of the given type was
// recorded for the onboarding after the cutoff. The reminder sweep uses it to
// keep reminders to at most one per rolling window.
func (r *NotificationLogRepository) HasRecentNotification(
	ctx context.Context,
	onboardingID string,
	notificationType models.NotificationType,
	since time.Time,
) (bool, error) {
	entries, err := r.ListByOnboarding(ctx, onboardingID)
	if err != nil {
		return false, err
	}

	for _, entry := range entries {
		if entry.Type == notificationType && entry.SentAt.After(since) {
			return true, nil
		}
	}

	return false, nil
}
