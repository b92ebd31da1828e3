package models

import "time"

// NotificationType identifies what kind of email a log entry records.
type NotificationType string

const (
	NotificationTypeWelcome    NotificationType = "welcome"
	NotificationTypeReminder   NotificationType = "reminder"
	NotificationTypeCompletion NotificationType = "completion"
)

// NotificationLog records a dispatched notification. The reminder sweep uses
// it to enforce at most one automated reminder per onboarding per rolling
// 24-hour window.
type NotificationLog struct {
	ID             string           `json:"id"`
	OnboardingID   string           `json:"onboarding_id"`
	Type           NotificationType `json:"type"`
	RecipientEmail string           `json:"recipient_email"`
	Metadata       map[string]any   `json:"metadata,omitempty"`
	SentAt         time.Time        `json:"sent_at"`
}
