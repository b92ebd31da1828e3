package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/launchpath/launchpath/pkg/eventbus"
	"github.com/launchpath/launchpath/pkg/events"
	"github.com/launchpath/launchpath/pkg/models"
	"github.com/launchpath/launchpath/pkg/notify"
	"github.com/launchpath/launchpath/pkg/persistence"
)

// DefaultInactivityThreshold is how long an IN_PROGRESS onboarding must sit
// idle before the sweep considers it stalled.
const DefaultInactivityThreshold = 72 * time.Hour

// reminderDedupWindow enforces at most one automated reminder per onboarding
// per rolling 24-hour window.
const reminderDedupWindow = 24 * time.Hour

// Reminder nudges stalled onboardings.
type Reminder struct {
	persistence persistence.Persistence
	notifier    *notify.Notifier
	publisher   eventbus.EventPublisher
	threshold   time.Duration
	logger      *slog.Logger
}

// NewReminder creates a new reminder service. A zero threshold selects the
// default.
func NewReminder(
	logger *slog.Logger,
	persist persistence.Persistence,
	notifier *notify.Notifier,
	publisher eventbus.EventPublisher,
	threshold time.Duration,
) *Reminder {
	if threshold <= 0 {
		threshold = DefaultInactivityThreshold
	}

	return &Reminder{
		persistence: persist,
		notifier:    notifier,
		publisher:   publisher,
		threshold:   threshold,
		logger:      logger.With("module", "reminder_service"),
	}
}

// SweepEntry records the sweep's decision for one candidate.
type SweepEntry struct {
	OnboardingID string `json:"onboarding_id"`
	Sent         bool   `json:"sent"`
	Reason       string `json:"reason,omitempty"`
}

// SweepResult summarizes one sweep run.
type SweepResult struct {
	CandidateCount int          `json:"candidate_count"`
	SentCount      int          `json:"sent_count"`
	Entries        []SweepEntry `json:"entries"`
}

// Sweep finds IN_PROGRESS onboardings idle past the inactivity threshold and
// sends each a reminder, skipping any that already received one inside the
// dedup window. One failed send never aborts the rest of the sweep.
func (s *Reminder) Sweep(ctx context.Context) (*SweepResult, error) {
	now := time.Now().UTC()
	cutoff := now.Add(-s.threshold)

	candidates, err := s.persistence.OnboardingRepository().ListInactiveSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list stalled onboardings: %w", err)
	}

	result := &SweepResult{
		CandidateCount: len(candidates),
		Entries:        make([]SweepEntry, 0, len(candidates)),
	}

	for _, onboarding := range candidates {
		entry := SweepEntry{OnboardingID: onboarding.ID}

		recent, err := s.persistence.NotificationLogRepository().HasRecentNotification(
			ctx, onboarding.ID, models.NotificationTypeReminder, now.Add(-reminderDedupWindow),
		)
		if err != nil {
			entry.Reason = "dedup check failed: " + err.Error()
			result.Entries = append(result.Entries, entry)

			s.logger.ErrorContext(ctx, "Reminder dedup check failed",
				"onboarding_id", onboarding.ID, "error", err)

			continue
		}

		if recent {
			entry.Reason = "reminder already sent within 24h"
			result.Entries = append(result.Entries, entry)

			continue
		}

		if err := s.send(ctx, onboarding); err != nil {
			entry.Reason = err.Error()
			result.Entries = append(result.Entries, entry)

			s.logger.ErrorContext(ctx, "Reminder send failed",
				"onboarding_id", onboarding.ID, "error", err)

			continue
		}

		entry.Sent = true
		result.Entries = append(result.Entries, entry)
		result.SentCount++
	}

	s.logger.InfoContext(ctx, "Reminder sweep finished",
		"candidates", result.CandidateCount, "sent", result.SentCount)

	return result, nil
}

// SendManual sends a reminder for one onboarding on the provider's request.
// Manual reminders skip the inactivity threshold and the dedup window but
// still refuse terminal onboardings.
func (s *Reminder) SendManual(ctx context.Context, onboardingID string) error {
	onboarding, err := s.persistence.OnboardingRepository().GetByID(ctx, onboardingID)
	if err != nil {
		return err
	}

	if onboarding == nil {
		return ErrOnboardingNotFound
	}

	if onboarding.IsTerminal() {
		return ErrNoReminderDue
	}

	return s.send(ctx, onboarding)
}

// SendManualForClient sends a reminder to a client's most recently assigned
// non-terminal onboarding. ErrNoReminderDue when every onboarding the client
// has is already completed, or they have none.
func (s *Reminder) SendManualForClient(ctx context.Context, clientID string) error {
	client, err := s.persistence.ClientRepository().GetByID(ctx, clientID)
	if err != nil {
		return err
	}

	if client == nil {
		return ErrClientNotFound
	}

	onboardings, err := s.persistence.OnboardingRepository().GetByClient(ctx, clientID)
	if err != nil {
		return err
	}

	var target *models.Onboarding

	for _, onboarding := range onboardings {
		if onboarding.IsTerminal() {
			continue
		}

		if target == nil || onboarding.CreatedAt.After(target.CreatedAt) {
			target = onboarding
		}
	}

	if target == nil {
		return ErrNoReminderDue
	}

	return s.send(ctx, target)
}

func (s *Reminder) send(ctx context.Context, onboarding *models.Onboarding) error {
	if err := s.notifier.SendReminder(ctx, onboarding); err != nil {
		return err
	}

	if s.publisher != nil {
		event := events.ReminderSent{
			BaseEvent:      events.NewBaseEvent(events.ReminderSentEvent, onboarding.ID),
			ClientID:       onboarding.ClientID,
			LastActivityAt: onboarding.LastActivityAt,
		}

		if err := s.publisher.Publish(ctx, onboarding.ID, event); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish reminder event",
				"onboarding_id", onboarding.ID, "error", err)
		}
	}

	return nil
}
