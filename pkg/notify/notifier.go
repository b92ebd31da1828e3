package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/launchpath/launchpath/pkg/models"
	"github.com/launchpath/launchpath/pkg/persistence"
)

// Notifier renders and sends lifecycle emails, recording each send in the
// notification log. The log is what the reminder sweep dedups against, so a
// send without a log entry is a bug, not an optimization.
type Notifier struct {
	mailer        Mailer
	persistence   persistence.Persistence
	portalBaseURL string
	logger        *slog.Logger
}

func NewNotifier(logger *slog.Logger, mailer Mailer, persist persistence.Persistence, portalBaseURL string) *Notifier {
	return &Notifier{
		mailer:        mailer,
		persistence:   persist,
		portalBaseURL: portalBaseURL,
		logger:        logger.With("module", "notifier"),
	}
}

// PortalURL builds the tokenized link included in every client email.
func (n *Notifier) PortalURL(token string) string {
	return fmt.Sprintf("%s/portal/%s", n.portalBaseURL, token)
}

// SendWelcome emails the client their portal link after a flow is assigned.
func (n *Notifier) SendWelcome(ctx context.Context, onboarding *models.Onboarding) error {
	client, err := n.client(ctx, onboarding)
	if err != nil {
		return err
	}

	companyLine := ""
	if client.Company != "" {
		companyLine = "Welcome aboard from the team at " + client.Company + "!\n\n"
	}

	body, err := render(welcomeTemplate, templateData{
		ClientName:  client.Name,
		CompanyLine: companyLine,
		PortalURL:   n.PortalURL(onboarding.PortalToken),
		DueDate:     formatDueDate(onboarding.DueDate),
	})
	if err != nil {
		return err
	}

	return n.send(ctx, onboarding, client, models.NotificationTypeWelcome, "Your onboarding is ready", body, nil)
}

// SendReminder nudges an inactive client. Callers are responsible for the
// dedup window check; the notifier just sends and records.
func (n *Notifier) SendReminder(ctx context.Context, onboarding *models.Onboarding) error {
	client, err := n.client(ctx, onboarding)
	if err != nil {
		return err
	}

	body, err := render(reminderTemplate, templateData{
		ClientName: client.Name,
		PortalURL:  n.PortalURL(onboarding.PortalToken),
		Progress:   onboarding.Progress(),
		DueDate:    formatDueDate(onboarding.DueDate),
	})
	if err != nil {
		return err
	}

	metadata := map[string]any{
		"progress":         onboarding.Progress(),
		"last_activity_at": onboarding.LastActivityAt.Format(time.RFC3339),
	}

	return n.send(ctx, onboarding, client, models.NotificationTypeReminder, "A nudge on your onboarding", body, metadata)
}

// SendCompletion congratulates the client once everything is done.
func (n *Notifier) SendCompletion(ctx context.Context, onboarding *models.Onboarding) error {
	client, err := n.client(ctx, onboarding)
	if err != nil {
		return err
	}

	body, err := render(completionTemplate, templateData{
		ClientName: client.Name,
	})
	if err != nil {
		return err
	}

	return n.send(ctx, onboarding, client, models.NotificationTypeCompletion, "Onboarding complete", body, nil)
}

func (n *Notifier) client(ctx context.Context, onboarding *models.Onboarding) (*models.Client, error) {
	client, err := n.persistence.ClientRepository().GetByID(ctx, onboarding.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client %s: %w", onboarding.ClientID, err)
	}

	if client == nil {
		return nil, fmt.Errorf("client %s of onboarding %s not found", onboarding.ClientID, onboarding.ID)
	}

	return client, nil
}

func (n *Notifier) send(
	ctx context.Context,
	onboarding *models.Onboarding,
	client *models.Client,
	notificationType models.NotificationType,
	subject, body string,
	metadata map[string]any,
) error {
	err := n.mailer.Send(ctx, Message{To: client.Email, Subject: subject, Body: body})
	if err != nil {
		return fmt.Errorf("failed to send %s notification: %w", notificationType, err)
	}

	err = n.persistence.NotificationLogRepository().Record(ctx, &models.NotificationLog{
		ID:             uuid.New().String(),
		OnboardingID:   onboarding.ID,
		Type:           notificationType,
		RecipientEmail: client.Email,
		Metadata:       metadata,
		SentAt:         time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to record %s notification: %w", notificationType, err)
	}

	n.logger.InfoContext(ctx, "Notification sent",
		"type", notificationType,
		"onboarding_id", onboarding.ID,
		"recipient", client.Email,
	)

	return nil
}

func formatDueDate(dueDate *time.Time) string {
	if dueDate == nil {
		return ""
	}

	return dueDate.Format("January 2, 2006")
}
