package notify

import (
	"context"
	"fmt"

	"github.com/launchpath/launchpath/pkg/eventbus"
	"github.com/launchpath/launchpath/pkg/events"
)

// RegisterHandlers subscribes the notifier to the lifecycle events that carry
// an email. Handler failures are logged and acked: a lost email must never
// wedge the event stream or roll back the state change that triggered it.
func (n *Notifier) RegisterHandlers(bus eventbus.EventSubscriber) error {
	err := bus.Handle(events.OnboardingAssignedEvent, n.handleAssigned)
	if err != nil {
		return fmt.Errorf("failed to register assigned handler: %w", err)
	}

	err = bus.Handle(events.OnboardingCompletedEvent, n.handleCompleted)
	if err != nil {
		return fmt.Errorf("failed to register completed handler: %w", err)
	}

	return nil
}

func (n *Notifier) handleAssigned(ctx context.Context, event any) error {
	assigned, ok := event.(*events.OnboardingAssigned)
	if !ok {
		return nil
	}

	onboarding, err := n.persistence.OnboardingRepository().GetByID(ctx, assigned.OnboardingID)
	if err != nil || onboarding == nil {
		n.logger.ErrorContext(ctx, "Cannot load onboarding for welcome email",
			"onboarding_id", assigned.OnboardingID, "error", err)

		return nil
	}

	if err := n.SendWelcome(ctx, onboarding); err != nil {
		n.logger.ErrorContext(ctx, "Welcome email failed",
			"onboarding_id", onboarding.ID, "error", err)
	}

	return nil
}

func (n *Notifier) handleCompleted(ctx context.Context, event any) error {
	completed, ok := event.(*events.OnboardingCompleted)
	if !ok {
		return nil
	}

	onboarding, err := n.persistence.OnboardingRepository().GetByID(ctx, completed.OnboardingID)
	if err != nil || onboarding == nil {
		n.logger.ErrorContext(ctx, "Cannot load onboarding for completion email",
			"onboarding_id", completed.OnboardingID, "error", err)

		return nil
	}

	if err := n.SendCompletion(ctx, onboarding); err != nil {
		n.logger.ErrorContext(ctx, "Completion email failed",
			"onboarding_id", onboarding.ID, "error", err)
	}

	return nil
}
