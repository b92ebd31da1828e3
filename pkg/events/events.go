// Package events defines the event types published on onboarding lifecycle
// transitions.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/launchpath/launchpath/pkg/models"
)

type EventType string

// Topic is the single stream carrying onboarding lifecycle events.
const Topic = "launchpath.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	OnboardingAssignedEvent  EventType = "onboarding.assigned"
	StepCompletedEvent       EventType = "onboarding.step.completed"
	OnboardingCompletedEvent EventType = "onboarding.completed"
	ReminderSentEvent        EventType = "onboarding.reminder.sent"
)

type BaseEvent struct {
	ID           string         `json:"id"`
	Type         EventType      `json:"type"`
	Timestamp    time.Time      `json:"timestamp"`
	OnboardingID string         `json:"onboarding_id"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// OnboardingAssigned is published when a flow is assigned to a client and the
// portal becomes reachable.
type OnboardingAssigned struct {
	BaseEvent

	ClientID string `json:"client_id"`
	FlowID   string `json:"flow_id"`
}

func (o OnboardingAssigned) GetType() EventType {
	return OnboardingAssignedEvent
}

// StepCompleted is published for every accepted step submission.
type StepCompleted struct {
	BaseEvent

	StepProgressID string          `json:"step_progress_id"`
	StepID         string          `json:"step_id"`
	StepType       models.StepType `json:"step_type"`
	Progress       int             `json:"progress"`
}

func (s StepCompleted) GetType() EventType {
	return StepCompletedEvent
}

// OnboardingCompleted is published exactly once per onboarding, on the write
// that transitioned the derived status to COMPLETED.
type OnboardingCompleted struct {
	BaseEvent

	ClientID    string    `json:"client_id"`
	FlowID      string    `json:"flow_id"`
	CompletedAt time.Time `json:"completed_at"`
}

func (o OnboardingCompleted) GetType() EventType {
	return OnboardingCompletedEvent
}

// ReminderSent is published after the reminder sweep dispatched a nudge.
type ReminderSent struct {
	BaseEvent

	ClientID       string    `json:"client_id"`
	RecipientEmail string    `json:"recipient_email"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

func (r ReminderSent) GetType() EventType {
	return ReminderSentEvent
}

func NewBaseEvent(eventType EventType, onboardingID string) BaseEvent {
	return BaseEvent{
		ID:           uuid.New().String(),
		Type:         eventType,
		Timestamp:    time.Now().UTC(),
		OnboardingID: onboardingID,
		Metadata:     make(map[string]any),
	}
}
