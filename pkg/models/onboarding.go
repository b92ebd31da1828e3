package models

import (
	"math"
	"time"
)

// OnboardingStatus is the derived lifecycle state of a client's run through a
// flow. It is a pure function of the step progress set (see DeriveStatus) and
// is persisted only in lockstep with the write that changed it.
type OnboardingStatus string

const (
	OnboardingStatusNotStarted OnboardingStatus = "NOT_STARTED"
	OnboardingStatusInProgress OnboardingStatus = "IN_PROGRESS"
	OnboardingStatusCompleted  OnboardingStatus = "COMPLETED"
)

// Priority ranks an onboarding for the provider dashboard.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ValidPriority reports whether p is a known priority value.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}

	return false
}

// Onboarding represents one client's instantiated run through one flow. The
// portal token is the sole credential granting the client access to it.
type Onboarding struct {
	ID             string           `json:"id"`
	ClientID       string           `json:"client_id"`
	FlowID         string           `json:"flow_id"`
	Status         OnboardingStatus `json:"status"`
	PortalToken    string           `json:"portal_token"`
	Priority       Priority         `json:"priority"`
	DueDate        *time.Time       `json:"due_date,omitempty"`
	Steps          []*StepProgress  `json:"steps"`
	LastActivityAt time.Time        `json:"last_activity_at"`
	CreatedAt      time.Time        `json:"created_at"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"` // set once, never cleared
}

// StepProgressStatus is the linear per-step lifecycle. Status only moves
// forward; COMPLETED is terminal.
type StepProgressStatus string

const (
	StepProgressNotStarted StepProgressStatus = "NOT_STARTED"
	StepProgressInProgress StepProgressStatus = "IN_PROGRESS"
	StepProgressCompleted  StepProgressStatus = "COMPLETED"
)

// StepProgress tracks one client's progress through one step template.
type StepProgress struct {
	ID           string             `json:"id"`
	OnboardingID string             `json:"onboarding_id"`
	StepID       string             `json:"step_id"`
	Step         *StepTemplate      `json:"step,omitempty"`
	Status       StepProgressStatus `json:"status"`
	Data         map[string]any     `json:"data,omitempty"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty"` // set exactly once
}

// UploadedFile is one entry of a FILE_UPLOAD step's data payload.
type UploadedFile struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"size"`
}

// DeriveStatus computes the onboarding status from its step progress set:
// COMPLETED iff every step is COMPLETED, NOT_STARTED iff every step is
// NOT_STARTED, IN_PROGRESS otherwise. Every mutation path must persist the
// result of this function, never an independently tracked value.
func DeriveStatus(steps []*StepProgress) OnboardingStatus {
	if len(steps) == 0 {
		return OnboardingStatusNotStarted
	}

	allCompleted := true
	allNotStarted := true

	for _, sp := range steps {
		if sp.Status != StepProgressCompleted {
			allCompleted = false
		}

		if sp.Status != StepProgressNotStarted {
			allNotStarted = false
		}
	}

	switch {
	case allCompleted:
		return OnboardingStatusCompleted
	case allNotStarted:
		return OnboardingStatusNotStarted
	default:
		return OnboardingStatusInProgress
	}
}

// Progress returns the completion percentage, rounded to the nearest integer.
// Zero when the onboarding has no steps.
func Progress(steps []*StepProgress) int {
	if len(steps) == 0 {
		return 0
	}

	completed := 0

	for _, sp := range steps {
		if sp.Status == StepProgressCompleted {
			completed++
		}
	}

	return int(math.Round(float64(completed) / float64(len(steps)) * 100))
}

// DeriveStatus recomputes the derived status over the owned steps.
func (o *Onboarding) DeriveStatus() OnboardingStatus {
	return DeriveStatus(o.Steps)
}

// Progress returns the onboarding's completion percentage.
func (o *Onboarding) Progress() int {
	return Progress(o.Steps)
}

// IsTerminal reports whether the onboarding has reached its final state.
func (o *Onboarding) IsTerminal() bool {
	return o.Status == OnboardingStatusCompleted
}

// StepProgressByID returns the owned step progress with the given ID, or nil
// when it does not belong to this onboarding.
func (o *Onboarding) StepProgressByID(stepProgressID string) *StepProgress {
	for _, sp := range o.Steps {
		if sp.ID == stepProgressID {
			return sp
		}
	}

	return nil
}

// DueDateStatus classifies an onboarding's due date for the dashboard.
type DueDateStatus string

const (
	DueDateNone    DueDateStatus = "none"
	DueDateOnTrack DueDateStatus = "on-track"
	DueDateDueSoon DueDateStatus = "due-soon"
	DueDateOverdue DueDateStatus = "overdue"
)

const dueSoonWindowDays = 2

// DueStatus returns the due date classification relative to now.
func (o *Onboarding) DueStatus(now time.Time) DueDateStatus {
	if o.DueDate == nil {
		return DueDateNone
	}

	days := int(math.Ceil(o.DueDate.Sub(now).Hours() / 24))

	switch {
	case days < 0:
		return DueDateOverdue
	case days <= dueSoonWindowDays:
		return DueDateDueSoon
	default:
		return DueDateOnTrack
	}
}
