// Package models defines the core domain models for client onboarding flows.
package models

import "time"

// FlowStatus represents the lifecycle state of an onboarding flow.
type FlowStatus string

const (
	FlowStatusDraft     FlowStatus = "draft"     // Editable, not assignable
	FlowStatusPublished FlowStatus = "published" // Assignable to clients
	FlowStatusArchived  FlowStatus = "archived"  // Historical, not assignable
)

// Flow represents a reusable onboarding template: a named, ordered list of
// step templates a provider designs once and assigns to many clients.
type Flow struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"        validate:"required,min=3"`
	Description string          `json:"description"`
	Status      FlowStatus      `json:"status"      validate:"required"`
	Steps       []*StepTemplate `json:"steps"`
	Owner       string          `json:"owner"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
}

// IsAssignable reports whether the flow can be assigned to a client.
func (f *Flow) IsAssignable() bool {
	return f.Status == FlowStatusPublished
}

// StepByID returns the step template with the given ID, or nil.
func (f *Flow) StepByID(stepID string) *StepTemplate {
	for _, step := range f.Steps {
		if step.ID == stepID {
			return step
		}
	}

	return nil
}

// Reorder reassigns dense, zero-based order values following the slice order.
// Step orders must stay dense and unique within a flow.
func (f *Flow) Reorder() {
	for i, step := range f.Steps {
		step.Order = i
	}
}
