// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrFlowNotFound indicates a flow was not found by the given identifier.
	ErrFlowNotFound = errors.New("flow not found")

	// ErrClientNotFound indicates a client was not found by the given identifier.
	ErrClientNotFound = errors.New("client not found")

	// ErrOnboardingNotFound indicates an onboarding was not found by id or token.
	ErrOnboardingNotFound = errors.New("onboarding not found")

	// ErrStepProgressNotFound indicates a step progress record does not exist
	// or does not belong to the claimed onboarding.
	ErrStepProgressNotFound = errors.New("step progress not found")

	// ErrStepAlreadyCompleted indicates a conditional completion write found
	// the step already COMPLETED. The transition is terminal.
	ErrStepAlreadyCompleted = errors.New("step already completed")

	// ErrOnboardingAlreadyExists indicates an onboarding with the same
	// identifier already exists.
	ErrOnboardingAlreadyExists = errors.New("onboarding already exists")
)

// OnboardingError wraps onboarding-related errors with additional context.
type OnboardingError struct {
	Op           string // Operation being performed (e.g., "GetByToken", "CompleteStep")
	OnboardingID string
	StepID       string
	Err          error
}

func (e *OnboardingError) Error() string {
	if e.StepID != "" {
		return fmt.Sprintf("%s operation failed for step %s of onboarding %s: %v", e.Op, e.StepID, e.OnboardingID, e.Err)
	}

	return fmt.Sprintf("%s operation failed for onboarding %s: %v", e.Op, e.OnboardingID, e.Err)
}

func (e *OnboardingError) Unwrap() error {
	return e.Err
}

func (e *OnboardingError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewOnboardingError creates a new onboarding error with context.
func NewOnboardingError(op, onboardingID string, err error) *OnboardingError {
	return &OnboardingError{
		Op:           op,
		OnboardingID: onboardingID,
		Err:          err,
	}
}

// NewStepError creates a new onboarding error scoped to one step.
func NewStepError(op, onboardingID, stepID string, err error) *OnboardingError {
	return &OnboardingError{
		Op:           op,
		OnboardingID: onboardingID,
		StepID:       stepID,
		Err:          err,
	}
}

// FlowError wraps flow-related errors with additional context.
type FlowError struct {
	Op     string
	FlowID string
	Err    error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s operation failed for flow %s: %v", e.Op, e.FlowID, e.Err)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

func (e *FlowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsFlowNotFound checks if an error indicates a flow was not found.
func IsFlowNotFound(err error) bool {
	return errors.Is(err, ErrFlowNotFound)
}

// IsClientNotFound checks if an error indicates a client was not found.
func IsClientNotFound(err error) bool {
	return errors.Is(err, ErrClientNotFound)
}

// IsOnboardingNotFound checks if an error indicates an onboarding was not found.
func IsOnboardingNotFound(err error) bool {
	return errors.Is(err, ErrOnboardingNotFound)
}

// IsStepProgressNotFound checks if an error indicates a step progress record was not found.
func IsStepProgressNotFound(err error) bool {
	return errors.Is(err, ErrStepProgressNotFound)
}

// IsStepAlreadyCompleted checks if an error indicates a terminal step was resubmitted.
func IsStepAlreadyCompleted(err error) bool {
	return errors.Is(err, ErrStepAlreadyCompleted)
}
