// Package services implements the business operations behind the provider API
// and the client portal.
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/launchpath/launchpath/pkg/persistence"
	"github.com/launchpath/launchpath/pkg/steps"
)

// Business logic errors. These map to 4xx responses at the web layer.
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidStep     = errors.New("step does not belong to this onboarding")
	ErrNoReminderDue   = errors.New("onboarding is not eligible for a reminder")

	// Authentication errors (401 Unauthorized).
	ErrUnauthorized = errors.New("invalid portal token")

	// Business logic conflicts (409 Conflict).
	ErrFlowNotPublished         = errors.New("flow is not published")
	ErrFlowStepsRequired        = errors.New("flow must have at least one step")
	ErrFlowStepsLocked          = errors.New("cannot modify steps of a flow with onboardings")
	ErrFlowHasActiveOnboardings = errors.New("flow has active onboardings")
)

// Not-found sentinels, re-exported from persistence so callers only import
// one package.
var (
	ErrFlowNotFound       = persistence.ErrFlowNotFound
	ErrClientNotFound     = persistence.ErrClientNotFound
	ErrOnboardingNotFound = persistence.ErrOnboardingNotFound
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// StepValidationError carries the field-scoped reasons a step submission was
// rejected. The whole submission failed; the step was not mutated.
type StepValidationError struct {
	Errors []steps.ValidationError
}

func (e *StepValidationError) Error() string {
	messages := make([]string, 0, len(e.Errors))
	for _, verr := range e.Errors {
		messages = append(messages, verr.Error())
	}

	return "submission rejected: " + strings.Join(messages, "; ")
}

// AsStepValidationError extracts a StepValidationError from an error chain.
func AsStepValidationError(err error) (*StepValidationError, bool) {
	var sve *StepValidationError
	if errors.As(err, &sve) {
		return sve, true
	}

	return nil, false
}

// IsValidationError checks if an error should return HTTP 400.
func IsValidationError(err error) bool {
	if _, ok := AsStepValidationError(err); ok {
		return true
	}

	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidPriority) ||
		errors.Is(err, ErrInvalidStep) ||
		errors.Is(err, ErrNoReminderDue)
}

// IsConflictError checks if an error should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrFlowNotPublished) ||
		errors.Is(err, ErrFlowStepsRequired) ||
		errors.Is(err, ErrFlowStepsLocked) ||
		errors.Is(err, ErrFlowHasActiveOnboardings)
}

// IsUnauthorizedError checks if an error should return HTTP 401.
func IsUnauthorizedError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrFlowNotFound) ||
		errors.Is(err, ErrClientNotFound) ||
		errors.Is(err, ErrOnboardingNotFound)
}
