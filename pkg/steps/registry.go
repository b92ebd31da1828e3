// Package steps defines the step type registry: the fixed set of step kinds,
// each kind's author-time configuration schema, and the validation applied to
// client-submitted step data.
package steps

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/launchpath/launchpath/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// ValidationError describes one rejected aspect of a submission. Field is set
// for FORM steps (scoped to a form field id) and empty for step-scoped errors.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("field %s: %s", e.Field, e.Message)
	}

	return e.Message
}

// Validator validates author-time configuration and client submissions for
// one step type.
type Validator interface {
	Type() models.StepType

	// ValidateSubmission checks client-submitted data against the step's
	// configuration. On success it returns the normalized payload to persist;
	// on failure it returns the reasons and the step must remain unchanged.
	// There is no partial acceptance.
	ValidateSubmission(config *models.StepConfig, data map[string]any) (map[string]any, []ValidationError)

	// ConfigSchema returns the JSON Schema the step's configuration variant
	// must satisfy, or nil when the type carries no configuration.
	ConfigSchema() map[string]any
}

// Registry dispatches validation by step type.
type Registry struct {
	logger     *slog.Logger
	validators map[models.StepType]Validator
}

// NewRegistry creates a registry with every built-in step type registered.
func NewRegistry(logger *slog.Logger) *Registry {
	r := &Registry{
		logger:     logger,
		validators: make(map[models.StepType]Validator),
	}

	r.Register(&WelcomeValidator{})
	r.Register(&FormValidator{})
	r.Register(&FileUploadValidator{})
	r.Register(&ContractValidator{})
	r.Register(&ScheduleValidator{})

	return r
}

// Register adds a validator, replacing any existing one for the same type.
func (r *Registry) Register(v Validator) {
	r.validators[v.Type()] = v
}

// Validator returns the validator for the given type.
func (r *Registry) Validator(stepType models.StepType) (Validator, error) {
	v, ok := r.validators[stepType]
	if !ok {
		return nil, fmt.Errorf("step type '%s' not registered", stepType)
	}

	return v, nil
}

// ValidateSubmission runs the type's submission validation. The returned map
// is the normalized payload to persist; a non-empty error slice means the
// whole submission is rejected.
func (r *Registry) ValidateSubmission(
	stepType models.StepType,
	config *models.StepConfig,
	data map[string]any,
) (map[string]any, []ValidationError, error) {
	v, err := r.Validator(stepType)
	if err != nil {
		return nil, nil, err
	}

	validated, verrs := v.ValidateSubmission(config, data)

	return validated, verrs, nil
}

// ValidateConfig checks a step template's configuration variant against the
// type's JSON Schema. Used at flow save time so malformed configs never reach
// a client.
func (r *Registry) ValidateConfig(stepType models.StepType, config *models.StepConfig) error {
	v, err := r.Validator(stepType)
	if err != nil {
		return err
	}

	schema := v.ConfigSchema()
	if schema == nil {
		return nil
	}

	variant := configVariant(stepType, config)
	if variant == nil {
		return fmt.Errorf("step type '%s' requires configuration", stepType)
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(variant)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate %s config: %w", stepType, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, resultError := range result.Errors() {
			details = append(details, resultError.String())
		}

		return fmt.Errorf("invalid %s config: %s", stepType, strings.Join(details, "; "))
	}

	return nil
}

// HealthCheck reports whether every built-in step type is registered.
func (r *Registry) HealthCheck() (string, bool) {
	for _, stepType := range models.StepTypes() {
		if _, ok := r.validators[stepType]; !ok {
			return "Step type registry is missing type " + string(stepType), false
		}
	}

	return "Step type registry is healthy", true
}

// configVariant extracts the config member matching the step type, so the
// schema validates exactly the payload the type reads.
func configVariant(stepType models.StepType, config *models.StepConfig) any {
	if config == nil {
		return nil
	}

	switch stepType {
	case models.StepTypeForm:
		if config.Form == nil {
			return nil
		}

		return config.Form
	case models.StepTypeFileUpload:
		if config.FileUpload == nil {
			return nil
		}

		return config.FileUpload
	case models.StepTypeContract:
		if config.Contract == nil {
			return nil
		}

		return config.Contract
	case models.StepTypeSchedule:
		if config.Schedule == nil {
			return nil
		}

		return config.Schedule
	case models.StepTypeWelcome:
		return nil
	}

	return nil
}
