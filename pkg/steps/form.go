package steps

import (
	"regexp"
	"strings"

	"github.com/launchpath/launchpath/pkg/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FormValidator validates FORM submissions field by field. Unknown field ids
// are dropped rather than rejected, so a stale client cannot poison the
// stored payload.
type FormValidator struct{}

func (v *FormValidator) Type() models.StepType {
	return models.StepTypeForm
}

func (v *FormValidator) ValidateSubmission(config *models.StepConfig, data map[string]any) (map[string]any, []ValidationError) {
	var fields []models.FormField
	if config != nil && config.Form != nil {
		fields = config.Form.Fields
	}

	verrs := make([]ValidationError, 0)
	validated := make(map[string]any, len(fields))

	for _, field := range fields {
		value := stringValue(data[field.ID])
		trimmed := strings.TrimSpace(value)

		if field.Required && trimmed == "" {
			verrs = append(verrs, ValidationError{Field: field.ID, Message: "This field is required"})

			continue
		}

		if field.Type == models.FieldTypeEmail && trimmed != "" && !emailPattern.MatchString(trimmed) {
			verrs = append(verrs, ValidationError{Field: field.ID, Message: "Please enter a valid email"})

			continue
		}

		if value != "" {
			validated[field.ID] = value
		}
	}

	if len(verrs) > 0 {
		return nil, verrs
	}

	return validated, nil
}

func (v *FormValidator) ConfigSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"fields"},
		"properties": map[string]any{
			"fields": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":     "object",
					"required": []string{"id", "type", "label"},
					"properties": map[string]any{
						"id":    map[string]any{"type": "string", "minLength": 1},
						"label": map[string]any{"type": "string", "minLength": 1},
						"type": map[string]any{
							"type": "string",
							"enum": []string{"text", "textarea", "email", "phone", "url", "select"},
						},
						"placeholder": map[string]any{"type": "string"},
						"required":    map[string]any{"type": "boolean"},
						"options": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type":     "object",
								"required": []string{"label", "value"},
								"properties": map[string]any{
									"label": map[string]any{"type": "string"},
									"value": map[string]any{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
	}
}

func stringValue(v any) string {
	s, _ := v.(string)

	return s
}
