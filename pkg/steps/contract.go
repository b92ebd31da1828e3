package steps

import (
	"time"

	"github.com/launchpath/launchpath/pkg/models"
)

// ContractValidator validates CONTRACT submissions: agreement must be an
// explicit true, anything else is rejected.
type ContractValidator struct{}

func (v *ContractValidator) Type() models.StepType {
	return models.StepTypeContract
}

func (v *ContractValidator) ValidateSubmission(_ *models.StepConfig, data map[string]any) (map[string]any, []ValidationError) {
	agreed, ok := data["agreed"].(bool)
	if !ok || !agreed {
		return nil, []ValidationError{{Message: "You must agree to the terms to continue"}}
	}

	agreedAt := timestampOrNow(data["agreedAt"])

	return map[string]any{
		"agreed":   true,
		"agreedAt": agreedAt.Format(time.RFC3339),
	}, nil
}

func (v *ContractValidator) ConfigSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"body_text"},
		"properties": map[string]any{
			"body_text":    map[string]any{"type": "string", "minLength": 1},
			"accept_label": map[string]any{"type": "string"},
		},
	}
}

// timestampOrNow parses a client-supplied RFC3339 timestamp, falling back to
// the server clock when absent or malformed.
func timestampOrNow(raw any) time.Time {
	s, ok := raw.(string)
	if !ok {
		return time.Now().UTC()
	}

	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Now().UTC()
	}

	return ts.UTC()
}
