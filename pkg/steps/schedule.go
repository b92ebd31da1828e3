package steps

import (
	"time"

	"github.com/launchpath/launchpath/pkg/models"
)

// ScheduleValidator accepts SCHEDULE confirmations unconditionally. The
// booking happens on an external scheduling page the system cannot verify, so
// the confirmation is self-attested.
type ScheduleValidator struct{}

func (v *ScheduleValidator) Type() models.StepType {
	return models.StepTypeSchedule
}

func (v *ScheduleValidator) ValidateSubmission(_ *models.StepConfig, data map[string]any) (map[string]any, []ValidationError) {
	scheduledAt := timestampOrNow(data["scheduledAt"])

	return map[string]any{
		"scheduled":   true,
		"scheduledAt": scheduledAt.Format(time.RFC3339),
	}, nil
}

func (v *ScheduleValidator) ConfigSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"scheduling_url"},
		"properties": map[string]any{
			"scheduling_url": map[string]any{"type": "string", "minLength": 1, "format": "uri"},
		},
	}
}
