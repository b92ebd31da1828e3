package steps

import "github.com/launchpath/launchpath/pkg/models"

// WelcomeValidator accepts any submission: acknowledging the welcome message
// is all the step asks for.
type WelcomeValidator struct{}

func (v *WelcomeValidator) Type() models.StepType {
	return models.StepTypeWelcome
}

func (v *WelcomeValidator) ValidateSubmission(_ *models.StepConfig, _ map[string]any) (map[string]any, []ValidationError) {
	return map[string]any{}, nil
}

func (v *WelcomeValidator) ConfigSchema() map[string]any {
	return nil
}
