// Package web provides the HTTP surface: the provider REST API, the tokenized
// client portal and the job endpoints.
package web

import (
	"time"

	"github.com/launchpath/launchpath/pkg/models"
)

// StepTemplateRequest is one step definition inside a flow payload.
type StepTemplateRequest struct {
	ID          string             `json:"id,omitempty"`
	Type        models.StepType    `json:"type"        validate:"required"`
	Title       string             `json:"title"       validate:"required,min=1"`
	Description string             `json:"description"`
	Config      *models.StepConfig `json:"config,omitempty"`
}

// CreateFlowRequest represents the request body for creating a flow.
type CreateFlowRequest struct {
	Name        string                `json:"name"        validate:"required,min=3"`
	Description string                `json:"description"`
	Steps       []StepTemplateRequest `json:"steps"`
}

// UpdateFlowRequest replaces a flow's editable fields. Steps are replaced
// wholesale; step edits are rejected server-side while onboardings exist.
type UpdateFlowRequest struct {
	Name        string                `json:"name"        validate:"required,min=3"`
	Description string                `json:"description"`
	Steps       []StepTemplateRequest `json:"steps"`
}

// CreateClientRequest represents the request body for creating a client.
type CreateClientRequest struct {
	Name    string `json:"name"    validate:"required,min=1"`
	Email   string `json:"email"   validate:"required,email"`
	Company string `json:"company"`
	Notes   string `json:"notes"`
}

// UpdateClientRequest supports partial client updates.
type UpdateClientRequest struct {
	Name    *string `json:"name,omitempty"    validate:"omitempty,min=1"`
	Email   *string `json:"email,omitempty"   validate:"omitempty,email"`
	Company *string `json:"company,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// AssignFlowRequest represents the request body for assigning a flow.
type AssignFlowRequest struct {
	ClientID string          `json:"client_id" validate:"required"`
	FlowID   string          `json:"flow_id"   validate:"required"`
	Priority models.Priority `json:"priority,omitempty"`
	DueDate  *time.Time      `json:"due_date,omitempty"`
}

// SubmitStepRequest carries a portal step submission.
type SubmitStepRequest struct {
	Data map[string]any `json:"data"`
}

// OnboardingResponse is the provider-facing view of an onboarding, with the
// derived fields the dashboard renders.
type OnboardingResponse struct {
	*models.Onboarding

	Progress  int                  `json:"progress"`
	DueStatus models.DueDateStatus `json:"due_status"`
}

// TransformOnboardingResponse decorates an onboarding with derived fields.
func TransformOnboardingResponse(onboarding *models.Onboarding) OnboardingResponse {
	return OnboardingResponse{
		Onboarding: onboarding,
		Progress:   onboarding.Progress(),
		DueStatus:  onboarding.DueStatus(time.Now().UTC()),
	}
}

// TransformOnboardingResponses maps a list of onboardings.
func TransformOnboardingResponses(onboardings []*models.Onboarding) []OnboardingResponse {
	responses := make([]OnboardingResponse, 0, len(onboardings))
	for _, onboarding := range onboardings {
		responses = append(responses, TransformOnboardingResponse(onboarding))
	}

	return responses
}

// PortalStepResponse is the client-facing view of one step.
type PortalStepResponse struct {
	ID          string                    `json:"id"`
	Title       string                    `json:"title"`
	Description string                    `json:"description,omitempty"`
	Type        models.StepType           `json:"type"`
	Config      *models.StepConfig        `json:"config,omitempty"`
	Order       int                       `json:"order"`
	Status      models.StepProgressStatus `json:"status"`
	Data        map[string]any            `json:"data,omitempty"`
	CompletedAt *time.Time                `json:"completed_at,omitempty"`
}

// PortalOnboardingResponse is the client-facing view of their onboarding. It
// deliberately omits provider-side fields like priority and client notes.
type PortalOnboardingResponse struct {
	ID          string                  `json:"id"`
	Status      models.OnboardingStatus `json:"status"`
	Progress    int                     `json:"progress"`
	DueDate     *time.Time              `json:"due_date,omitempty"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
	Steps       []PortalStepResponse    `json:"steps"`
}

// TransformPortalResponse builds the portal view of an onboarding.
func TransformPortalResponse(onboarding *models.Onboarding) PortalOnboardingResponse {
	response := PortalOnboardingResponse{
		ID:          onboarding.ID,
		Status:      onboarding.Status,
		Progress:    onboarding.Progress(),
		DueDate:     onboarding.DueDate,
		CompletedAt: onboarding.CompletedAt,
		Steps:       make([]PortalStepResponse, 0, len(onboarding.Steps)),
	}

	for i, sp := range onboarding.Steps {
		step := PortalStepResponse{
			ID:          sp.ID,
			Order:       i,
			Status:      sp.Status,
			Data:        sp.Data,
			CompletedAt: sp.CompletedAt,
		}
		if sp.Step != nil {
			step.Title = sp.Step.Title
			step.Description = sp.Step.Description
			step.Type = sp.Step.Type
			step.Config = sp.Step.Config
			step.Order = sp.Step.Order
		}

		response.Steps = append(response.Steps, step)
	}

	return response
}

// transformSteps converts request step definitions into model templates.
func transformSteps(steps []StepTemplateRequest) []*models.StepTemplate {
	templates := make([]*models.StepTemplate, 0, len(steps))
	for i, step := range steps {
		templates = append(templates, &models.StepTemplate{
			ID:          step.ID,
			Type:        step.Type,
			Title:       step.Title,
			Description: step.Description,
			Config:      step.Config,
			Order:       i,
		})
	}

	return templates
}
