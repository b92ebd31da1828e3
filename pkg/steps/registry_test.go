package steps

import (
	"log/slog"
	"testing"

	"github.com/launchpath/launchpath/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_RegistersAllTypes(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(slog.Default())

	for _, stepType := range models.StepTypes() {
		v, err := registry.Validator(stepType)
		require.NoError(t, err)
		assert.Equal(t, stepType, v.Type())
	}

	msg, ok := registry.HealthCheck()
	assert.True(t, ok)
	assert.Contains(t, msg, "healthy")
}

func TestRegistry_UnknownType(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(slog.Default())

	_, _, err := registry.ValidateSubmission("CARRIER_PIGEON", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRegistry_ValidateConfig(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(slog.Default())

	tests := []struct {
		name     string
		stepType models.StepType
		config   *models.StepConfig
		wantErr  bool
	}{
		{
			name:     "welcome needs no config",
			stepType: models.StepTypeWelcome,
			config:   nil,
			wantErr:  false,
		},
		{
			name:     "form with valid fields",
			stepType: models.StepTypeForm,
			config: &models.StepConfig{Form: &models.FormConfig{
				Fields: []models.FormField{
					{ID: "name", Type: models.FieldTypeText, Label: "Your name", Required: true},
				},
			}},
			wantErr: false,
		},
		{
			name:     "form without fields",
			stepType: models.StepTypeForm,
			config:   &models.StepConfig{Form: &models.FormConfig{}},
			wantErr:  true,
		},
		{
			name:     "form missing variant",
			stepType: models.StepTypeForm,
			config:   &models.StepConfig{},
			wantErr:  true,
		},
		{
			name:     "contract without body",
			stepType: models.StepTypeContract,
			config:   &models.StepConfig{Contract: &models.ContractConfig{AcceptLabel: "I agree"}},
			wantErr:  true,
		},
		{
			name:     "contract with body",
			stepType: models.StepTypeContract,
			config:   &models.StepConfig{Contract: &models.ContractConfig{BodyText: "Terms of service"}},
			wantErr:  false,
		},
		{
			name:     "schedule with url",
			stepType: models.StepTypeSchedule,
			config:   &models.StepConfig{Schedule: &models.ScheduleConfig{SchedulingURL: "https://cal.example/me"}},
			wantErr:  false,
		},
		{
			name:     "file upload with negative max files",
			stepType: models.StepTypeFileUpload,
			config:   &models.StepConfig{FileUpload: &models.FileUploadConfig{MaxFiles: -1, MaxFileSizeMB: 10}},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := registry.ValidateConfig(tt.stepType, tt.config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
