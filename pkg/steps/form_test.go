package steps

import (
	"testing"

	"github.com/launchpath/launchpath/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formConfig(fields ...models.FormField) *models.StepConfig {
	return &models.StepConfig{Form: &models.FormConfig{Fields: fields}}
}

func TestFormValidator_RequiredFields(t *testing.T) {
	t.Parallel()

	validator := &FormValidator{}
	config := formConfig(
		models.FormField{ID: "name", Type: models.FieldTypeText, Label: "Name", Required: true},
		models.FormField{ID: "company", Type: models.FieldTypeText, Label: "Company"},
	)

	tests := []struct {
		name      string
		data      map[string]any
		wantField string
	}{
		{
			name:      "required field missing",
			data:      map[string]any{"company": "Acme"},
			wantField: "name",
		},
		{
			name:      "required field empty string",
			data:      map[string]any{"name": ""},
			wantField: "name",
		},
		{
			name:      "required field whitespace only",
			data:      map[string]any{"name": "   "},
			wantField: "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			validated, verrs := validator.ValidateSubmission(config, tt.data)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.wantField, verrs[0].Field)
			assert.Nil(t, validated)
		})
	}

	// Optional field absent is fine.
	validated, verrs := validator.ValidateSubmission(config, map[string]any{"name": "Jo"})
	require.Empty(t, verrs)
	assert.Equal(t, map[string]any{"name": "Jo"}, validated)
}

func TestFormValidator_EmailField(t *testing.T) {
	t.Parallel()

	validator := &FormValidator{}
	config := formConfig(
		models.FormField{ID: "email", Type: models.FieldTypeEmail, Label: "Email", Required: true},
	)

	_, verrs := validator.ValidateSubmission(config, map[string]any{"email": "not-an-email"})
	require.Len(t, verrs, 1)
	assert.Equal(t, "email", verrs[0].Field)

	validated, verrs := validator.ValidateSubmission(config, map[string]any{"email": "a@b.com"})
	require.Empty(t, verrs)
	assert.Equal(t, "a@b.com", validated["email"])
}

func TestFormValidator_OptionalEmailLeftBlank(t *testing.T) {
	t.Parallel()

	validator := &FormValidator{}
	config := formConfig(
		models.FormField{ID: "email", Type: models.FieldTypeEmail, Label: "Email"},
	)

	validated, verrs := validator.ValidateSubmission(config, map[string]any{})
	assert.Empty(t, verrs)
	assert.Empty(t, validated)
}

func TestFormValidator_UnknownFieldsIgnored(t *testing.T) {
	t.Parallel()

	validator := &FormValidator{}
	config := formConfig(
		models.FormField{ID: "name", Type: models.FieldTypeText, Label: "Name", Required: true},
	)

	validated, verrs := validator.ValidateSubmission(config, map[string]any{
		"name":     "Jo",
		"injected": "should not persist",
	})
	require.Empty(t, verrs)
	assert.Equal(t, map[string]any{"name": "Jo"}, validated)
}

func TestFormValidator_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	validator := &FormValidator{}
	config := formConfig(
		models.FormField{ID: "name", Type: models.FieldTypeText, Label: "Name", Required: true},
		models.FormField{ID: "email", Type: models.FieldTypeEmail, Label: "Email", Required: true},
	)

	_, verrs := validator.ValidateSubmission(config, map[string]any{"email": "nope"})
	assert.Len(t, verrs, 2)
}
