package steps

import (
	"testing"

	"github.com/launchpath/launchpath/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadConfig() *models.StepConfig {
	return &models.StepConfig{FileUpload: &models.FileUploadConfig{
		MaxFiles:          2,
		MaxFileSizeMB:     10,
		AllowedExtensions: []string{"pdf", "png"},
	}}
}

func fileEntry(name string, size int64) map[string]any {
	return map[string]any{"name": name, "url": "https://files.example/" + name, "size": size}
}

func TestFileUploadValidator_Accepts(t *testing.T) {
	t.Parallel()

	validator := &FileUploadValidator{}

	validated, verrs := validator.ValidateSubmission(uploadConfig(), map[string]any{
		"files": []any{fileEntry("contract.pdf", 1024), fileEntry("logo.PNG", 2048)},
	})
	require.Empty(t, verrs)

	files, ok := validated["files"].([]any)
	require.True(t, ok)
	assert.Len(t, files, 2)
}

func TestFileUploadValidator_Rejections(t *testing.T) {
	t.Parallel()

	validator := &FileUploadValidator{}

	tests := []struct {
		name    string
		data    map[string]any
		message string
	}{
		{
			name:    "no files",
			data:    map[string]any{},
			message: "At least one file",
		},
		{
			name: "too many files",
			data: map[string]any{"files": []any{
				fileEntry("a.pdf", 10), fileEntry("b.pdf", 10), fileEntry("c.pdf", 10),
			}},
			message: "up to 2 files",
		},
		{
			name:    "disallowed extension",
			data:    map[string]any{"files": []any{fileEntry("malware.exe", 10)}},
			message: "not allowed",
		},
		{
			name:    "oversized file",
			data:    map[string]any{"files": []any{fileEntry("big.pdf", 15*1024*1024)}},
			message: "exceeds the maximum",
		},
		{
			name:    "missing extension",
			data:    map[string]any{"files": []any{fileEntry("README", 10)}},
			message: "must have an extension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			validated, verrs := validator.ValidateSubmission(uploadConfig(), tt.data)
			assert.Nil(t, validated)
			require.NotEmpty(t, verrs)
			assert.Contains(t, verrs[0].Message, tt.message)
		})
	}
}

func TestCheckFile_DefaultsWhenConfigEmpty(t *testing.T) {
	t.Parallel()

	cfg := EffectiveFileUploadConfig(nil)
	assert.Equal(t, defaultMaxFiles, cfg.MaxFiles)
	assert.Equal(t, defaultMaxFileSizeMB, cfg.MaxFileSizeMB)

	// Falls back to the global allowlist.
	assert.NoError(t, CheckFile(cfg, "notes.txt", 100))
	assert.Error(t, CheckFile(cfg, "script.sh", 100))
}
