package steps

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/launchpath/launchpath/pkg/models"
)

const (
	defaultMaxFiles      = 5
	defaultMaxFileSizeMB = 10

	bytesPerMB = 1024 * 1024
)

// DefaultAllowedExtensions is the global allowlist applied when a step's
// config does not narrow it further. The upload endpoint enforces the same
// list regardless of step config; client-side checks are never trusted.
var DefaultAllowedExtensions = []string{
	"pdf", "doc", "docx", "xls", "xlsx",
	"png", "jpg", "jpeg", "gif", "webp",
	"txt", "csv",
}

// FileUploadValidator validates FILE_UPLOAD submissions. The same per-file
// limits run twice: once when each file is accepted at upload (fail fast) and
// again here at step submission (defense in depth).
type FileUploadValidator struct{}

func (v *FileUploadValidator) Type() models.StepType {
	return models.StepTypeFileUpload
}

func (v *FileUploadValidator) ValidateSubmission(config *models.StepConfig, data map[string]any) (map[string]any, []ValidationError) {
	cfg := fileUploadConfig(config)

	files, err := decodeFiles(data["files"])
	if err != nil {
		return nil, []ValidationError{{Message: "Invalid file list"}}
	}

	if len(files) == 0 {
		return nil, []ValidationError{{Message: "At least one file is required"}}
	}

	if len(files) > cfg.MaxFiles {
		return nil, []ValidationError{{
			Message: fmt.Sprintf("You can only upload up to %d files", cfg.MaxFiles),
		}}
	}

	verrs := make([]ValidationError, 0)

	for _, file := range files {
		if err := CheckFile(cfg, file.Name, file.SizeBytes); err != nil {
			verrs = append(verrs, ValidationError{Message: err.Error()})
		}
	}

	if len(verrs) > 0 {
		return nil, verrs
	}

	normalized := make([]any, 0, len(files))
	for _, file := range files {
		normalized = append(normalized, map[string]any{
			"name": file.Name,
			"url":  file.URL,
			"size": file.SizeBytes,
		})
	}

	return map[string]any{"files": normalized}, nil
}

// CheckFile applies the per-file limits of a FILE_UPLOAD config to a single
// file: extension allowlisted (case-insensitive) and size within bound. The
// upload endpoint calls this before accepting a file.
func CheckFile(cfg models.FileUploadConfig, name string, sizeBytes int64) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return fmt.Errorf("file %q must have an extension", name)
	}

	allowed := cfg.AllowedExtensions
	if len(allowed) == 0 {
		allowed = DefaultAllowedExtensions
	}

	extensionAllowed := false

	for _, candidate := range allowed {
		if strings.EqualFold(strings.TrimPrefix(candidate, "."), ext) {
			extensionAllowed = true

			break
		}
	}

	if !extensionAllowed {
		return fmt.Errorf("file type .%s is not allowed (allowed: %s)", ext, strings.Join(allowed, ", "))
	}

	maxBytes := int64(cfg.MaxFileSizeMB) * bytesPerMB
	if sizeBytes > maxBytes {
		return fmt.Errorf(
			"file %q (%.2fMB) exceeds the maximum allowed size (%dMB)",
			name, float64(sizeBytes)/bytesPerMB, cfg.MaxFileSizeMB,
		)
	}

	return nil
}

// fileUploadConfig resolves the effective limits, filling defaults for
// anything the author left unset.
func fileUploadConfig(config *models.StepConfig) models.FileUploadConfig {
	cfg := models.FileUploadConfig{
		MaxFiles:      defaultMaxFiles,
		MaxFileSizeMB: defaultMaxFileSizeMB,
	}

	if config == nil || config.FileUpload == nil {
		return cfg
	}

	if config.FileUpload.MaxFiles > 0 {
		cfg.MaxFiles = config.FileUpload.MaxFiles
	}

	if config.FileUpload.MaxFileSizeMB > 0 {
		cfg.MaxFileSizeMB = config.FileUpload.MaxFileSizeMB
	}

	cfg.AllowedExtensions = config.FileUpload.AllowedExtensions

	return cfg
}

// EffectiveFileUploadConfig exposes the resolved limits for callers outside
// the package (the upload endpoint).
func EffectiveFileUploadConfig(config *models.StepConfig) models.FileUploadConfig {
	return fileUploadConfig(config)
}

func decodeFiles(raw any) ([]models.UploadedFile, error) {
	if raw == nil {
		return nil, nil
	}

	// Round-trip through JSON: the payload arrives as []any of maps.
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}

	var files []models.UploadedFile
	if err := json.Unmarshal(buf, &files); err != nil {
		return nil, err
	}

	return files, nil
}

func (v *FileUploadValidator) ConfigSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"max_files":        map[string]any{"type": "integer", "minimum": 1},
			"max_file_size_mb": map[string]any{"type": "integer", "minimum": 1},
			"allowed_extensions": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "minLength": 1},
			},
		},
	}
}
