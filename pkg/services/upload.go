package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/launchpath/launchpath/pkg/models"
	"github.com/launchpath/launchpath/pkg/persistence"
	"github.com/launchpath/launchpath/pkg/steps"
	"github.com/launchpath/launchpath/pkg/storage"
)

// Upload stores portal file uploads for FILE_UPLOAD steps. Files are uploaded
// one at a time while the client works through the step; the step itself is
// completed later by submitting the accumulated file list.
type Upload struct {
	persistence persistence.Persistence
	progress    *Progress
	store       storage.BlobStore
	logger      *slog.Logger
}

// NewUpload creates a new upload service.
func NewUpload(logger *slog.Logger, persist persistence.Persistence, progress *Progress, store storage.BlobStore) *Upload {
	return &Upload{
		persistence: persist,
		progress:    progress,
		store:       store,
		logger:      logger.With("module", "upload_service"),
	}
}

// UploadFile validates one file against the step's configuration and stores
// it. The extension allowlist and size cap are enforced before any bytes are
// written. Accepted uploads bump the onboarding's last-activity timestamp.
func (s *Upload) UploadFile(
	ctx context.Context,
	token, stepProgressID, filename string,
	sizeBytes int64,
	content io.Reader,
) (*models.UploadedFile, error) {
	onboarding, err := s.progress.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	stepProgress := onboarding.StepProgressByID(stepProgressID)
	if stepProgress == nil {
		return nil, ErrInvalidStep
	}

	if stepProgress.Step == nil || stepProgress.Step.Type != models.StepTypeFileUpload {
		return nil, NewValidationError(
			"uploadFile",
			"NOT_FILE_UPLOAD_STEP",
			"step does not accept file uploads",
			ErrInvalidRequest,
		)
	}

	if stepProgress.Status == models.StepProgressCompleted {
		return nil, NewValidationError(
			"uploadFile",
			"STEP_COMPLETED",
			"step is already completed",
			ErrInvalidRequest,
		)
	}

	cfg := steps.EffectiveFileUploadConfig(stepProgress.Step.Config)
	if err := steps.CheckFile(cfg, filename, sizeBytes); err != nil {
		return nil, &StepValidationError{Errors: []steps.ValidationError{{Message: err.Error()}}}
	}

	object, err := s.store.Put(ctx, onboarding.ClientID, onboarding.ID, filename, content)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	if object.SizeBytes != sizeBytes {
		// Declared size cleared validation but the stream disagreed. Keep the
		// cap authoritative over the declaration.
		if err := steps.CheckFile(cfg, filename, object.SizeBytes); err != nil {
			if deleteErr := s.store.Delete(ctx, object.Key); deleteErr != nil {
				s.logger.ErrorContext(ctx, "Failed to delete oversized upload",
					"key", object.Key, "error", deleteErr)
			}

			return nil, &StepValidationError{Errors: []steps.ValidationError{{Message: err.Error()}}}
		}
	}

	err = s.persistence.OnboardingRepository().TouchActivity(ctx, onboarding.ID, time.Now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to bump last activity",
			"onboarding_id", onboarding.ID, "error", err)
	}

	s.logger.InfoContext(ctx, "File uploaded",
		"onboarding_id", onboarding.ID,
		"step_progress_id", stepProgressID,
		"size", object.SizeBytes,
	)

	return &models.UploadedFile{
		Name:      filename,
		URL:       object.URL,
		SizeBytes: object.SizeBytes,
	}, nil
}
