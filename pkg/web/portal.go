package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/launchpath/launchpath/pkg/services"
)

// PortalHandlers serves the tokenized client portal. Every route is
// authenticated solely by the portal token in the path.
type PortalHandlers struct {
	progressService *services.Progress
	uploadService   *services.Upload
}

func NewPortalHandlers(progressService *services.Progress, uploadService *services.Upload) *PortalHandlers {
	return &PortalHandlers{
		progressService: progressService,
		uploadService:   uploadService,
	}
}

// GetOnboarding returns the client's view of their onboarding.
func (h *PortalHandlers) GetOnboarding(c fiber.Ctx) error {
	token := c.Params("token")

	onboarding, err := h.progressService.Authenticate(c.Context(), token)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformPortalResponse(onboarding))
}

// SubmitStep validates and persists one step submission.
func (h *PortalHandlers) SubmitStep(c fiber.Ctx) error {
	token := c.Params("token")

	stepProgressID := c.Params("stepProgressId")
	if stepProgressID == "" {
		return badRequest(c, "Step progress ID is required")
	}

	var req SubmitStepRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	result, err := h.progressService.SubmitStep(c.Context(), token, stepProgressID, req.Data)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"all_completed": result.AllCompleted,
		"onboarding":    TransformPortalResponse(result.Onboarding),
	})
}

// UploadFile stores one file for a FILE_UPLOAD step. The request is
// multipart/form-data with the file under the "file" field.
func (h *PortalHandlers) UploadFile(c fiber.Ctx) error {
	token := c.Params("token")

	stepProgressID := c.Params("stepProgressId")
	if stepProgressID == "" {
		return badRequest(c, "Step progress ID is required")
	}

	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "A file is required under the 'file' field")
	}

	file, err := header.Open()
	if err != nil {
		return badRequest(c, "Cannot read the uploaded file")
	}

	defer func() { _ = file.Close() }()

	uploaded, err := h.uploadService.UploadFile(
		c.Context(), token, stepProgressID, header.Filename, header.Size, file,
	)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(uploaded)
}
