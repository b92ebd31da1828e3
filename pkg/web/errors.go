package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/launchpath/launchpath/pkg/services"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func unauthorized(c fiber.Ctx) error {
	problem := problems.NewStatusProblem(401).
		WithInstance(c.Path()).
		WithType("unauthorized").
		WithDetail("invalid or missing token")

	return c.Status(fiber.StatusUnauthorized).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// validationFailed reports a rejected step submission with its field-scoped
// reasons alongside the problem document.
func validationFailed(c fiber.Ctx, sve *services.StepValidationError) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("submission_rejected").
		WithDetail("submission failed validation")

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"type":     problem.Type,
		"title":    problem.Title,
		"status":   problem.Status,
		"detail":   problem.Detail,
		"instance": problem.Instance,
		"errors":   sve.Errors,
	})
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsUnauthorizedError(err):
		return unauthorized(c)

	case services.IsNotFoundError(err):
		return notFound(c, err.Error())

	case services.IsValidationError(err):
		if sve, ok := services.AsStepValidationError(err); ok {
			return validationFailed(c, sve)
		}

		return badRequest(c, err.Error())

	case services.IsConflictError(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	default:
		return internalError(c, err)
	}
}
