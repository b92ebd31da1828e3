package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/launchpath/launchpath/pkg/models"
	"github.com/launchpath/launchpath/pkg/services"
	"github.com/launchpath/launchpath/pkg/steps"
)

// APIHandlers serves the provider-facing REST API.
type APIHandlers struct {
	flowService       *services.Flow
	clientService     *services.Client
	onboardingService *services.Onboarding
	reminderService   *services.Reminder
	registry          *steps.Registry
	validator         *validator.Validate
}

func NewAPIHandlers(
	flowService *services.Flow,
	clientService *services.Client,
	onboardingService *services.Onboarding,
	reminderService *services.Reminder,
	registry *steps.Registry,
) *APIHandlers {
	return &APIHandlers{
		flowService:       flowService,
		clientService:     clientService,
		onboardingService: onboardingService,
		reminderService:   reminderService,
		registry:          registry,
		validator:         validator.New(),
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	repositoryCheck, repOk := h.flowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "LaunchPath API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		message = "LaunchPath API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// Flows

func (h *APIHandlers) GetFlows(c fiber.Ctx) error {
	flows, err := h.flowService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(flows)
}

func (h *APIHandlers) GetFlow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	flow, err := h.flowService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(flow)
}

func (h *APIHandlers) CreateFlow(c fiber.Ctx) error {
	var req CreateFlowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	flow := &models.Flow{
		Name:        req.Name,
		Description: req.Description,
		Steps:       transformSteps(req.Steps),
	}

	created, err := h.flowService.Create(c.Context(), flow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateFlow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	var req UpdateFlowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	flow := &models.Flow{
		Name:        req.Name,
		Description: req.Description,
		Steps:       transformSteps(req.Steps),
	}

	updated, err := h.flowService.Update(c.Context(), id, flow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteFlow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	if err := h.flowService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) PublishFlow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	published, err := h.flowService.Publish(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(published)
}

func (h *APIHandlers) ArchiveFlow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	archived, err := h.flowService.Archive(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(archived)
}

// Clients

func (h *APIHandlers) GetClients(c fiber.Ctx) error {
	clients, err := h.clientService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(clients)
}

func (h *APIHandlers) GetClient(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Client ID is required")
	}

	client, err := h.clientService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(client)
}

func (h *APIHandlers) CreateClient(c fiber.Ctx) error {
	var req CreateClientRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	client := &models.Client{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Notes:   req.Notes,
	}

	created, err := h.clientService.Create(c.Context(), client)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateClient(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Client ID is required")
	}

	var req UpdateClientRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.clientService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Email != nil {
		existing.Email = *req.Email
	}

	if req.Company != nil {
		existing.Company = *req.Company
	}

	if req.Notes != nil {
		existing.Notes = *req.Notes
	}

	updated, err := h.clientService.Update(c.Context(), id, existing)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteClient(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Client ID is required")
	}

	if err := h.clientService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetClientOnboardings(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Client ID is required")
	}

	if _, err := h.clientService.FetchByID(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	onboardings, err := h.onboardingService.FetchByClient(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformOnboardingResponses(onboardings))
}

// SendClientReminder nudges a client's most recent active onboarding.
func (h *APIHandlers) SendClientReminder(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Client ID is required")
	}

	if err := h.reminderService.SendManualForClient(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"sent": true})
}

// Onboardings

func (h *APIHandlers) GetOnboardings(c fiber.Ctx) error {
	onboardings, err := h.onboardingService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformOnboardingResponses(onboardings))
}

func (h *APIHandlers) GetOnboarding(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Onboarding ID is required")
	}

	onboarding, err := h.onboardingService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformOnboardingResponse(onboarding))
}

func (h *APIHandlers) AssignFlow(c fiber.Ctx) error {
	var req AssignFlowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	onboarding, err := h.onboardingService.AssignFlow(c.Context(), services.AssignFlowRequest{
		ClientID: req.ClientID,
		FlowID:   req.FlowID,
		Priority: req.Priority,
		DueDate:  req.DueDate,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(TransformOnboardingResponse(onboarding))
}

func (h *APIHandlers) DeleteOnboarding(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Onboarding ID is required")
	}

	if err := h.onboardingService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// SendReminder triggers a manual reminder for one onboarding.
func (h *APIHandlers) SendReminder(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Onboarding ID is required")
	}

	if err := h.reminderService.SendManual(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"sent": true})
}
