package handlers

import (
	"errors"
	"strconv"

	"buildease/internal/adapters/http/middleware"
	"buildease/internal/core/domain"
	"buildease/internal/core/services"
	"buildease/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// StageHandler handles construction stage endpoints
type StageHandler struct {
	stageService *services.StageService
}

// NewStageHandler creates a new stage handler
func NewStageHandler(stageService *services.StageService) *StageHandler {
	return &StageHandler{stageService: stageService}
}

// Create handles stage creation
// @Summary Create construction stage
// @Tags Stages
// @Router /stages [post]
func (h *StageHandler) Create(c *fiber.Ctx) error {
	var input services.StageInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user := middleware.CurrentUser(c)

	stage, err := h.stageService.Create(c.Context(), user.ID, &input)
	if err != nil {
		return h.mapError(c, err, "Failed to create stage")
	}

	return response.Created(c, "Stage created successfully", stage)
}

// ListByProject returns every stage of one project
// @Summary List stages of a project
// @Tags Stages
// @Router /stages/{projectId} [get]
func (h *StageHandler) ListByProject(c *fiber.Ctx) error {
	projectID, err := parseParamID(c, "projectId")
	if err != nil {
		return response.BadRequest(c, "Invalid project id")
	}

	user := middleware.CurrentUser(c)

	stages, err := h.stageService.ListByProject(c.Context(), projectID, user.ID)
	if err != nil {
		return h.mapError(c, err, "Failed to list stages")
	}

	return response.Success(c, "Stages retrieved successfully", stages)
}

// Update edits a stage
// @Summary Update construction stage
// @Tags Stages
// @Router /stages/{id} [put]
func (h *StageHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid stage id")
	}

	var input services.StageInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user := middleware.CurrentUser(c)

	stage, err := h.stageService.Update(c.Context(), id, user.ID, &input)
	if err != nil {
		return h.mapError(c, err, "Failed to update stage")
	}

	return response.Success(c, "Stage updated successfully", stage)
}

// Advance moves a stage to the next status in the ring
// @Summary Advance stage status
// @Tags Stages
// @Router /stages/{id}/advance [post]
func (h *StageHandler) Advance(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid stage id")
	}

	user := middleware.CurrentUser(c)

	stage, err := h.stageService.Advance(c.Context(), id, user.ID)
	if err != nil {
		return h.mapError(c, err, "Failed to advance stage")
	}

	return response.Success(c, "Stage advanced", stage)
}

// Delete removes a stage
// @Summary Delete construction stage
// @Tags Stages
// @Router /stages/{id} [delete]
func (h *StageHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid stage id")
	}

	user := middleware.CurrentUser(c)

	if err := h.stageService.Delete(c.Context(), id, user.ID); err != nil {
		return h.mapError(c, err, "Failed to delete stage")
	}

	return response.Success(c, "Stage deleted successfully", nil)
}

// ProposeSchedule returns an advisory schedule for a project's stages
// @Summary Propose stage schedule
// @Tags Stages
// @Router /stages/{projectId}/ai-schedule [post]
func (h *StageHandler) ProposeSchedule(c *fiber.Ctx) error {
	projectID, err := parseParamID(c, "projectId")
	if err != nil {
		return response.BadRequest(c, "Invalid project id")
	}

	user := middleware.CurrentUser(c)

	proposal, err := h.stageService.ProposeSchedule(c.Context(), projectID, user.ID)
	if err != nil {
		return h.mapError(c, err, "Failed to propose schedule")
	}

	return response.Success(c, "Schedule proposed", proposal)
}

func (h *StageHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	if ve, ok := domain.AsValidationError(err); ok {
		return response.ValidationError(c, "Invalid stage data", ve.Fields)
	}
	switch {
	case errors.Is(err, services.ErrStageNotFound):
		return response.NotFound(c, "Stage not found")
	case errors.Is(err, services.ErrEstimateNotFound):
		return response.NotFound(c, "Project not found")
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "Not allowed to access this project")
	}
	return response.InternalServerError(c, fallback)
}

func parseParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
