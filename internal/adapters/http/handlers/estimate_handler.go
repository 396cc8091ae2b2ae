package handlers

import (
	"errors"
	"strconv"

	"buildease/internal/adapters/http/middleware"
	"buildease/internal/core/domain"
	"buildease/internal/core/services"
	"buildease/internal/pkg/pagination"
	"buildease/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// EstimateHandler handles estimate lifecycle endpoints
type EstimateHandler struct {
	estimateService *services.EstimateService
}

// NewEstimateHandler creates a new estimate handler
func NewEstimateHandler(estimateService *services.EstimateService) *EstimateHandler {
	return &EstimateHandler{estimateService: estimateService}
}

// TransitionRequest carries the target lifecycle status
type TransitionRequest struct {
	Status string `json:"status"`
}

// Create handles estimate creation
// @Summary Create estimate
// @Tags Estimates
// @Router /estimates [post]
func (h *EstimateHandler) Create(c *fiber.Ctx) error {
	var input services.EstimateInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user := middleware.CurrentUser(c)

	estimate, err := h.estimateService.Create(c.Context(), user.ID, &input)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			return response.ValidationError(c, "Invalid estimate data", ve.Fields)
		}
		return response.InternalServerError(c, "Failed to create estimate")
	}

	return response.Created(c, "Estimate created successfully", estimate)
}

// Get returns one estimate with its items
// @Summary Get estimate
// @Tags Estimates
// @Router /estimates/{id} [get]
func (h *EstimateHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid estimate id")
	}

	user := middleware.CurrentUser(c)

	estimate, err := h.estimateService.Get(c.Context(), id, user.ID)
	if err != nil {
		return h.mapError(c, err, "Failed to get estimate")
	}

	return response.Success(c, "Estimate retrieved successfully", estimate)
}

// List returns the caller's estimates, optionally filtered by status
// @Summary List estimates
// @Tags Estimates
// @Router /estimates [get]
func (h *EstimateHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	user := middleware.CurrentUser(c)

	out, err := h.estimateService.ListByOwner(c.Context(), user.ID, c.Query("status"), params.Offset, params.Limit)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			return response.ValidationError(c, "Invalid filter", ve.Fields)
		}
		return response.InternalServerError(c, "Failed to list estimates")
	}

	return response.Success(c, "Estimates retrieved successfully", fiber.Map{
		"estimates":  out.Estimates,
		"pagination": pagination.GetMeta(params, out.Total),
	})
}

// Update replaces an estimate and its item set
// @Summary Update estimate
// @Tags Estimates
// @Router /estimates/{id} [put]
func (h *EstimateHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid estimate id")
	}

	var input services.EstimateInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user := middleware.CurrentUser(c)

	estimate, err := h.estimateService.Update(c.Context(), id, user.ID, &input)
	if err != nil {
		return h.mapError(c, err, "Failed to update estimate")
	}

	return response.Success(c, "Estimate updated successfully", estimate)
}

// Transition moves an estimate forward through its lifecycle
// @Summary Transition estimate status
// @Tags Estimates
// @Router /estimates/{id}/status [patch]
func (h *EstimateHandler) Transition(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid estimate id")
	}

	var req TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Status == "" {
		return response.BadRequest(c, "Status is required")
	}

	user := middleware.CurrentUser(c)

	estimate, err := h.estimateService.Transition(c.Context(), id, user.ID, req.Status)
	if err != nil {
		return h.mapError(c, err, "Failed to update estimate status")
	}

	return response.Success(c, "Estimate status updated", estimate)
}

// Delete removes an estimate and everything hanging off it
// @Summary Delete estimate
// @Tags Estimates
// @Router /estimates/{id} [delete]
func (h *EstimateHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid estimate id")
	}

	user := middleware.CurrentUser(c)

	if err := h.estimateService.Delete(c.Context(), id, user.ID); err != nil {
		return h.mapError(c, err, "Failed to delete estimate")
	}

	return response.Success(c, "Estimate deleted successfully", nil)
}

func (h *EstimateHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	if ve, ok := domain.AsValidationError(err); ok {
		return response.ValidationError(c, "Invalid estimate data", ve.Fields)
	}
	switch {
	case errors.Is(err, services.ErrEstimateNotFound):
		return response.NotFound(c, "Estimate not found")
	case errors.Is(err, services.ErrNotOwner):
		return response.Forbidden(c, "Not allowed to access this estimate")
	}
	return response.InternalServerError(c, fallback)
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
