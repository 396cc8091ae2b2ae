package handlers

import (
	"buildease/internal/adapters/http/middleware"
	"buildease/internal/core/services"
	"buildease/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CompanyHandler handles company membership endpoints
type CompanyHandler struct {
	authService *services.AuthService
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(authService *services.AuthService) *CompanyHandler {
	return &CompanyHandler{authService: authService}
}

// Members lists everyone registered under the caller's company code. The
// optional ?code= query must match the caller's own code; members of other
// companies are never served.
// @Summary List company members
// @Tags Company
// @Router /company/members [get]
func (h *CompanyHandler) Members(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	code := c.Query("code", user.CompanyCode)
	if code != user.CompanyCode {
		return response.Forbidden(c, "Not a member of this company")
	}
	if code == "" {
		return response.Success(c, "Members retrieved successfully", []interface{}{})
	}

	members, err := h.authService.ListCompanyMembers(c.Context(), code)
	if err != nil {
		return response.InternalServerError(c, "Failed to list members")
	}

	return response.Success(c, "Members retrieved successfully", members)
}
