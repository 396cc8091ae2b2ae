package handlers

import (
	"buildease/internal/core/services"
	"buildease/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ExternalHandler fronts the outbound collaborators: business registry,
// address search and document extraction. Every one of them degrades
// instead of failing the request.
type ExternalHandler struct {
	registryService *services.RegistryService
	addressService  *services.AddressService
	aiService       *services.AIService
}

// NewExternalHandler creates a new external handler
func NewExternalHandler(registryService *services.RegistryService, addressService *services.AddressService, aiService *services.AIService) *ExternalHandler {
	return &ExternalHandler{
		registryService: registryService,
		addressService:  addressService,
		aiService:       aiService,
	}
}

// ExtractRequest carries a base64 encoded certificate image
type ExtractRequest struct {
	Image string `json:"image"`
}

// VerifyBusiness checks a business registration with the public registry
// @Summary Verify business registration
// @Tags External
// @Router /registry/verify [post]
func (h *ExternalHandler) VerifyBusiness(c *fiber.Ctx) error {
	var input services.RegistryCheckInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.BusinessNumber == "" {
		return response.BadRequest(c, "Business number is required")
	}

	result := h.registryService.VerifyBusiness(c.Context(), &input)

	return response.Success(c, "Business verification completed", result)
}

// SearchAddress looks up address candidates for a keyword
// @Summary Search addresses
// @Tags External
// @Router /address/search [get]
func (h *ExternalHandler) SearchAddress(c *fiber.Ctx) error {
	keyword := c.Query("keyword")
	if keyword == "" {
		return response.BadRequest(c, "Keyword is required")
	}

	result := h.addressService.Search(c.Context(), keyword)

	return response.Success(c, "Address search completed", result)
}

// ExtractDocument pulls business fields out of a certificate image
// @Summary Extract business certificate fields
// @Tags External
// @Router /ai/extract-document [post]
func (h *ExternalHandler) ExtractDocument(c *fiber.Ctx) error {
	var req ExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Image == "" {
		return response.BadRequest(c, "Image is required")
	}

	info, degraded := h.aiService.ExtractDocument(c.Context(), req.Image)

	return response.Success(c, "Document extraction completed", fiber.Map{
		"business_info": info,
		"degraded":      degraded,
	})
}
