package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"buildease/internal/adapters/http/middleware"
	"buildease/internal/adapters/persistence/models"
	"buildease/internal/config"
	"buildease/internal/core/domain"
	"buildease/internal/core/services"
	"buildease/internal/pkg/password"
	"buildease/internal/pkg/response"
	"buildease/internal/pkg/token"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication and membership endpoints
type AuthHandler struct {
	authService *services.AuthService
	store       *services.SessionStore
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, store *services.SessionStore, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		store:       store,
		cfg:         cfg,
	}
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	ID           string               `json:"id"`
	Password     string               `json:"password"`
	Name         string               `json:"name"`
	Role         string               `json:"role"`
	CompanyCode  string               `json:"company_code"`
	Phone        string               `json:"phone"`
	CompanyName  string               `json:"company_name"`
	BusinessInfo *domain.BusinessInfo `json:"business_info"`
	Address      string               `json:"address"`
	Department   string               `json:"department"`
	Position     string               `json:"position"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

// DecisionRequest identifies the member being approved or rejected
type DecisionRequest struct {
	UserID string `json:"user_id"`
}

// Register handles user registration
// @Summary Register new user
// @Tags Auth
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	fields := map[string]string{}
	if strings.TrimSpace(req.ID) == "" {
		fields["id"] = "is required"
	}
	if req.Password == "" {
		fields["password"] = "is required"
	} else if !password.ValidatePassword(req.Password) {
		fields["password"] = "must be at least 8 characters"
	}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "is required"
	}
	if req.Role == "" {
		fields["role"] = "is required"
	}
	if len(fields) > 0 {
		return response.ValidationError(c, "Invalid registration data", fields)
	}

	input := &services.RegisterInput{
		ID:           strings.TrimSpace(req.ID),
		Password:     req.Password,
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
		CompanyCode:  strings.TrimSpace(req.CompanyCode),
		Phone:        req.Phone,
		CompanyName:  req.CompanyName,
		BusinessInfo: req.BusinessInfo,
		Address:      req.Address,
		Department:   req.Department,
		Position:     req.Position,
	}

	user, err := h.authService.Register(c.Context(), input)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			return response.ValidationError(c, "Invalid registration data", ve.Fields)
		}
		if errors.Is(err, services.ErrDuplicateIdentity) {
			return response.Conflict(c, "User id already exists")
		}
		return response.InternalServerError(c, "Failed to register user")
	}

	// Registration establishes the session immediately
	if err := h.openSession(c, user.ID); err != nil {
		return response.InternalServerError(c, "Failed to create session")
	}

	return response.Created(c, "User registered successfully", fiber.Map{
		"company_code": user.CompanyCode,
		"user":         user,
	})
}

// Login handles user login
// @Summary Login user
// @Tags Auth
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.ID == "" || req.Password == "" {
		return response.BadRequest(c, "Id and password are required")
	}

	user, err := h.authService.Login(c.Context(), req.ID, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return response.Unauthorized(c, "Invalid id or password")
		}
		return response.InternalServerError(c, "Failed to login")
	}

	// Approval status does not gate login; the client branches on it
	if err := h.openSession(c, user.ID); err != nil {
		return response.InternalServerError(c, "Failed to create session")
	}

	return response.Success(c, "Login successful", fiber.Map{
		"user": user,
	})
}

// Me returns the current identity, if any
// @Summary Get current user
// @Tags Auth
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.JSON(fiber.Map{"authenticated": false})
	}
	return c.JSON(fiber.Map{
		"authenticated": true,
		"user":          user,
	})
}

// Logout destroys the session
// @Summary Logout user
// @Tags Auth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies(h.cfg.Cookie.Name); sid != "" {
		if err := h.store.Destroy(c.Context(), sid); err != nil {
			return response.InternalServerError(c, "Failed to destroy session")
		}
	}

	h.clearSessionCookie(c)

	return response.Success(c, "Logged out successfully", nil)
}

// CheckID reports whether a login id is taken
// @Summary Check id availability
// @Tags Auth
// @Router /auth/check-id [get]
func (h *AuthHandler) CheckID(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return response.BadRequest(c, "Id is required")
	}

	exists, err := h.authService.CheckID(c.Context(), id)
	if err != nil {
		return response.InternalServerError(c, "Failed to check id")
	}

	return c.JSON(fiber.Map{"exists": exists})
}

// VerifyCode checks a company code before an employee registers with it
// @Summary Verify company code
// @Tags Auth
// @Router /auth/verify-code [get]
func (h *AuthHandler) VerifyCode(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return response.BadRequest(c, "Code is required")
	}

	boss, err := h.authService.VerifyCompanyCode(c.Context(), code)
	if err != nil {
		return response.InternalServerError(c, "Failed to verify code")
	}
	if boss == nil {
		return c.JSON(fiber.Map{"valid": false})
	}

	return c.JSON(fiber.Map{
		"valid":         true,
		"company_name":  boss.CompanyName,
		"business_info": boss.BusinessInfo,
	})
}

// Approve approves a pending member of the caller's company
// @Summary Approve pending member
// @Tags Auth
// @Router /auth/approve [post]
func (h *AuthHandler) Approve(c *fiber.Ctx) error {
	return h.decide(c, h.authService.Approve)
}

// Reject rejects a pending member of the caller's company
// @Summary Reject pending member
// @Tags Auth
// @Router /auth/reject [post]
func (h *AuthHandler) Reject(c *fiber.Ctx) error {
	return h.decide(c, h.authService.Reject)
}

func (h *AuthHandler) decide(c *fiber.Ctx, fn func(ctx context.Context, callerID, targetID string) (*models.UserResponse, error)) error {
	var req DecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.UserID == "" {
		return response.BadRequest(c, "User id is required")
	}

	caller := middleware.CurrentUser(c)

	target, err := fn(c.Context(), caller.ID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Not allowed to decide for this user")
		case errors.Is(err, services.ErrNotPending):
			return response.Conflict(c, "User is not pending")
		}
		return response.InternalServerError(c, "Failed to update user status")
	}

	return response.Success(c, "User status updated", fiber.Map{
		"user": target,
	})
}

// openSession creates a fresh session for the identity and sets the cookie
func (h *AuthHandler) openSession(c *fiber.Ctx, userID string) error {
	user, err := h.authService.GetByID(c.Context(), userID)
	if err != nil {
		return err
	}

	sid := token.NewSessionID()
	expires := time.Now().Add(h.cfg.Cookie.MaxAge)

	payload := &services.SessionPayload{
		User:   user,
		Cookie: services.CookieMeta{Expires: &expires},
	}

	if err := h.store.Set(c.Context(), sid, payload); err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.Cookie.Name,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(h.cfg.Cookie.MaxAge.Seconds()),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})

	return nil
}

// clearSessionCookie expires the session cookie
func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.Cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}
