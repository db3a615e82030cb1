package handlers

import (
	"log/slog"

	"dropzone/internal/middleware"
	"dropzone/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for the phone + OTP login.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	log         *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
		log:         log,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/otp/request", h.HandleRequestOTP)
	authRoutes.Post("/otp/verify", h.HandleVerifyOTP)
	authRoutes.Get("/session", middleware.SessionRequired(h.authService, h.log), h.HandleSession)
}

// OTPRequest is the body of POST /auth/otp/request.
type OTPRequest struct {
	Phone string `json:"phone" validate:"max=32"`
}

// HandleRequestOTP stores the demo code for a phone.
func (h *AuthHandler) HandleRequestOTP(c *fiber.Ctx) error {
	var req OTPRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	code, err := h.authService.RequestCode(c.UserContext(), req.Phone)
	if err != nil {
		return respondError(c, h.log, "Could not request code", err)
	}

	return c.JSON(fiber.Map{
		"ok":        true,
		"message":   "OTP sent (demo)",
		"code_demo": code,
	})
}

// OTPVerifyRequest is the body of POST /auth/otp/verify.
type OTPVerifyRequest struct {
	Phone string `json:"phone" validate:"max=32"`
	Code  string `json:"code" validate:"max=16"`
}

// HandleVerifyOTP checks a code and issues a session.
func (h *AuthHandler) HandleVerifyOTP(c *fiber.Ctx) error {
	var req OTPVerifyRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	grant, err := h.authService.VerifyCode(c.UserContext(), req.Phone, req.Code)
	if err != nil {
		return respondError(c, h.log, "Invalid code", err)
	}

	return c.JSON(fiber.Map{
		"ok":         true,
		"session_id": grant.SessionID,
		"token":      grant.Token,
		"expires_at": grant.ExpiresAt,
	})
}

// HandleSession returns the session the bearer token belongs to.
func (h *AuthHandler) HandleSession(c *fiber.Ctx) error {
	sessionID, _ := c.Locals(middleware.LocalSessionID).(string)

	session, err := h.authService.CurrentSession(c.UserContext(), sessionID)
	if err != nil {
		return respondError(c, h.log, "Session not found", err)
	}
	return c.JSON(fiber.Map{
		"session_id": session.ID,
		"phone":      session.Phone,
		"created_at": session.CreatedAt,
	})
}
