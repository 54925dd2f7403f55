package http

import (
	"time"

	"backoffice/internal/auth/domain/model"
	"backoffice/internal/auth/usecase"
	"backoffice/internal/shared/logger"
	"backoffice/internal/shared/response"

	"github.com/gofiber/fiber/v2"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name     string
	Path     string
	MaxAge   time.Duration
	Secure   bool
	SameSite string
}

// AuthHTTPHandler handles HTTP requests for authentication
type AuthHTTPHandler struct {
	gate   usecase.SessionGateInterface
	cookie CookieConfig
	log    logger.Logger
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by login and session.
type SessionResponse struct {
	Authenticated bool               `json:"authenticated"`
	User          *model.UserProfile `json:"user,omitempty"`
	Token         string             `json:"token,omitempty"`
}

// NewAuthHTTPHandler creates a new authentication HTTP handler
func NewAuthHTTPHandler(gate usecase.SessionGateInterface, cookie CookieConfig, log logger.Logger) *AuthHTTPHandler {
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthHTTPHandler{gate: gate, cookie: cookie, log: log.WithComponent("auth-http")}
}

// SetupAuthRoutes mounts /login, /logout and /session on router.
func (h *AuthHTTPHandler) SetupAuthRoutes(router fiber.Router, loginLimiter fiber.Handler) {
	router.Post("/login", loginLimiter, h.Login)
	router.Post("/logout", h.Logout)
	router.Get("/session", h.Session)
}

// Login handles operator login
func (h *AuthHTTPHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	profile, token, err := h.gate.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return response.Error(c, err)
	}

	h.setCookie(c, token)
	return c.JSON(SessionResponse{Authenticated: true, User: profile, Token: token})
}

// Logout clears the session markers and the cookie.
func (h *AuthHTTPHandler) Logout(c *fiber.Ctx) error {
	if err := h.gate.Logout(c.UserContext()); err != nil {
		h.log.WithContext(c.UserContext()).Errorf("Logout failed: %v", err)
		return response.Error(c, err)
	}

	h.clearCookie(c)
	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// Session reports whether an operator is logged in.
func (h *AuthHTTPHandler) Session(c *fiber.Ctx) error {
	profile, err := h.gate.Current(c.UserContext())
	if err != nil {
		return response.Error(c, err)
	}
	return c.JSON(SessionResponse{Authenticated: profile != nil, User: profile})
}

func (h *AuthHTTPHandler) setCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     h.cookie.Path,
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cookie.SameSite,
		Expires:  time.Now().Add(h.cookie.MaxAge),
	})
}

func (h *AuthHTTPHandler) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     h.cookie.Path,
		MaxAge:   -1,
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cookie.SameSite,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}
