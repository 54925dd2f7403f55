package http

import (
	"strings"
	"time"

	"backoffice/internal/auth/usecase"
	"backoffice/internal/shared/contextkeys"
	"backoffice/internal/shared/response"
	"backoffice/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// AuthMiddleware guards routes behind the session gate.
type AuthMiddleware struct {
	gate       usecase.SessionGateInterface
	cookieName string
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(gate usecase.SessionGateInterface, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		gate:       gate,
		cookieName: cookieName,
	}
}

// CORS allows the panel front end to call the API with credentials.
func CORS(allowOrigins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With,X-Request-ID",
		AllowCredentials: allowOrigins != "*",
		MaxAge:           86400,
	})
}

// SecurityHeaders adds security headers
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	}
}

// RateLimiter limits requests per client address; perMinute <= 0 disables it.
func RateLimiter(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:               perMinute,
		Expiration:        time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Get("X-Forwarded-For", c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(response.Body{
				Error:   "rate_limited",
				Message: "Rate limit exceeded. Please try again later.",
				Code:    "RESOURCE_EXHAUSTED",
			})
		},
	})
}

// RequestID tags each request with a uuid.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: string(contextkeys.RequestIDKey),
	})
}

// WithRequestContext copies the request id local into the user context so
// loggers pick it up.
func WithRequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals(string(contextkeys.RequestIDKey)).(string); ok && id != "" {
			c.SetUserContext(utils.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}

// Protect admits a request only when the session gate authorizes its token.
func (m *AuthMiddleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := m.gate.Authorize(c.UserContext(), m.extractToken(c))
		if err != nil {
			return response.Error(c, err)
		}

		ctx := utils.WithUserEmail(c.UserContext(), claims.Email)
		c.SetUserContext(utils.WithUserRole(ctx, claims.Role))
		return c.Next()
	}
}

// extractToken reads the bearer header, then the cookie, then the token
// query parameter used by WebSocket clients.
func (m *AuthMiddleware) extractToken(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if token := c.Cookies(m.cookieName); token != "" {
		return token
	}
	return c.Query("token")
}

// GetUserEmail returns the email set by Protect.
func GetUserEmail(c *fiber.Ctx) (string, bool) {
	email, err := utils.GetUserEmailFromContext(c.UserContext())
	return email, err == nil
}
