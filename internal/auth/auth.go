package auth

import (
	"fmt"

	authhttp "backoffice/internal/auth/adapter/http"
	"backoffice/internal/auth/adapter/security"
	"backoffice/internal/auth/usecase"
	"backoffice/internal/config"
	"backoffice/internal/shared/eventbus"
	"backoffice/internal/shared/logger"
	"backoffice/internal/store"

	"github.com/gofiber/fiber/v2"
)

// AuthModule represents the complete authentication module
type AuthModule struct {
	gate       *usecase.SessionGate
	handler    *authhttp.AuthHTTPHandler
	middleware *authhttp.AuthMiddleware
	loginLimit fiber.Handler
}

// NewAuthModule builds the session gate over the demo credential provider.
func NewAuthModule(cfg config.AuthConfig, st store.Store, bus eventbus.Bus, log logger.Logger) (*AuthModule, error) {
	tokenSvc, err := security.NewJWTokenService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	creds, err := security.NewDemoCredentialProvider(security.DemoAccounts, cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to create credential provider: %w", err)
	}

	gate := usecase.NewSessionGate(st, creds, tokenSvc, bus, log)
	handler := authhttp.NewAuthHTTPHandler(gate, authhttp.CookieConfig{
		Name:     cfg.CookieName,
		MaxAge:   cfg.AccessTokenTTL,
		Secure:   cfg.CookieSecure,
		SameSite: cfg.CookieSameSite,
	}, log)

	return &AuthModule{
		gate:       gate,
		handler:    handler,
		middleware: authhttp.NewAuthMiddleware(gate, cfg.CookieName),
		loginLimit: authhttp.RateLimiter(10),
	}, nil
}

// RegisterRoutes registers authentication routes with the provided router
func (am *AuthModule) RegisterRoutes(router fiber.Router) {
	am.handler.SetupAuthRoutes(router.Group("/auth"), am.loginLimit)
}

// Gate returns the session gate for the CLI and other modules.
func (am *AuthModule) Gate() *usecase.SessionGate {
	return am.gate
}

// Protect returns the middleware guarding entity and dashboard routes.
func (am *AuthModule) Protect() fiber.Handler {
	return am.middleware.Protect()
}
