package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"backoffice/internal/config"
	"backoffice/internal/di"
	"backoffice/internal/shared/logger"
	"backoffice/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type offlineFetcher struct{}

func (offlineFetcher) Fetch(context.Context, string) ([]byte, error) {
	return nil, errors.New("offline")
}

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg = &config.Config{
		Server: config.ServerConfig{AllowOrigins: "*", ReadTimeout: time.Second, WriteTimeout: time.Second},
		Store:  config.StoreConfig{Backend: config.BackendMemory},
		Catalog: config.CatalogConfig{
			PageSize:   5,
			PagePolicy: config.PagePolicyClamp,
			Seed:       config.SeedConfig{ProductsURL: "p", ClientsURL: "u", OrdersURL: "c", InvoicesURL: "c", UsersURL: "u"},
		},
		Dashboard: config.DashboardConfig{PendingExpr: "order.total < threshold", PendingThreshold: 1000, Timeout: time.Second},
		Auth: config.AuthConfig{
			JWTSecretKey: "test-secret-key-32-characters-long-12345", JWTIssuer: "backoffice",
			AccessTokenTTL: time.Hour, CookieName: "aromefloral_authToken", CookieSameSite: "Lax", BcryptCost: 4,
		},
		I18n: config.I18nConfig{DefaultLanguage: "fr"},
	}
	appLog = logger.NewNop()

	container, err := di.NewContainer(context.Background(), cfg, appLog,
		di.WithStore(store.NewMemoryStore()), di.WithFetcher(offlineFetcher{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })
	return newApp(container)
}

func TestHealth(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
	assert.Equal(t, "nosniff", resp.Header.Get(fiber.HeaderXContentTypeOptions))

	var body struct {
		Status string          `json:"status"`
		Store  string          `json:"store"`
		Loaded map[string]bool `json:"loaded"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "HEALTHY", body.Status)
	assert.Equal(t, config.BackendMemory, body.Store)
	assert.Len(t, body.Loaded, 5)
}

func TestUnknownRouteUsesErrorBody(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/nope", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "http_error", body["error"])
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "seed", "reset", "dashboard"} {
		assert.True(t, names[want], want)
	}
}
