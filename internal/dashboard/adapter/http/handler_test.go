package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"backoffice/internal/dashboard/usecase"
	apperrors "backoffice/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStats struct {
	mock.Mock
}

func (m *MockStats) Compute(ctx context.Context) (*usecase.Stats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*usecase.Stats)
	return stats, args.Error(1)
}

func newApp(stats StatsComputer) *fiber.App {
	app := fiber.New()
	NewHandler(stats, nil).RegisterRoutes(app.Group("/api/v1"))
	return app
}

func TestGet_ReturnsStats(t *testing.T) {
	m := &MockStats{}
	m.On("Compute", mock.Anything).Return(&usecase.Stats{TotalOrders: 3, PendingOrders: 2}, nil)

	resp, err := newApp(m).Test(httptest.NewRequest("GET", "/api/v1/dashboard", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 3, body["totalOrders"])
	assert.EqualValues(t, 2, body["pendingOrders"])
	m.AssertExpectations(t)
}

func TestGet_SourceFailure(t *testing.T) {
	m := &MockStats{}
	m.On("Compute", mock.Anything).Return(nil, apperrors.NewSeedFetchError("mem://carts", errors.New("down")))

	resp, err := newApp(m).Test(httptest.NewRequest("GET", "/api/v1/dashboard", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, apperrors.CodeSeedFetchFailed, body["code"])
	assert.GreaterOrEqual(t, resp.StatusCode, 500)
}
