package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiberFetcher_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`[{"id":1}]`))
	}))
	defer srv.Close()

	body, err := NewFiberFetcher(2*time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(body))
}

func TestFiberFetcher_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewFiberFetcher(2*time.Second).Fetch(context.Background(), srv.URL)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
}

func TestFiberFetcher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewFiberFetcher(50*time.Millisecond).Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestFiberFetcher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFiberFetcher(0).Fetch(ctx, "http://127.0.0.1:1")
	assert.ErrorIs(t, err, context.Canceled)
}
