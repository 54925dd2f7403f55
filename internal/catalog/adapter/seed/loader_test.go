package seed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backoffice/internal/catalog/domain/entity"
	apperrors "backoffice/internal/shared/errors"
	"backoffice/internal/shared/logger"
	"backoffice/internal/shared/remote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	body []byte
	err  error
	urls []string
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	s.urls = append(s.urls, url)
	return s.body, s.err
}

func TestSource_BareArray(t *testing.T) {
	f := &stubFetcher{body: []byte(`[
		{"id":1,"title":"Backpack","price":10.9,"category":"bags"},
		{"id":2,"title":"Shirt","price":2.2,"category":"men"}
	]`)}
	src, err := NewSource("https://fakestoreapi.com/products", entity.ProductSchema().Seed, f, logger.NewNop())
	require.NoError(t, err)

	products, err := src.Seed(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 109.0, products[0].Price)
	assert.Equal(t, 22.0, products[1].Price)
	assert.Equal(t, []string{"https://fakestoreapi.com/products"}, f.urls)
}

func TestSource_Envelope(t *testing.T) {
	f := &stubFetcher{body: []byte(`{"users":[
		{"id":1,"firstName":"Emily","lastName":"Johnson","email":"e@x.com","phone":"1"},
		{"id":2,"firstName":"Michael","lastName":"Williams","email":"m@x.com","phone":"2"},
		{"id":3,"firstName":"Sophia","lastName":"Brown","email":"s@x.com","phone":"3"}
	],"total":208,"skip":0,"limit":3}`)}
	src, err := NewSource("https://dummyjson.com/users", entity.ClientSchema().Seed, f, nil)
	require.NoError(t, err)

	clients, err := src.Seed(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 3)
	assert.Equal(t, "Sophia Brown", clients[2].Name)
}

func TestSource_SkipsMalformedRecords(t *testing.T) {
	f := &stubFetcher{body: []byte(`{"carts":[
		{"id":1,"userId":3,"total":10,"totalQuantity":2,"products":[]},
		{"userId":4,"total":20},
		"not an object",
		{"id":{"nested":true},"userId":5,"total":30}
	]}`)}
	src, err := NewSource("https://dummyjson.com/carts", entity.OrderSchema().Seed, f, nil)
	require.NoError(t, err)

	orders, err := src.Seed(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, entity.UnknownProduct, orders[0].Product)
}

func TestSource_Failures(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *stubFetcher
	}{
		{"transport error", &stubFetcher{err: errors.New("connection refused")}},
		{"not json", &stubFetcher{body: []byte(`<html>`)}},
		{"missing envelope", &stubFetcher{body: []byte(`{"items":[]}`)}},
		{"envelope not array", &stubFetcher{body: []byte(`{"users":{}}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource("https://dummyjson.com/users", entity.UserSchema().Seed, tt.fetcher, nil)
			require.NoError(t, err)

			users, err := src.Seed(context.Background())
			assert.Nil(t, users)
			assert.True(t, apperrors.IsSeedFetch(err))
		})
	}
}

func TestSource_OverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"carts":[{"id":1,"userId":9,"total":99.5}]}`))
	}))
	defer srv.Close()

	src, err := NewSource(srv.URL, entity.InvoiceSchema(func() string { return entity.StatusPending }).Seed,
		remote.NewFiberFetcher(2*time.Second), nil)
	require.NoError(t, err)

	invoices, err := src.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []entity.Invoice{{ID: "1", Client: "Client 9", Amount: 99.5, Status: entity.StatusPending}}, invoices)
}
