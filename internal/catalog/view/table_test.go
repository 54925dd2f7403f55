package view

import (
	"net/http"
	"testing"

	"backoffice/internal/catalog/domain/entity"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Products(t *testing.T) {
	r := NewRenderer(entity.ProductSchema(), "/api/v1")
	table := r.Render([]entity.Product{
		{ID: "3", Title: "Rose", Price: 120, Category: "parfum"},
		{ID: "local-1", Title: "Musc", Price: 79.5, Category: "huile"},
	})

	assert.Equal(t, entity.Products, table.Entity)
	require.Len(t, table.Headers, 4)
	assert.Equal(t, "price", table.Headers[3].Key)

	require.Len(t, table.Rows, 2)
	row := table.Rows[1]
	assert.Equal(t, "local-1", row.ID.String())
	assert.Equal(t, []Cell{
		{Key: "id", Value: "local-1"},
		{Key: "title", Value: "Musc"},
		{Key: "category", Value: "huile"},
		{Key: "price", Value: "79.50 MAD"},
	}, row.Cells)

	assert.Equal(t, []Action{
		{Kind: ActionDetails, ID: "local-1", Method: http.MethodGet, Href: "/api/v1/products/local-1"},
		{Kind: ActionEdit, ID: "local-1", Method: http.MethodPost, Href: "/api/v1/products/local-1/form"},
		{Kind: ActionDelete, ID: "local-1", Method: http.MethodDelete, Href: "/api/v1/products/local-1?confirm=true"},
	}, row.Actions)
}

func TestRender_Cells(t *testing.T) {
	tests := []struct {
		name string
		got  []Cell
		want []Cell
	}{
		{
			name: "orders",
			got: NewRenderer(entity.OrderSchema(), "").Render([]entity.Order{
				{ID: "7", Client: "Client 3", Product: "Lavande", Quantity: 3},
			}).Rows[0].Cells,
			want: []Cell{
				{Key: "id", Value: "7"},
				{Key: "client", Value: "Client 3"},
				{Key: "product", Value: "Lavande"},
				{Key: "quantity", Value: "3"},
			},
		},
		{
			name: "invoices",
			got: NewRenderer(entity.InvoiceSchema(nil), "").Render([]entity.Invoice{
				{ID: "2", Client: "Client 9", Amount: 1049.9, Status: "Payée"},
			}).Rows[0].Cells,
			want: []Cell{
				{Key: "id", Value: "2"},
				{Key: "client", Value: "Client 9"},
				{Key: "amount", Value: "1049.90"},
				{Key: "status", Value: "Payée"},
			},
		},
		{
			name: "clients",
			got: NewRenderer(entity.ClientSchema(), "").Render([]entity.Client{
				{ID: "1", Name: "Emily Johnson", Email: "emily@x.dev", Phone: "+81 965-431-3024"},
			}).Rows[0].Cells,
			want: []Cell{
				{Key: "id", Value: "1"},
				{Key: "name", Value: "Emily Johnson"},
				{Key: "email", Value: "emily@x.dev"},
				{Key: "phone", Value: "+81 965-431-3024"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.got); diff != "" {
				t.Errorf("%s cells mismatch (-want +got):\n%s", tt.name, diff)
			}
		})
	}
}

func TestRender_EmptyPage(t *testing.T) {
	table := NewRenderer(entity.InvoiceSchema(nil), "").Render(nil)
	assert.NotNil(t, table.Rows)
	assert.Empty(t, table.Rows)
	assert.Len(t, table.Headers, 4)
}

func TestItemPath_Escapes(t *testing.T) {
	r := NewRenderer(entity.UserSchema(), "/api/v1")
	assert.Equal(t, "/api/v1/users/a%2Fb", r.ItemPath("a/b"))
}
