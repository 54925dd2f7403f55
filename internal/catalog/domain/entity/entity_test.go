package entity

import (
	"encoding/json"
	"testing"

	"backoffice/internal/catalog/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductSchema_SeedProjection(t *testing.T) {
	s := ProductSchema()
	p, err := s.Seed.Project(json.RawMessage(`{"id":1,"title":"Fjallraven Backpack","price":22.3,"category":"men's clothing","image":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, Product{ID: "1", Title: "Fjallraven Backpack", Price: 223, Category: "men's clothing"}, p)
	assert.Empty(t, s.Seed.Envelope)

	assert.Equal(t, "223.00 MAD", s.Columns[3].Value(p))
}

func TestProductSchema_FormRoundTrip(t *testing.T) {
	s := ProductSchema()
	v, err := model.Validate(s.Fields, model.Input{"name": "Rose", "price": "120", "category": "parfum"})
	require.NoError(t, err)

	p := s.Build(s.IDs.Next([]model.ID{"1", "2"}), v)
	assert.Equal(t, model.ID("local-1"), p.ID)
	assert.Equal(t, model.Input{"name": "Rose", "price": "120", "category": "parfum"}, s.FormOf(p))
}

func TestClientSchema_SeedProjection(t *testing.T) {
	c, err := ClientSchema().Seed.Project(json.RawMessage(`{"id":1,"firstName":"Emily","lastName":"Johnson","email":"emily.johnson@x.dummyjson.com","phone":"+81 965-431-3024"}`))
	require.NoError(t, err)
	assert.Equal(t, Client{ID: "1", Name: "Emily Johnson", Email: "emily.johnson@x.dummyjson.com", Phone: "+81 965-431-3024"}, c)
}

func TestOrderSchema_SeedProjection(t *testing.T) {
	s := OrderSchema()
	o, err := s.Seed.Project(json.RawMessage(`{"id":1,"userId":33,"total":2328.7,"totalQuantity":15,"products":[{"title":"Charger SXT RWD"},{"title":"Apple"}]}`))
	require.NoError(t, err)
	assert.Equal(t, Order{ID: "1", Client: "Client 33", Product: "Charger SXT RWD", Quantity: 15}, o)

	o, err = s.Seed.Project(json.RawMessage(`{"id":2,"userId":4,"totalQuantity":0,"products":[]}`))
	require.NoError(t, err)
	assert.Equal(t, UnknownProduct, o.Product)
}

func TestInvoiceSchema_StatusPicker(t *testing.T) {
	s := InvoiceSchema(func() string { return StatusPaid })
	inv, err := s.Seed.Project(json.RawMessage(`{"id":5,"userId":7,"total":103.5}`))
	require.NoError(t, err)
	assert.Equal(t, Invoice{ID: "5", Client: "Client 7", Amount: 103.5, Status: StatusPaid}, inv)
	assert.Equal(t, "103.50", s.Columns[2].Value(inv))

	for i := 0; i < 20; i++ {
		assert.Contains(t, []string{StatusPaid, StatusPending}, RandomStatus())
	}
}

func TestUserSchema_ApplyKeepsID(t *testing.T) {
	s := UserSchema()
	v, err := model.Validate(s.Fields, model.Input{"firstName": "Mina", "lastName": "Alaoui", "email": "mina@aromefloral.ma", "username": "mina"})
	require.NoError(t, err)

	u := s.Apply(User{ID: "9", FirstName: "old"}, v)
	assert.Equal(t, model.ID("9"), u.ID)
	assert.Equal(t, "Mina", u.FirstName)
	assert.Equal(t, "Mina Alaoui", s.Columns[1].Value(u))
}

func TestCacheKeysAreDistinct(t *testing.T) {
	keys := map[string]bool{}
	for _, k := range []string{
		ProductSchema().CacheKey, ClientSchema().CacheKey, OrderSchema().CacheKey,
		InvoiceSchema(nil).CacheKey, UserSchema().CacheKey,
	} {
		assert.False(t, keys[k], k)
		keys[k] = true
	}
	assert.Len(t, keys, len(Names))
}
