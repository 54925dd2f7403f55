package entity

import (
	"encoding/json"
	"fmt"

	"backoffice/internal/catalog/domain/model"
)

// UnknownProduct labels carts that arrive without any line item.
const UnknownProduct = "Produit inconnu"

// Order is a single-product order placed by a client.
type Order struct {
	ID       model.ID `json:"id"`
	Client   string   `json:"client"`
	Product  string   `json:"product"`
	Quantity float64  `json:"quantity"`
}

type remoteCart struct {
	ID       model.ID `json:"id"`
	UserID   int64    `json:"userId"`
	Total    float64  `json:"total"`
	Quantity float64  `json:"totalQuantity"`
	Products []struct {
		Title string `json:"title"`
	} `json:"products"`
}

func (c remoteCart) clientLabel() string {
	return fmt.Sprintf("Client %d", c.UserID)
}

func OrderSchema() model.Schema[Order] {
	return model.Schema[Order]{
		Name:     Orders,
		CacheKey: OrdersCacheKey,
		Fields: []model.Field{
			{Name: "client", Label: "Client", Kind: model.KindText},
			{Name: "product", Label: "Produit", Kind: model.KindText},
			{Name: "quantity", Label: "Quantité", Kind: model.KindPositiveNumber},
		},
		IDs: model.SequentialIDs{},
		Columns: []model.Column[Order]{
			{Key: "id", Header: "ID", Value: func(o Order) string { return o.ID.String() }},
			{Key: "client", Header: "Client", Value: func(o Order) string { return o.Client }},
			{Key: "product", Header: "Produit", Value: func(o Order) string { return o.Product }},
			{Key: "quantity", Header: "Quantité", Value: func(o Order) string { return model.FormatNumber(o.Quantity) }},
		},
		Seed: model.SeedSpec[Order]{
			Envelope: "carts",
			Required: []string{"id", "userId"},
			Project: func(raw json.RawMessage) (Order, error) {
				var c remoteCart
				if err := json.Unmarshal(raw, &c); err != nil {
					return Order{}, err
				}
				product := UnknownProduct
				if len(c.Products) > 0 && c.Products[0].Title != "" {
					product = c.Products[0].Title
				}
				return Order{ID: c.ID, Client: c.clientLabel(), Product: product, Quantity: c.Quantity}, nil
			},
		},
		IDOf: func(o Order) model.ID { return o.ID },
		Build: func(id model.ID, v model.Values) Order {
			return Order{ID: id, Client: v.Text("client"), Product: v.Text("product"), Quantity: v.Number("quantity")}
		},
		Apply: func(o Order, v model.Values) Order {
			o.Client = v.Text("client")
			o.Product = v.Text("product")
			o.Quantity = v.Number("quantity")
			return o
		},
		FormOf: func(o Order) model.Input {
			return model.Input{"client": o.Client, "product": o.Product, "quantity": model.FormatNumber(o.Quantity)}
		},
	}
}
