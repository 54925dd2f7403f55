package entity

import (
	"encoding/json"
	"fmt"
	"math"

	"backoffice/internal/catalog/domain/model"
)

// Product is a catalogue item priced in MAD.
type Product struct {
	ID       model.ID `json:"id"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Category string   `json:"category"`
}

type remoteProduct struct {
	ID       model.ID `json:"id"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Category string   `json:"category"`
}

// ProductSchema describes the products screen. Remote prices are multiplied
// by ten and rounded to read as MAD amounts.
func ProductSchema() model.Schema[Product] {
	return model.Schema[Product]{
		Name:     Products,
		CacheKey: ProductsCacheKey,
		Fields: []model.Field{
			{Name: "name", Label: "Nom", Kind: model.KindText},
			{Name: "price", Label: "Prix", Kind: model.KindPositiveNumber},
			{Name: "category", Label: "Catégorie", Kind: model.KindText},
		},
		IDs: model.NamespacedIDs{Prefix: LocalIDPrefix},
		Columns: []model.Column[Product]{
			{Key: "id", Header: "ID", Value: func(p Product) string { return p.ID.String() }},
			{Key: "title", Header: "Nom", Value: func(p Product) string { return p.Title }},
			{Key: "category", Header: "Catégorie", Value: func(p Product) string { return p.Category }},
			{Key: "price", Header: "Prix", Value: func(p Product) string { return fmt.Sprintf("%.2f MAD", p.Price) }},
		},
		Seed: model.SeedSpec[Product]{
			Required: []string{"id", "title", "price"},
			Project: func(raw json.RawMessage) (Product, error) {
				var r remoteProduct
				if err := json.Unmarshal(raw, &r); err != nil {
					return Product{}, err
				}
				return Product{ID: r.ID, Title: r.Title, Price: math.Round(r.Price * 10), Category: r.Category}, nil
			},
		},
		IDOf: func(p Product) model.ID { return p.ID },
		Build: func(id model.ID, v model.Values) Product {
			return Product{ID: id, Title: v.Text("name"), Price: v.Number("price"), Category: v.Text("category")}
		},
		Apply: func(p Product, v model.Values) Product {
			p.Title = v.Text("name")
			p.Price = v.Number("price")
			p.Category = v.Text("category")
			return p
		},
		FormOf: func(p Product) model.Input {
			return model.Input{"name": p.Title, "price": model.FormatNumber(p.Price), "category": p.Category}
		},
	}
}
