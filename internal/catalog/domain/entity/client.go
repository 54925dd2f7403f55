package entity

import (
	"encoding/json"
	"strings"

	"backoffice/internal/catalog/domain/model"
)

// Client is a customer contact.
type Client struct {
	ID    model.ID `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Phone string   `json:"phone"`
}

type remoteUser struct {
	ID        model.ID `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Username  string   `json:"username"`
}

func ClientSchema() model.Schema[Client] {
	return model.Schema[Client]{
		Name:     Clients,
		CacheKey: ClientsCacheKey,
		Fields: []model.Field{
			{Name: "name", Label: "Nom", Kind: model.KindText},
			{Name: "email", Label: "Email", Kind: model.KindEmail},
			{Name: "phone", Label: "Téléphone", Kind: model.KindText},
		},
		IDs: model.SequentialIDs{},
		Columns: []model.Column[Client]{
			{Key: "id", Header: "ID", Value: func(c Client) string { return c.ID.String() }},
			{Key: "name", Header: "Nom", Value: func(c Client) string { return c.Name }},
			{Key: "email", Header: "Email", Value: func(c Client) string { return c.Email }},
			{Key: "phone", Header: "Téléphone", Value: func(c Client) string { return c.Phone }},
		},
		Seed: model.SeedSpec[Client]{
			Envelope: "users",
			Required: []string{"id", "firstName", "lastName"},
			Project: func(raw json.RawMessage) (Client, error) {
				var u remoteUser
				if err := json.Unmarshal(raw, &u); err != nil {
					return Client{}, err
				}
				return Client{
					ID:    u.ID,
					Name:  strings.TrimSpace(u.FirstName + " " + u.LastName),
					Email: u.Email,
					Phone: u.Phone,
				}, nil
			},
		},
		IDOf: func(c Client) model.ID { return c.ID },
		Build: func(id model.ID, v model.Values) Client {
			return Client{ID: id, Name: v.Text("name"), Email: v.Text("email"), Phone: v.Text("phone")}
		},
		Apply: func(c Client, v model.Values) Client {
			c.Name = v.Text("name")
			c.Email = v.Text("email")
			c.Phone = v.Text("phone")
			return c
		},
		FormOf: func(c Client) model.Input {
			return model.Input{"name": c.Name, "email": c.Email, "phone": c.Phone}
		},
	}
}
