package entity

import (
	"encoding/json"

	"backoffice/internal/catalog/domain/model"
)

// User is a back-office account listing.
type User struct {
	ID        model.ID `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Username  string   `json:"username"`
}

func UserSchema() model.Schema[User] {
	return model.Schema[User]{
		Name:     Users,
		CacheKey: UsersCacheKey,
		Fields: []model.Field{
			{Name: "firstName", Label: "Prénom", Kind: model.KindText},
			{Name: "lastName", Label: "Nom", Kind: model.KindText},
			{Name: "email", Label: "Email", Kind: model.KindEmail},
			{Name: "username", Label: "Nom d'utilisateur", Kind: model.KindText},
		},
		IDs: model.SequentialIDs{},
		Columns: []model.Column[User]{
			{Key: "id", Header: "ID", Value: func(u User) string { return u.ID.String() }},
			{Key: "name", Header: "Nom", Value: func(u User) string { return u.FirstName + " " + u.LastName }},
			{Key: "email", Header: "Email", Value: func(u User) string { return u.Email }},
			{Key: "username", Header: "Nom d'utilisateur", Value: func(u User) string { return u.Username }},
		},
		Seed: model.SeedSpec[User]{
			Envelope: "users",
			Required: []string{"id", "firstName", "lastName", "email", "username"},
			Project: func(raw json.RawMessage) (User, error) {
				var u remoteUser
				if err := json.Unmarshal(raw, &u); err != nil {
					return User{}, err
				}
				return User{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Username: u.Username}, nil
			},
		},
		IDOf: func(u User) model.ID { return u.ID },
		Build: func(id model.ID, v model.Values) User {
			return User{
				ID:        id,
				FirstName: v.Text("firstName"),
				LastName:  v.Text("lastName"),
				Email:     v.Text("email"),
				Username:  v.Text("username"),
			}
		},
		Apply: func(u User, v model.Values) User {
			u.FirstName = v.Text("firstName")
			u.LastName = v.Text("lastName")
			u.Email = v.Text("email")
			u.Username = v.Text("username")
			return u
		},
		FormOf: func(u User) model.Input {
			return model.Input{"firstName": u.FirstName, "lastName": u.LastName, "email": u.Email, "username": u.Username}
		},
	}
}
