package entity

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"backoffice/internal/catalog/domain/model"
)

// Invoice statuses assigned to seeded invoices.
const (
	StatusPaid    = "Payée"
	StatusPending = "En attente"
)

// StatusPicker chooses the status of a seeded invoice.
type StatusPicker func() string

// RandomStatus picks paid or pending with equal probability.
func RandomStatus() string {
	if rand.IntN(2) == 0 {
		return StatusPaid
	}
	return StatusPending
}

// Invoice is a billed amount with a free-text status.
type Invoice struct {
	ID     model.ID `json:"id"`
	Client string   `json:"client"`
	Amount float64  `json:"amount"`
	Status string   `json:"status"`
}

// InvoiceSchema describes the invoices screen; pick defaults to RandomStatus.
func InvoiceSchema(pick StatusPicker) model.Schema[Invoice] {
	if pick == nil {
		pick = RandomStatus
	}

	return model.Schema[Invoice]{
		Name:     Invoices,
		CacheKey: InvoicesCacheKey,
		Fields: []model.Field{
			{Name: "client", Label: "Client", Kind: model.KindText},
			{Name: "amount", Label: "Montant", Kind: model.KindPositiveNumber},
			{Name: "status", Label: "Statut", Kind: model.KindText},
		},
		IDs: model.SequentialIDs{},
		Columns: []model.Column[Invoice]{
			{Key: "id", Header: "ID", Value: func(i Invoice) string { return i.ID.String() }},
			{Key: "client", Header: "Client", Value: func(i Invoice) string { return i.Client }},
			{Key: "amount", Header: "Montant", Value: func(i Invoice) string { return fmt.Sprintf("%.2f", i.Amount) }},
			{Key: "status", Header: "Statut", Value: func(i Invoice) string { return i.Status }},
		},
		Seed: model.SeedSpec[Invoice]{
			Envelope: "carts",
			Required: []string{"id", "userId", "total"},
			Project: func(raw json.RawMessage) (Invoice, error) {
				var c remoteCart
				if err := json.Unmarshal(raw, &c); err != nil {
					return Invoice{}, err
				}
				return Invoice{ID: c.ID, Client: c.clientLabel(), Amount: c.Total, Status: pick()}, nil
			},
		},
		IDOf: func(i Invoice) model.ID { return i.ID },
		Build: func(id model.ID, v model.Values) Invoice {
			return Invoice{ID: id, Client: v.Text("client"), Amount: v.Number("amount"), Status: v.Text("status")}
		},
		Apply: func(i Invoice, v model.Values) Invoice {
			i.Client = v.Text("client")
			i.Amount = v.Number("amount")
			i.Status = v.Text("status")
			return i
		},
		FormOf: func(i Invoice) model.Input {
			return model.Input{"client": i.Client, "amount": model.FormatNumber(i.Amount), "status": i.Status}
		},
	}
}
