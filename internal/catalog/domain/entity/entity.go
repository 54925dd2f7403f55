// Package entity declares the five back-office record types and their schemas.
package entity

// Entity names, used in routes and change events.
const (
	Products = "products"
	Clients  = "clients"
	Orders   = "orders"
	Invoices = "invoices"
	Users    = "users"
)

// Cache keys; each entity owns exactly one.
const (
	ProductsCacheKey = "aromefloral_products_2026"
	ClientsCacheKey  = "clients-local-2026"
	OrdersCacheKey   = "orders-local-2026"
	InvoicesCacheKey = "invoices-local"
	UsersCacheKey    = "users-local-2026"
)

// LocalIDPrefix marks product ids created locally.
const LocalIDPrefix = "local-"

// Names lists every entity in menu order.
var Names = []string{Products, Clients, Orders, Invoices, Users}
