package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Extra is a separately priced add-on selectable per ordered instance.
// It belongs to exactly one product and has no independent lifecycle.
type Extra struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Product is a catalog entry authored by staff. Services lists the meal
// contexts the product is offered under; Extras may be empty.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Services    []string        `json:"services"`
	Extras      []Extra         `json:"extras,omitempty"`
}

// OfferedUnder reports whether the product is available for the given service.
func (p Product) OfferedUnder(service string) bool {
	for _, s := range p.Services {
		if s == service {
			return true
		}
	}
	return false
}

// OrderItemInstance is one physical unit of an ordered product. Extras maps
// extra name to requested quantity; every stored quantity is >= 1 and an
// absent key means "not requested".
type OrderItemInstance struct {
	ID     string         `json:"id"`
	Extras map[string]int `json:"extras"`
}

// OrderItemWithInstances is the per-product slice of an order.
type OrderItemWithInstances struct {
	Instances []OrderItemInstance `json:"instances"`
}

// Order is a committed order as stored in the orders collection.
type Order struct {
	ID        uuid.UUID  `json:"id"`
	Chalet    string     `json:"chalet"`
	Service   string     `json:"service"`
	Items     OrderItems `json:"order"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Chalet is a rentable lodging unit. Number doubles as its key. ClientID is
// set while the chalet is occupied and cleared when the account is closed.
type Chalet struct {
	Number   string  `json:"number"`
	Booked   bool    `json:"booked"`
	ClientID *string `json:"clientId,omitempty"`
}

// Permissions is the fixed-shape capability set carried by every employee.
// There is no hierarchy: each boolean gates one management surface.
type Permissions struct {
	ManageProducts   bool `json:"manageProducts"`
	ManageEmployees  bool `json:"manageEmployees"`
	ManageChalets    bool `json:"manageChalets"`
	ManageActivities bool `json:"manageActivities"`
	ViewOrders       bool `json:"viewOrders"`
}

// AllPermissions returns the full capability set, used for admin accounts.
func AllPermissions() Permissions {
	return Permissions{
		ManageProducts:   true,
		ManageEmployees:  true,
		ManageChalets:    true,
		ManageActivities: true,
		ViewOrders:       true,
	}
}

// Employee is a staff account.
type Employee struct {
	ID          uuid.UUID   `json:"id"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Role        string      `json:"role"`
	Active      bool        `json:"active"`
	Permissions Permissions `json:"permissions"`
}

// Activity is a guest activity entry managed by staff.
type Activity struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"startsAt"`
}

// Announcement is a short message shown to guests.
type Announcement struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
