package enum

// ── Services: meal/venue contexts used to filter the catalog ──

const (
	ServiceBreakfast = "petit-déj"
	ServiceSnack     = "snack"
	ServiceBar       = "bar"
)

// ServiceBreakfastTag is the service tag written on breakfast orders.
// The mobile client historically wrote the unaccented form.
const ServiceBreakfastTag = "petit-dej"

// Services lists every valid catalog service in display order.
var Services = []string{ServiceBreakfast, ServiceSnack, ServiceBar}

// IsValidService reports whether s is a known service tag.
func IsValidService(s string) bool {
	switch s {
	case ServiceBreakfast, ServiceSnack, ServiceBar, ServiceBreakfastTag:
		return true
	}
	return false
}

// ── Employee roles: display labels only, permissions gate access ──

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employé"
)

// ── WebSocket snapshot topics ──

const (
	TopicProducts = "products"
	TopicChalets  = "chalets"
	TopicOrders   = "orders" // orders:<chalet> rooms are derived from this prefix
)
