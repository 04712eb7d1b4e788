// Package consumption rolls a chalet's committed orders up into the
// billing-ready breakdown shown on the consumption screen and exported as
// CSV when the account is closed.
package consumption

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chalets-du-lac/api/internal/model"
)

// NoExtrasLabel is rendered for an instance ordered without any extras.
const NoExtrasLabel = "sans suppléments"

// CSVHeader is the fixed first row of the export.
const CSVHeader = "Date,Service,Produit,Quantité,Détails"

// dateLayout matches the fr-FR locale formatting of the consumption screen.
const dateLayout = "02/01/2006 15:04"

// InstanceLine is one instance's rendered extras within a product entry.
type InstanceLine struct {
	Position int    `json:"position"` // 1-based within the product
	Extras   string `json:"extras"`   // "fromage x2; olives" or NoExtrasLabel
}

// ProductEntry is one product's slice of an order: total instance count plus
// the per-instance detail lines.
type ProductEntry struct {
	Product   string         `json:"product"`
	Quantity  int            `json:"quantity"`
	Instances []InstanceLine `json:"instances"`
}

// OrderEntry is the rendered form of one committed order.
type OrderEntry struct {
	OrderID   string         `json:"orderId"`
	Date      string         `json:"date"`
	Service   string         `json:"service"`
	Products  []ProductEntry `json:"products"`
	CreatedAt time.Time      `json:"-"`
}

// Report is the full consumption breakdown for one chalet tab.
type Report struct {
	Chalet   string       `json:"chalet"`
	ClientID string       `json:"clientId"`
	Orders   []OrderEntry `json:"orders"`
}

// BuildReport renders orders (expected newest first) into the breakdown.
// Products within an order are listed alphabetically so repeated renderings
// of the same snapshot are identical.
func BuildReport(chalet, clientID string, orders []model.Order) Report {
	report := Report{
		Chalet:   chalet,
		ClientID: clientID,
		Orders:   make([]OrderEntry, 0, len(orders)),
	}

	for _, o := range orders {
		entry := OrderEntry{
			OrderID:   o.ID.String(),
			Date:      o.CreatedAt.Format(dateLayout),
			Service:   o.Service,
			CreatedAt: o.CreatedAt,
		}

		names := make([]string, 0, len(o.Items))
		for name := range o.Items {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			item := o.Items[name]
			pe := ProductEntry{
				Product:   name,
				Quantity:  len(item.Instances),
				Instances: make([]InstanceLine, 0, len(item.Instances)),
			}
			for i, inst := range item.Instances {
				pe.Instances = append(pe.Instances, InstanceLine{
					Position: i + 1,
					Extras:   renderExtras(inst.Extras, "; "),
				})
			}
			entry.Products = append(entry.Products, pe)
		}

		report.Orders = append(report.Orders, entry)
	}

	return report
}

// renderExtras joins an instance's extras as "name" or "name x<qty>" in
// alphabetical order, or returns NoExtrasLabel when the mapping is empty.
func renderExtras(extras map[string]int, sep string) string {
	if len(extras) == 0 {
		return NoExtrasLabel
	}

	names := make([]string, 0, len(extras))
	for name := range extras {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		if qty := extras[name]; qty > 1 {
			parts = append(parts, fmt.Sprintf("%s x%d", name, qty))
		} else {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, sep)
}

// CSV serializes the report: one row per (order, product) pair, every field
// quote-wrapped with internal quotes doubled. The detail cell enumerates each
// instance's extras prefixed by its 1-based position, instances joined " | ".
func (r Report) CSV() string {
	var b strings.Builder
	b.WriteString(CSVHeader)
	b.WriteByte('\n')

	for _, o := range r.Orders {
		for _, p := range o.Products {
			details := make([]string, 0, len(p.Instances))
			for _, inst := range p.Instances {
				details = append(details, fmt.Sprintf("%d. %s", inst.Position, inst.Extras))
			}

			b.WriteString(escapeField(o.Date))
			b.WriteByte(',')
			b.WriteString(escapeField(o.Service))
			b.WriteByte(',')
			b.WriteString(escapeField(p.Product))
			b.WriteByte(',')
			fmt.Fprintf(&b, "%d", p.Quantity)
			b.WriteByte(',')
			b.WriteString(escapeField(strings.Join(details, " | ")))
			b.WriteByte('\n')
		}
	}

	return b.String()
}

// escapeField quote-wraps a field, doubling internal quotes, so commas and
// quotes in free-text product or extra names survive the round trip.
func escapeField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
