// Package menu projects the flat product catalog into the categorized menu
// shown for a single service.
package menu

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chalets-du-lac/api/internal/model"
)

// Product is the display form of a catalog product.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	PriceString string          `json:"priceString"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Extras      []model.Extra   `json:"extras,omitempty"`
}

// Category groups the products sharing one category label. Derived, never
// stored: recomputed from the full product list whenever it or the selected
// service changes.
type Category struct {
	Category string    `json:"category"`
	Products []Product `json:"products"`
}

// Build filters products to those offered under service and groups them by
// category. Category order follows first appearance while scanning the
// product list; product order within a category follows the source list.
// A pure function of its inputs: no error paths, empty in means empty out,
// and no category in the result is ever empty.
func Build(products []model.Product, service string) []Category {
	var categories []Category
	index := make(map[string]int)

	for _, p := range products {
		if !p.OfferedUnder(service) {
			continue
		}

		i, ok := index[p.Category]
		if !ok {
			i = len(categories)
			index[p.Category] = i
			categories = append(categories, Category{Category: p.Category})
		}

		categories[i].Products = append(categories[i].Products, Product{
			ID:          p.ID,
			Name:        p.Name,
			PriceString: p.Price.String() + "€",
			Price:       p.Price,
			Description: p.Description,
			Extras:      p.Extras,
		})
	}

	return categories
}
