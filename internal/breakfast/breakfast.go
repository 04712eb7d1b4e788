// Package breakfast implements the simple fixed-price breakfast order:
// a flat name→quantity mapping with no extras and a monetary total.
package breakfast

import "github.com/shopspring/decimal"

// Item is one entry of the fixed breakfast price list.
type Item struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// PriceList returns the fixed breakfast catalog in display order.
func PriceList() []Item {
	return []Item{
		{Name: "Pain", Price: decimal.New(250, -2)},
		{Name: "Chocolatine", Price: decimal.New(150, -2)},
		{Name: "Croissant", Price: decimal.New(150, -2)},
	}
}

// Total sums price×quantity over the quantity mapping against the given
// price list. A quantity key with no matching price entry contributes zero.
func Total(prices []Item, quantities map[string]int) decimal.Decimal {
	index := make(map[string]decimal.Decimal, len(prices))
	for _, it := range prices {
		index[it.Name] = it.Price
	}

	total := decimal.Zero
	for name, qty := range quantities {
		price, ok := index[name]
		if !ok {
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}

// FormatTotal renders a total rounded to two decimal places, e.g. "7.50".
func FormatTotal(total decimal.Decimal) string {
	return total.StringFixed(2)
}
