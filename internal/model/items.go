package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// OrderItems maps product name to that product's ordered instances. A product
// key is present iff its instance list is non-empty.
//
// Two document shapes exist in the wild: the canonical per-instance shape
// {"Pizza": {"instances": [...]}} and a deprecated flat quantity map
// {"Pain": 3} written by early versions of the breakfast screen. Decoding
// accepts both and normalizes the flat shape into N instances with empty
// extras; encoding always emits the canonical shape.
type OrderItems map[string]OrderItemWithInstances

// legacy flat quantities are expanded with fresh instance IDs so downstream
// code (removal, display, export) can treat every order uniformly.
func expandFlatQuantity(n int) OrderItemWithInstances {
	instances := make([]OrderItemInstance, 0, n)
	for i := 0; i < n; i++ {
		instances = append(instances, OrderItemInstance{
			ID:     NewInstanceID(),
			Extras: map[string]int{},
		})
	}
	return OrderItemWithInstances{Instances: instances}
}

// UnmarshalJSON decodes either order-item shape into the canonical one.
// Zero-quantity flat entries and instances with nil extras are normalized
// away so the invariant "quantities are strictly positive" holds on every
// decoded document.
func (o *OrderItems) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	items := make(OrderItems, len(raw))
	for name, val := range raw {
		// Object entries are the canonical shape. An absent or null
		// instances field means "no instances"; stored documents with
		// that shape exist and must not fail the whole order.
		if trimmed := bytes.TrimSpace(val); len(trimmed) > 0 && trimmed[0] == '{' {
			var wrapped struct {
				Instances []OrderItemInstance `json:"instances"`
			}
			if err := json.Unmarshal(val, &wrapped); err != nil {
				return fmt.Errorf("order item %q: %w", name, err)
			}
			for i := range wrapped.Instances {
				inst := &wrapped.Instances[i]
				if inst.ID == "" {
					inst.ID = NewInstanceID()
				}
				inst.Extras = prunedExtras(inst.Extras)
			}
			items[name] = OrderItemWithInstances{Instances: wrapped.Instances}
			continue
		}

		var qty int
		if err := json.Unmarshal(val, &qty); err != nil {
			return fmt.Errorf("order item %q: unrecognized shape", name)
		}
		if qty <= 0 {
			continue
		}
		items[name] = expandFlatQuantity(qty)
	}

	// Drop products whose instance list came back empty.
	for name, item := range items {
		if len(item.Instances) == 0 {
			delete(items, name)
		}
	}

	*o = items
	return nil
}

// prunedExtras returns a copy of extras with non-positive quantities removed.
// A nil input yields an empty, non-nil map.
func prunedExtras(extras map[string]int) map[string]int {
	out := make(map[string]int, len(extras))
	for name, qty := range extras {
		if qty > 0 {
			out[name] = qty
		}
	}
	return out
}

// InstanceCount returns the total number of instances across all products.
func (o OrderItems) InstanceCount() int {
	n := 0
	for _, item := range o {
		n += len(item.Instances)
	}
	return n
}

// NewInstanceID generates an opaque ID unique within an order, stable for the
// lifetime of the in-progress order.
func NewInstanceID() string {
	return uuid.NewString()
}
