// Package order holds the in-progress order model: per-product instance
// lists with independent extras selections, the customization staging step,
// and the confirmation gate.
package order

import (
	"errors"

	"github.com/chalets-du-lac/api/internal/model"
)

// Errors reported by the confirmation gate and staging operations.
var (
	ErrNoChalet   = errors.New("no chalet selected")
	ErrEmptyOrder = errors.New("order has no items")
	ErrNotStaging = errors.New("no item is being customized")
)

// Builder maintains one in-progress order. It is exclusively owned by the
// session composing it; no internal locking.
type Builder struct {
	items   model.OrderItems
	chalet  string
	service string

	// staging holds the extras selection for an item being customized,
	// prior to commit. Nil when no customization is in progress.
	staging        map[string]int
	stagingProduct string

	editing   bool
	editingID string
}

// New returns an empty builder for the given service.
func New(service string) *Builder {
	return &Builder{
		items:   model.OrderItems{},
		service: service,
	}
}

// Items returns the current order mapping. Callers must not mutate it.
func (b *Builder) Items() model.OrderItems { return b.items }

// Chalet returns the selected chalet number, empty if none.
func (b *Builder) Chalet() string { return b.chalet }

// Service returns the selected service.
func (b *Builder) Service() string { return b.service }

// SelectChalet sets the chalet the order will be billed to.
func (b *Builder) SelectChalet(number string) { b.chalet = number }

// SelectService switches the active service. Outside of edit mode the order
// is cleared, since the menu it was composed from no longer applies.
func (b *Builder) SelectService(service string) {
	b.service = service
	if !b.editing {
		b.items = model.OrderItems{}
	}
}

// AddInstance appends a new instance of the product with the given extras
// selection (possibly empty), creating the product entry if absent. Always
// succeeds. Non-positive extras quantities are dropped.
func (b *Builder) AddInstance(productName string, extras map[string]int) {
	inst := model.OrderItemInstance{
		ID:     model.NewInstanceID(),
		Extras: make(map[string]int, len(extras)),
	}
	for name, qty := range extras {
		if qty > 0 {
			inst.Extras[name] = qty
		}
	}

	item := b.items[productName]
	item.Instances = append(item.Instances, inst)
	b.items[productName] = item
}

// RemoveInstance removes the matching instance. When no instances remain for
// the product its key is removed entirely. Unknown product or instance IDs
// are a no-op.
func (b *Builder) RemoveInstance(productName, instanceID string) {
	item, ok := b.items[productName]
	if !ok {
		return
	}

	kept := item.Instances[:0]
	for _, inst := range item.Instances {
		if inst.ID != instanceID {
			kept = append(kept, inst)
		}
	}

	if len(kept) == 0 {
		delete(b.items, productName)
		return
	}
	b.items[productName] = model.OrderItemWithInstances{Instances: kept}
}

// Stage begins customizing a new instance of the product. Used only for
// products that define extras; extra-less products add instances directly.
func (b *Builder) Stage(productName string) {
	b.stagingProduct = productName
	b.staging = map[string]int{}
}

// IncreaseExtra bumps the staged quantity of the named extra by one.
func (b *Builder) IncreaseExtra(extraName string) error {
	if b.staging == nil {
		return ErrNotStaging
	}
	b.staging[extraName]++
	return nil
}

// DecreaseExtra lowers the staged quantity of the named extra by one. A
// quantity of one is removed from the mapping outright: zero is never stored.
func (b *Builder) DecreaseExtra(extraName string) error {
	if b.staging == nil {
		return ErrNotStaging
	}
	switch qty := b.staging[extraName]; {
	case qty > 1:
		b.staging[extraName] = qty - 1
	case qty == 1:
		delete(b.staging, extraName)
	}
	return nil
}

// StagedExtras returns the current staging selection, nil when not staging.
func (b *Builder) StagedExtras() map[string]int { return b.staging }

// ConfirmStaging commits the staged selection as a new instance and clears
// the staging slot.
func (b *Builder) ConfirmStaging() error {
	if b.staging == nil {
		return ErrNotStaging
	}
	b.AddInstance(b.stagingProduct, b.staging)
	b.clearStaging()
	return nil
}

// CancelStaging discards the staging slot without touching the order.
func (b *Builder) CancelStaging() {
	b.clearStaging()
}

func (b *Builder) clearStaging() {
	b.staging = nil
	b.stagingProduct = ""
}

// Validate is the confirmation gate: a chalet must be selected and the order
// must be non-empty before it may be committed. The order is left unchanged
// either way.
func (b *Builder) Validate() error {
	if b.chalet == "" {
		return ErrNoChalet
	}
	if len(b.items) == 0 {
		return ErrEmptyOrder
	}
	return nil
}

// LoadForEdit replaces the in-progress state with a committed order's content
// and tags the builder as editing that order. A later confirm should update
// the committed record instead of creating a new one.
func (b *Builder) LoadForEdit(o model.Order) {
	b.items = o.Items
	if b.items == nil {
		b.items = model.OrderItems{}
	}
	b.chalet = o.Chalet
	b.service = o.Service
	if b.service == "" {
		b.service = "snack"
	}
	b.editing = true
	b.editingID = o.ID.String()
	b.clearStaging()
}

// Editing reports whether the builder is editing a committed order and, if
// so, which one.
func (b *Builder) Editing() (string, bool) { return b.editingID, b.editing }

// Reset clears the order, chalet selection, and edit mode after a commit or
// an abandoned edit. The committed record is untouched.
func (b *Builder) Reset() {
	b.items = model.OrderItems{}
	b.chalet = ""
	b.editing = false
	b.editingID = ""
	b.clearStaging()
}
