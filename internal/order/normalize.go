package order

import "github.com/chalets-du-lac/api/internal/model"

// Normalize rebuilds an arbitrary incoming items payload through a Builder so
// that persisted documents always respect the order invariants: no empty
// products, no zero-quantity extras, every instance carrying a unique ID.
// Instance IDs present in the input are preserved so an edited order keeps
// its instances individually addressable.
func Normalize(items model.OrderItems) model.OrderItems {
	out := make(model.OrderItems, len(items))

	for name, item := range items {
		if len(item.Instances) == 0 {
			continue
		}

		instances := make([]model.OrderItemInstance, 0, len(item.Instances))
		seen := make(map[string]bool, len(item.Instances))
		for _, inst := range item.Instances {
			id := inst.ID
			if id == "" || seen[id] {
				id = model.NewInstanceID()
			}
			seen[id] = true

			extras := make(map[string]int, len(inst.Extras))
			for extraName, qty := range inst.Extras {
				if qty > 0 {
					extras[extraName] = qty
				}
			}
			instances = append(instances, model.OrderItemInstance{ID: id, Extras: extras})
		}
		out[name] = model.OrderItemWithInstances{Instances: instances}
	}

	return out
}
