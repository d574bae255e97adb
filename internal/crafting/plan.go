package crafting

import (
	"fmt"

	"github.com/forgelight/crucible/internal/availability"
	"github.com/forgelight/crucible/internal/domain"
)

// buildConsumeSet resolves the selected component for every ingredient slot.
// Slots missing from the selection fall back to the first satisfied
// component in slot order, matching the availability default.
func buildConsumeSet(recipe *domain.Recipe, actor *domain.Actor, selection map[string]string) ([]domain.Component, error) {
	components := make([]domain.Component, 0, len(recipe.Ingredients))

	for i := range recipe.Ingredients {
		ing := &recipe.Ingredients[i]

		componentID, ok := selection[ing.ID]
		if !ok {
			picked := defaultComponent(ing, actor)
			if picked == nil {
				return nil, fmt.Errorf("%w: no selection for ingredient %q", domain.ErrInvalidInput, ing.Name)
			}
			components = append(components, *picked)
			continue
		}

		comp := ing.Component(componentID)
		if comp == nil {
			return nil, fmt.Errorf("%w: component %s not in ingredient %q", domain.ErrInvalidInput, componentID, ing.Name)
		}
		components = append(components, *comp)
	}

	return components, nil
}

func defaultComponent(ing *domain.Ingredient, actor *domain.Actor) *domain.Component {
	for idx := range ing.Components {
		if availability.ComponentSatisfied(&ing.Components[idx], actor) {
			return &ing.Components[idx]
		}
	}
	return nil
}

// mergeComponents folds duplicate consuming components by display name,
// summing quantities, so two slots wanting the same named item book the
// total once instead of checking the same stack twice.
func mergeComponents(components []domain.Component) []domain.Component {
	merged := make([]domain.Component, 0, len(components))
	index := make(map[string]int, len(components))

	for _, comp := range components {
		if at, ok := index[comp.Name]; ok {
			merged[at].Quantity += comp.Quantity
			continue
		}
		index[comp.Name] = len(merged)
		merged = append(merged, comp)
	}

	return merged
}

// consumeComponent applies one merged component against the actor in memory.
// The caller decides when the mutated actor is persisted.
func consumeComponent(actor *domain.Actor, comp *domain.Component) error {
	if !availability.ComponentSatisfied(comp, actor) {
		return fmt.Errorf("%w: %s (need %g)", domain.ErrInsufficientResource, comp.Name, comp.Quantity)
	}

	switch comp.Strategy {
	case domain.StrategyAttribute:
		// Actors stored without attributes load with a nil map.
		if actor.Attributes == nil {
			actor.Attributes = make(map[string]float64)
		}
		actor.Attributes[comp.AttributePath] -= comp.Quantity
	case domain.StrategyTagPool:
		drainTagPool(actor, comp.Tags, comp.Quantity)
	default:
		item := actor.ItemByName(comp.Name)
		item.Quantity -= comp.Quantity
		if item.Quantity <= 0 {
			removeItem(actor, item.ID)
		}
	}
	return nil
}

// drainTagPool consumes quantity across the pool greedily in inventory
// order: earlier items are fully drained before later ones are touched, and
// the last touched item is split rather than deleted.
func drainTagPool(actor *domain.Actor, tags []string, quantity float64) {
	remaining := quantity
	for _, item := range actor.ItemsByTags(tags) {
		if remaining <= 0 {
			break
		}
		if item.Quantity <= remaining {
			remaining -= item.Quantity
			item.Quantity = 0
		} else {
			item.Quantity -= remaining
			remaining = 0
		}
	}

	kept := actor.Items[:0]
	for _, item := range actor.Items {
		if item.Quantity > 0 {
			kept = append(kept, item)
		}
	}
	actor.Items = kept
}

func removeItem(actor *domain.Actor, itemID string) {
	for idx := range actor.Items {
		if actor.Items[idx].ID == itemID {
			actor.Items = append(actor.Items[:idx], actor.Items[idx+1:]...)
			return
		}
	}
}

// produceItem merges the produced component into an existing same-named
// stack or creates a new inventory item.
func produceItem(actor *domain.Actor, name, img string, quantity float64, tags []string, newID string) {
	if existing := actor.ItemByName(name); existing != nil {
		existing.Quantity += quantity
		return
	}
	actor.Items = append(actor.Items, domain.OwnedItem{
		ID:       newID,
		Name:     name,
		Img:      img,
		Quantity: quantity,
		Tags:     append([]string(nil), tags...),
	})
}
