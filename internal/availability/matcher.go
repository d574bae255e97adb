package availability

import (
	"github.com/forgelight/crucible/internal/domain"
)

// SlotResult reports satisfiability for one ingredient slot.
type SlotResult struct {
	// Owned is true when at least one component of the slot is satisfied.
	Owned bool `json:"owned"`
	// Components maps component id to satisfied.
	Components map[string]bool `json:"components"`
}

// Result is the full availability report for one recipe against one actor
// snapshot. Computing it is read-only and can be repeated freely.
type Result struct {
	Ingredients map[string]SlotResult `json:"ingredients"`
	CanCraft    bool                  `json:"canCraft"`
	// Selection holds the default component choice per ingredient slot:
	// the first satisfied component in slot order. Slots with no satisfied
	// component are absent.
	Selection map[string]string `json:"selection"`
}

// Compute resolves every component of every ingredient slot against the
// actor's items and attributes. A recipe is craftable when every slot has
// at least one satisfied component.
func Compute(recipe *domain.Recipe, actor *domain.Actor) Result {
	result := Result{
		Ingredients: make(map[string]SlotResult, len(recipe.Ingredients)),
		CanCraft:    true,
		Selection:   make(map[string]string),
	}

	for i := range recipe.Ingredients {
		ing := &recipe.Ingredients[i]
		slot := SlotResult{Components: make(map[string]bool, len(ing.Components))}

		for j := range ing.Components {
			comp := &ing.Components[j]
			satisfied := ComponentSatisfied(comp, actor)
			slot.Components[comp.ID] = satisfied
			if satisfied {
				if !slot.Owned {
					result.Selection[ing.ID] = comp.ID
				}
				slot.Owned = true
			}
		}

		result.Ingredients[ing.ID] = slot
		if !slot.Owned {
			result.CanCraft = false
		}
	}

	return result
}

// ComponentSatisfied checks a single component's requirement against the
// actor under the component's consumption strategy.
func ComponentSatisfied(comp *domain.Component, actor *domain.Actor) bool {
	switch comp.Strategy {
	case domain.StrategyAttribute:
		return actor.Attributes[comp.AttributePath] >= comp.Quantity
	case domain.StrategyTagPool:
		return actor.TagQuantity(comp.Tags) >= comp.Quantity
	default:
		item := actor.ItemByName(comp.Name)
		return item != nil && item.Quantity >= comp.Quantity
	}
}
