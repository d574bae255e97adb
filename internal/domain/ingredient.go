package domain

import "github.com/google/uuid"

// Ingredient is one requirement slot in a recipe. Its components are
// mutually exclusive alternatives; any single one satisfies the slot.
type Ingredient struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Components []Component `json:"components"`
}

// Product is behaviorally identical to Ingredient but represents recipe
// output rather than a requirement.
type Product = Ingredient

// NewIngredient creates an empty slot with a fresh id.
func NewIngredient(name string) Ingredient {
	return Ingredient{ID: uuid.NewString(), Name: name}
}

// Component returns the component with the given id, or nil.
func (i *Ingredient) Component(id string) *Component {
	for idx := range i.Components {
		if i.Components[idx].ID == id {
			return &i.Components[idx]
		}
	}
	return nil
}

// HasComponent reports whether any alternative in this slot carries the name.
func (i *Ingredient) HasComponent(name string) bool {
	for _, c := range i.Components {
		if c.Name == name {
			return true
		}
	}
	return false
}

// AddComponent appends a new alternative with quantity 1, mirroring a
// drag-and-drop onto the slot.
func (i *Ingredient) AddComponent(ref, name string, tags []string, attributePath string) *Component {
	c := NewComponent(ref, name, 1, tags, attributePath)
	i.Components = append(i.Components, c)
	return &i.Components[len(i.Components)-1]
}

// RemoveComponent deletes the component with the given id and reports whether
// the slot is now empty (callers must then remove the slot from the recipe).
func (i *Ingredient) RemoveComponent(id string) bool {
	kept := i.Components[:0]
	for _, c := range i.Components {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	i.Components = kept
	return len(i.Components) == 0
}

// SetQuantity updates the quantity of the component with the given id.
func (i *Ingredient) SetQuantity(componentID string, quantity float64) bool {
	c := i.Component(componentID)
	if c == nil {
		return false
	}
	c.Quantity = quantity
	return true
}
