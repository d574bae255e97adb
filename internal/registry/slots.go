package registry

import (
	"context"
	"fmt"

	"github.com/forgelight/crucible/internal/domain"
	"github.com/forgelight/crucible/internal/logger"
)

func slotsFor(recipe *domain.Recipe, kind SlotKind) *[]domain.Ingredient {
	if kind == SlotProduct {
		return &recipe.Products
	}
	return &recipe.Ingredients
}

func findSlot(recipe *domain.Recipe, kind SlotKind, slotID string) (*domain.Ingredient, error) {
	slots := *slotsFor(recipe, kind)
	for idx := range slots {
		if slots[idx].ID == slotID {
			return &slots[idx], nil
		}
	}
	return nil, fmt.Errorf("%w: %s slot %s", domain.ErrInvalidInput, kind, slotID)
}

func (s *service) AddSlot(ctx context.Context, bookID, recipeID string, kind SlotKind, name string) (*domain.Ingredient, error) {
	var slot domain.Ingredient
	err := s.mutate(ctx, func(books *[]domain.RecipeBook) error {
		_, recipe, err := findRecipe(*books, bookID, recipeID)
		if err != nil {
			return err
		}
		slot = domain.NewIngredient(name)
		target := slotsFor(recipe, kind)
		*target = append(*target, slot)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (s *service) AddComponent(ctx context.Context, ref SlotRef, spec ComponentSpec) (*domain.Component, error) {
	// Dropped items arrive as a bare ref; resolve the display name so the
	// component survives the ref going stale later.
	if spec.Name == "" && spec.Ref != "" {
		snap, err := s.items.Resolve(ctx, spec.Ref, "")
		if err != nil {
			return nil, err
		}
		spec.Name = snap.Name
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: component name is required", domain.ErrInvalidInput)
	}
	if spec.Quantity <= 0 {
		spec.Quantity = 1
	}

	comp := domain.NewComponent(spec.Ref, spec.Name, spec.Quantity, spec.Tags, spec.AttributePath)
	err := s.mutate(ctx, func(books *[]domain.RecipeBook) error {
		_, recipe, err := findRecipe(*books, ref.BookID, ref.RecipeID)
		if err != nil {
			return err
		}
		slot, err := findSlot(recipe, ref.Kind, ref.SlotID)
		if err != nil {
			return err
		}
		slot.Components = append(slot.Components, comp)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Component added",
		"recipe_id", ref.RecipeID, "slot_id", ref.SlotID, "name", comp.Name, "strategy", comp.Strategy)
	return &comp, nil
}

// RemoveComponent drops a component; a slot left empty is removed with it.
func (s *service) RemoveComponent(ctx context.Context, ref SlotRef, componentID string) error {
	return s.mutate(ctx, func(books *[]domain.RecipeBook) error {
		_, recipe, err := findRecipe(*books, ref.BookID, ref.RecipeID)
		if err != nil {
			return err
		}
		slot, err := findSlot(recipe, ref.Kind, ref.SlotID)
		if err != nil {
			return err
		}
		if slot.Component(componentID) == nil {
			return fmt.Errorf("%w: component %s", domain.ErrInvalidInput, componentID)
		}
		if slot.RemoveComponent(componentID) {
			recipe.RemoveEmptySlots()
		}
		return nil
	})
}

func (s *service) SetComponentQuantity(ctx context.Context, ref SlotRef, componentID string, quantity float64) error {
	if quantity < 0 {
		return fmt.Errorf("%w: quantity must be non-negative", domain.ErrInvalidInput)
	}
	return s.mutate(ctx, func(books *[]domain.RecipeBook) error {
		_, recipe, err := findRecipe(*books, ref.BookID, ref.RecipeID)
		if err != nil {
			return err
		}
		slot, err := findSlot(recipe, ref.Kind, ref.SlotID)
		if err != nil {
			return err
		}
		if !slot.SetQuantity(componentID, quantity) {
			return fmt.Errorf("%w: component %s", domain.ErrInvalidInput, componentID)
		}
		return nil
	})
}
