package registry

import (
	"context"
	"fmt"

	"github.com/forgelight/crucible/internal/domain"
)

func (s *service) Snapshot(ctx context.Context) ([]domain.RecipeBook, error) {
	books, _, err := s.repo.GetCollection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load book collection: %w", err)
	}
	return books, nil
}

func (s *service) RecipesByItem(ctx context.Context, itemName string) ([]Match, error) {
	if itemName == "" {
		return nil, fmt.Errorf("%w: item name is required", domain.ErrInvalidInput)
	}

	books, _, err := s.repo.GetCollection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load book collection: %w", err)
	}

	var matches []Match
	for bi := range books {
		book := &books[bi]
		for ri := range book.Recipes {
			recipe := &book.Recipes[ri]
			asIngredient := recipe.HasComponent(itemName)
			asProduct := recipe.HasProduct(itemName)
			if !asIngredient && !asProduct {
				continue
			}
			matches = append(matches, Match{
				BookID:     book.ID,
				BookName:   book.Name,
				RecipeID:   recipe.ID,
				RecipeName: recipe.Name,
				AsProduct:  asProduct && !asIngredient,
			})
		}
	}
	return matches, nil
}
