package registry

import (
	"context"
	"fmt"

	"github.com/forgelight/crucible/internal/domain"
	"github.com/forgelight/crucible/internal/logger"
)

func (s *service) GrantDiscovery(ctx context.Context, bookID, recipeID, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	err := s.mutate(ctx, func(books *[]domain.RecipeBook) error {
		_, recipe, err := findRecipe(*books, bookID, recipeID)
		if err != nil {
			return err
		}
		if recipe.Ownership == nil {
			recipe.Ownership = make(map[string]domain.Permission)
		}
		recipe.Ownership[userID] = domain.PermissionAllow
		return nil
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("Recipe discovery granted",
		"book_id", bookID, "recipe_id", recipeID, "user_id", userID)
	return nil
}

// ConfirmDiscovery mirrors the GM confirmation flow: only a GM can turn a
// provisional discovery into a permanent grant.
func (s *service) ConfirmDiscovery(ctx context.Context, bookID, recipeID, userID string, isGM bool) error {
	if !isGM {
		return fmt.Errorf("%w: only a GM can confirm a discovery", domain.ErrNoPermission)
	}
	return s.GrantDiscovery(ctx, bookID, recipeID, userID)
}
