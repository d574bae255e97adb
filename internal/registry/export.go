package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/forgelight/crucible/internal/domain"
	"github.com/forgelight/crucible/internal/logger"
	"github.com/forgelight/crucible/internal/metrics"
	"github.com/forgelight/crucible/internal/validation"
)

// stripRecipeIDs clears every internal id so exported data imports cleanly
// into any world without colliding with existing ids.
func stripRecipeIDs(r *domain.Recipe) {
	r.ID = ""
	r.BookID = ""
	stripSlotIDs(r.Ingredients)
	stripSlotIDs(r.Products)
}

func stripSlotIDs(slots []domain.Ingredient) {
	for i := range slots {
		slots[i].ID = ""
		for j := range slots[i].Components {
			slots[i].Components[j].ID = ""
		}
	}
}

func (s *service) ExportRecipe(ctx context.Context, bookID, recipeID string) ([]byte, error) {
	books, _, err := s.repo.GetCollection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load book collection: %w", err)
	}
	_, recipe, err := findRecipe(books, bookID, recipeID)
	if err != nil {
		return nil, err
	}

	out := recipe.DeepCopy()
	stripRecipeIDs(&out)
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recipe: %w", err)
	}
	return data, nil
}

func (s *service) ExportBook(ctx context.Context, bookID string) ([]byte, error) {
	books, _, err := s.repo.GetCollection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load book collection: %w", err)
	}
	book, err := findBook(books, bookID)
	if err != nil {
		return nil, err
	}

	out := *book
	out.ID = ""
	out.Recipes = make([]domain.Recipe, len(book.Recipes))
	for i := range book.Recipes {
		out.Recipes[i] = book.Recipes[i].DeepCopy()
		stripRecipeIDs(&out.Recipes[i])
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal book: %w", err)
	}
	return data, nil
}

func (s *service) ImportRecipe(ctx context.Context, bookID string, payload []byte) (*domain.Recipe, error) {
	if err := s.schemas.ValidateBytes(payload, validation.RecipeImportSchema); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImportData, err)
	}

	var recipe domain.Recipe
	if err := json.Unmarshal(payload, &recipe); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImportData, err)
	}

	// Ids in the payload are never trusted; everything gets a fresh one.
	stripRecipeIDs(&recipe)

	err := s.mutate(ctx, func(books *[]domain.RecipeBook) error {
		book, err := findBook(*books, bookID)
		if err != nil {
			return err
		}
		recipe.Normalize(book.ID)
		book.Recipes = append(book.Recipes, recipe)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecipesImportedTotal.Inc()
	logger.FromContext(ctx).Info("Recipe imported",
		"book_id", bookID, "recipe_id", recipe.ID, "name", recipe.Name)
	return &recipe, nil
}

func (s *service) ImportBook(ctx context.Context, payload []byte) (*domain.RecipeBook, error) {
	if err := s.schemas.ValidateBytes(payload, validation.BookImportSchema); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImportData, err)
	}

	var book domain.RecipeBook
	if err := json.Unmarshal(payload, &book); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImportData, err)
	}

	book.ID = ""
	for i := range book.Recipes {
		stripRecipeIDs(&book.Recipes[i])
	}
	book.Normalize()

	err := s.mutate(ctx, func(books *[]domain.RecipeBook) error {
		*books = append(*books, book)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecipesImportedTotal.Add(float64(len(book.Recipes)))
	logger.FromContext(ctx).Info("Recipe book imported",
		"book_id", book.ID, "name", book.Name, "recipes", len(book.Recipes))
	return &book, nil
}
