package registry

import (
	"context"

	"github.com/forgelight/crucible/internal/domain"
)

// InspectBook returns the book with every recipe redacted for the viewer:
// ingredient and product lists the visibility resolution denies are removed.
func (s *service) InspectBook(ctx context.Context, bookID string, isGM bool) (*domain.RecipeBook, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	recipes := make([]domain.Recipe, len(book.Recipes))
	copy(recipes, book.Recipes)
	book.Recipes = recipes
	for idx := range book.Recipes {
		redactRecipe(&book.Recipes[idx], book, isGM)
	}
	return book, nil
}

// InspectRecipe returns one recipe redacted for the viewer.
func (s *service) InspectRecipe(ctx context.Context, bookID, recipeID string, isGM bool) (*domain.Recipe, error) {
	books, _, err := s.repo.GetCollection(ctx)
	if err != nil {
		return nil, err
	}
	book, recipe, err := findRecipe(books, bookID, recipeID)
	if err != nil {
		return nil, err
	}

	out := *recipe
	redactRecipe(&out, book, isGM)
	return &out, nil
}

// redactRecipe hides the slot lists the viewer may not inspect. Recipe-level
// visibility wins; Inherit falls back to the book, whose own Inherit means
// GM-only.
func redactRecipe(recipe *domain.Recipe, book *domain.RecipeBook, isGM bool) {
	if !recipe.CanInspectIngredients(book, isGM) {
		recipe.Ingredients = nil
	}
	if !recipe.CanInspectProducts(book, isGM) {
		recipe.Products = nil
	}
}
