// Package registry owns the recipe-book collection: CRUD, slot mutations,
// lookups, export/import and discovery grants. Every mutation rewrites the
// whole collection under optimistic concurrency, matching the host's
// world-scoped persistence model.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgelight/crucible/internal/domain"
	"github.com/forgelight/crucible/internal/logger"
	"github.com/forgelight/crucible/internal/repository"
	"github.com/forgelight/crucible/internal/resolver"
	"github.com/forgelight/crucible/internal/validation"
)

// saveRetries bounds how often a mutation is replayed after losing a
// version race before the conflict is surfaced to the caller.
const saveRetries = 3

// SlotKind distinguishes ingredient from product slots in mutation requests.
type SlotKind string

const (
	SlotIngredient SlotKind = "ingredient"
	SlotProduct    SlotKind = "product"
)

// SlotRef addresses one slot of one recipe.
type SlotRef struct {
	BookID   string
	RecipeID string
	Kind     SlotKind
	SlotID   string
}

// ComponentSpec describes a component to add to a slot, typically built
// from an item the user dropped onto the slot.
type ComponentSpec struct {
	Ref           string   `json:"ref"`
	Name          string   `json:"name"`
	Quantity      float64  `json:"quantity" validate:"gte=0"`
	Tags          []string `json:"tags,omitempty"`
	AttributePath string   `json:"attribute_path,omitempty"`
}

// BookDefaults carries the book-level fields recipes inherit. Updating them
// leaves the book's recipes untouched.
type BookDefaults struct {
	ID                    string                       `json:"id" validate:"required"`
	Name                  string                       `json:"name" validate:"required"`
	Img                   string                       `json:"img,omitempty"`
	Sound                 string                       `json:"sound,omitempty"`
	Tools                 []string                     `json:"tools,omitempty"`
	IngredientsVisibility domain.Visibility            `json:"ingredients_visibility"`
	ProductsVisibility    domain.Visibility            `json:"products_visibility"`
	Ownership             map[string]domain.Permission `json:"ownership,omitempty"`
}

// Match is one hit of a recipes-by-item lookup.
type Match struct {
	BookID     string `json:"book_id"`
	BookName   string `json:"book_name"`
	RecipeID   string `json:"recipe_id"`
	RecipeName string `json:"recipe_name"`
	// AsProduct is true when the item matched a product slot rather than
	// an ingredient slot.
	AsProduct bool `json:"as_product"`
}

// Service manages the recipe-book collection
type Service interface {
	ListBooks(ctx context.Context) ([]domain.RecipeBook, error)
	GetBook(ctx context.Context, bookID string) (*domain.RecipeBook, error)
	CreateBook(ctx context.Context, name string) (*domain.RecipeBook, error)
	UpdateBookDefaults(ctx context.Context, defaults BookDefaults) error
	DeleteBook(ctx context.Context, bookID string) error

	// InspectBook and InspectRecipe are the player-facing reads: slot lists
	// the viewer's visibility resolution denies are removed.
	InspectBook(ctx context.Context, bookID string, isGM bool) (*domain.RecipeBook, error)
	InspectRecipe(ctx context.Context, bookID, recipeID string, isGM bool) (*domain.Recipe, error)

	GetRecipe(ctx context.Context, bookID, recipeID string) (*domain.Recipe, error)
	CreateRecipe(ctx context.Context, bookID, name string) (*domain.Recipe, error)
	UpdateRecipe(ctx context.Context, recipe domain.Recipe) error
	DeleteRecipe(ctx context.Context, bookID, recipeID string) error
	// DuplicateRecipe deep-copies a recipe with fresh ids throughout.
	DuplicateRecipe(ctx context.Context, bookID, recipeID string) (*domain.Recipe, error)

	AddSlot(ctx context.Context, bookID, recipeID string, kind SlotKind, name string) (*domain.Ingredient, error)
	AddComponent(ctx context.Context, ref SlotRef, spec ComponentSpec) (*domain.Component, error)
	RemoveComponent(ctx context.Context, ref SlotRef, componentID string) error
	SetComponentQuantity(ctx context.Context, ref SlotRef, componentID string, quantity float64) error

	// Snapshot returns the current collection for read-only scans.
	Snapshot(ctx context.Context) ([]domain.RecipeBook, error)
	// RecipesByItem finds recipes naming the item in an ingredient or
	// product slot.
	RecipesByItem(ctx context.Context, itemName string) ([]Match, error)

	ExportRecipe(ctx context.Context, bookID, recipeID string) ([]byte, error)
	ExportBook(ctx context.Context, bookID string) ([]byte, error)
	ImportRecipe(ctx context.Context, bookID string, payload []byte) (*domain.Recipe, error)
	ImportBook(ctx context.Context, payload []byte) (*domain.RecipeBook, error)

	// GrantDiscovery marks the recipe owned by the user.
	GrantDiscovery(ctx context.Context, bookID, recipeID, userID string) error
	// ConfirmDiscovery is the GM-gated variant used by the confirm flow.
	ConfirmDiscovery(ctx context.Context, bookID, recipeID, userID string, isGM bool) error
}

type service struct {
	repo    repository.Books
	items   resolver.Service
	schemas validation.SchemaValidator
}

// NewService creates a new registry service
func NewService(repo repository.Books, items resolver.Service, schemas validation.SchemaValidator) Service {
	return &service{repo: repo, items: items, schemas: schemas}
}

// mutate loads the collection, applies fn and saves it back, replaying on
// version conflicts up to saveRetries times.
func (s *service) mutate(ctx context.Context, fn func(books *[]domain.RecipeBook) error) error {
	for attempt := 0; attempt < saveRetries; attempt++ {
		books, version, err := s.repo.GetCollection(ctx)
		if err != nil {
			return fmt.Errorf("failed to load book collection: %w", err)
		}

		if err := fn(&books); err != nil {
			return err
		}

		if _, err := s.repo.SaveCollection(ctx, books, version); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				logger.FromContext(ctx).Debug("Book collection version conflict, retrying",
					"attempt", attempt+1)
				continue
			}
			return fmt.Errorf("failed to save book collection: %w", err)
		}
		return nil
	}
	return domain.ErrVersionConflict
}

func findBook(books []domain.RecipeBook, bookID string) (*domain.RecipeBook, error) {
	for idx := range books {
		if books[idx].ID == bookID {
			return &books[idx], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrBookNotFound, bookID)
}

func findRecipe(books []domain.RecipeBook, bookID, recipeID string) (*domain.RecipeBook, *domain.Recipe, error) {
	book, err := findBook(books, bookID)
	if err != nil {
		return nil, nil, err
	}
	recipe := book.Recipe(recipeID)
	if recipe == nil {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrRecipeNotFound, recipeID)
	}
	return book, recipe, nil
}

func (s *service) ListBooks(ctx context.Context) ([]domain.RecipeBook, error) {
	books, _, err := s.repo.GetCollection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load book collection: %w", err)
	}
	return books, nil
}

func (s *service) GetBook(ctx context.Context, bookID string) (*domain.RecipeBook, error) {
	books, _, err := s.repo.GetCollection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load book collection: %w", err)
	}
	book, err := findBook(books, bookID)
	if err != nil {
		return nil, err
	}
	out := *book
	return &out, nil
}

func (s *service) CreateBook(ctx context.Context, name string) (*domain.RecipeBook, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: book name is required", domain.ErrInvalidInput)
	}

	book := domain.NewRecipeBook(name)
	err := s.mutate(ctx, func(books *[]domain.RecipeBook) error {
		*books = append(*books, book)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Recipe book created", "book_id", book.ID, "name", name)
	return &book, nil
}

func (s *service) UpdateBookDefaults(ctx context.Context, defaults BookDefaults) error {
	return s.mutate(ctx, func(books *[]domain.RecipeBook) error {
		book, err := findBook(*books, defaults.ID)
		if err != nil {
			return err
		}
		book.Name = defaults.Name
		book.Img = defaults.Img
		book.Sound = defaults.Sound
		book.Tools = defaults.Tools
		book.IngredientsVisibility = defaults.IngredientsVisibility
		book.ProductsVisibility = defaults.ProductsVisibility
		book.Ownership = defaults.Ownership
		return nil
	})
}

func (s *service) DeleteBook(ctx context.Context, bookID string) error {
	err := s.mutate(ctx, func(books *[]domain.RecipeBook) error {
		for idx := range *books {
			if (*books)[idx].ID == bookID {
				*books = append((*books)[:idx], (*books)[idx+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", domain.ErrBookNotFound, bookID)
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("Recipe book deleted", "book_id", bookID)
	return nil
}

func (s *service) GetRecipe(ctx context.Context, bookID, recipeID string) (*domain.Recipe, error) {
	books, _, err := s.repo.GetCollection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load book collection: %w", err)
	}
	_, recipe, err := findRecipe(books, bookID, recipeID)
	if err != nil {
		return nil, err
	}
	out := *recipe
	return &out, nil
}

func (s *service) CreateRecipe(ctx context.Context, bookID, name string) (*domain.Recipe, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: recipe name is required", domain.ErrInvalidInput)
	}

	var recipe domain.Recipe
	err := s.mutate(ctx, func(books *[]domain.RecipeBook) error {
		book, err := findBook(*books, bookID)
		if err != nil {
			return err
		}
		recipe = domain.NewRecipe(bookID, name)
		book.Recipes = append(book.Recipes, recipe)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Recipe created",
		"book_id", bookID, "recipe_id", recipe.ID, "name", name)
	return &recipe, nil
}

func (s *service) UpdateRecipe(ctx context.Context, recipe domain.Recipe) error {
	return s.mutate(ctx, func(books *[]domain.RecipeBook) error {
		book, existing, err := findRecipe(*books, recipe.BookID, recipe.ID)
		if err != nil {
			return err
		}
		recipe.Normalize(book.ID)
		*existing = recipe
		return nil
	})
}

func (s *service) DeleteRecipe(ctx context.Context, bookID, recipeID string) error {
	err := s.mutate(ctx, func(books *[]domain.RecipeBook) error {
		book, err := findBook(*books, bookID)
		if err != nil {
			return err
		}
		if !book.RemoveRecipe(recipeID) {
			return fmt.Errorf("%w: %s", domain.ErrRecipeNotFound, recipeID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("Recipe deleted", "book_id", bookID, "recipe_id", recipeID)
	return nil
}

func (s *service) DuplicateRecipe(ctx context.Context, bookID, recipeID string) (*domain.Recipe, error) {
	var dup domain.Recipe
	err := s.mutate(ctx, func(books *[]domain.RecipeBook) error {
		book, recipe, err := findRecipe(*books, bookID, recipeID)
		if err != nil {
			return err
		}
		dup = recipe.DeepCopy()
		dup.Name = recipe.Name + " (copy)"
		book.Recipes = append(book.Recipes, dup)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dup, nil
}
