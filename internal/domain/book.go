package domain

import "github.com/google/uuid"

// DefaultBookImg is used when a recipe book has no image set.
const DefaultBookImg = "icons/sundries/books/book-worn-brown-grey.webp"

// RecipeBook is the top-level persisted unit: an ordered collection of
// recipes plus defaults (sound, tools, visibility, ownership) that recipes
// inherit when their own setting is unset.
type RecipeBook struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Img   string   `json:"img,omitempty"`
	Sound string   `json:"sound,omitempty"`
	Tools []string `json:"tools,omitempty"`

	IngredientsVisibility Visibility            `json:"ingredients_visibility"`
	ProductsVisibility    Visibility            `json:"products_visibility"`
	Ownership             map[string]Permission `json:"ownership,omitempty"`

	Recipes []Recipe `json:"recipes"`
}

// NewRecipeBook creates an empty book with a fresh id.
func NewRecipeBook(name string) RecipeBook {
	return RecipeBook{
		ID:   uuid.NewString(),
		Name: name,
		Img:  DefaultBookImg,
	}
}

// IsOwner reports whether the user owns the book. The book-level default is
// GM-only: without an explicit Allow grant, only GMs pass.
func (b *RecipeBook) IsOwner(userID string, isGM bool) bool {
	if isGM {
		return true
	}
	return b.Ownership[userID] == PermissionAllow
}

// Recipe returns the recipe with the given id, or nil.
func (b *RecipeBook) Recipe(id string) *Recipe {
	for idx := range b.Recipes {
		if b.Recipes[idx].ID == id {
			return &b.Recipes[idx]
		}
	}
	return nil
}

// RemoveRecipe deletes the recipe with the given id and reports whether it
// was present.
func (b *RecipeBook) RemoveRecipe(id string) bool {
	for idx := range b.Recipes {
		if b.Recipes[idx].ID == id {
			b.Recipes = append(b.Recipes[:idx], b.Recipes[idx+1:]...)
			return true
		}
	}
	return false
}

// Normalize backfills ids on loaded or imported data and normalizes every
// contained recipe.
func (b *RecipeBook) Normalize() {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Img == "" {
		b.Img = DefaultBookImg
	}
	for idx := range b.Recipes {
		b.Recipes[idx].Normalize(b.ID)
	}
}
