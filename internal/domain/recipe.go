package domain

import (
	"github.com/google/uuid"
)

// Visibility controls whether players may inspect a recipe's ingredient or
// product lists. Zero means inherit from the owning book (whose own zero
// means GM-only).
type Visibility int

const (
	VisibilityInherit Visibility = 0
	VisibilityAllow   Visibility = 1
	VisibilityDeny    Visibility = 2
)

// Permission is a per-user ownership grant with the same three-state
// semantics as Visibility.
type Permission int

const (
	PermissionDefault Permission = 0
	PermissionAllow   Permission = 1
	PermissionDeny    Permission = 2
)

// DefaultRecipeImg is used when a recipe has no image set.
const DefaultRecipeImg = "icons/sundries/documents/document-bound-white-tan.webp"

// Recipe describes how a set of ingredient slots is transformed into one of
// several product slots. A recipe references its owning book by id only.
type Recipe struct {
	ID          string `json:"id"`
	BookID      string `json:"book_id,omitempty"`
	Name        string `json:"name"`
	Img         string `json:"img,omitempty"`
	Description string `json:"description,omitempty"`
	Sound       string `json:"sound,omitempty"`

	// TimeMinutes, when set, delays product delivery by TimeMinutes*60
	// world-seconds instead of delivering immediately.
	TimeMinutes *int `json:"time,omitempty"`

	// MacroHook is an optional user-authored validation script bound to the
	// recipe, executed by the hook runner before production.
	MacroHook string `json:"macro_hook,omitempty"`

	IngredientsVisibility Visibility            `json:"ingredients_visibility"`
	ProductsVisibility    Visibility            `json:"products_visibility"`
	Ownership             map[string]Permission `json:"ownership,omitempty"`

	Tools       []string     `json:"tools,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
	Products    []Product    `json:"products"`
}

// NewRecipe creates an empty recipe bound to a book.
func NewRecipe(bookID, name string) Recipe {
	return Recipe{
		ID:     uuid.NewString(),
		BookID: bookID,
		Name:   name,
		Img:    DefaultRecipeImg,
	}
}

// ToolList is the union of the book's and the recipe's tool requirements.
func (r *Recipe) ToolList(book *RecipeBook) []string {
	tools := make([]string, 0, len(book.Tools)+len(r.Tools))
	tools = append(tools, book.Tools...)
	tools = append(tools, r.Tools...)
	return tools
}

// CraftingSound resolves recipe sound, then book sound, then the fallback.
func (r *Recipe) CraftingSound(book *RecipeBook, fallback string) string {
	if r.Sound != "" {
		return r.Sound
	}
	if book.Sound != "" {
		return book.Sound
	}
	return fallback
}

// IsOwner resolves ownership through the three-level fallback: explicit
// per-recipe grant, inherited book grant, GM-only default. GMs always own.
func (r *Recipe) IsOwner(book *RecipeBook, userID string, isGM bool) bool {
	if isGM {
		return true
	}
	switch r.Ownership[userID] {
	case PermissionAllow:
		return true
	case PermissionDeny:
		return false
	default:
		return book.IsOwner(userID, isGM)
	}
}

// CanInspectIngredients resolves ingredient visibility with book fallback.
func (r *Recipe) CanInspectIngredients(book *RecipeBook, isGM bool) bool {
	if isGM {
		return true
	}
	if r.IngredientsVisibility == VisibilityInherit {
		return book.IngredientsVisibility == VisibilityAllow
	}
	return r.IngredientsVisibility == VisibilityAllow
}

// CanInspectProducts resolves product visibility with book fallback.
func (r *Recipe) CanInspectProducts(book *RecipeBook, isGM bool) bool {
	if isGM {
		return true
	}
	if r.ProductsVisibility == VisibilityInherit {
		return book.ProductsVisibility == VisibilityAllow
	}
	return r.ProductsVisibility == VisibilityAllow
}

// Ingredient returns the ingredient slot with the given id, or nil.
func (r *Recipe) Ingredient(id string) *Ingredient {
	for idx := range r.Ingredients {
		if r.Ingredients[idx].ID == id {
			return &r.Ingredients[idx]
		}
	}
	return nil
}

// Product returns the product slot with the given id, or nil.
func (r *Recipe) Product(id string) *Product {
	for idx := range r.Products {
		if r.Products[idx].ID == id {
			return &r.Products[idx]
		}
	}
	return nil
}

// HasComponent reports whether any ingredient slot names the item.
func (r *Recipe) HasComponent(name string) bool {
	for idx := range r.Ingredients {
		if r.Ingredients[idx].HasComponent(name) {
			return true
		}
	}
	return false
}

// HasProduct reports whether any product slot names the item.
func (r *Recipe) HasProduct(name string) bool {
	for idx := range r.Products {
		if r.Products[idx].HasComponent(name) {
			return true
		}
	}
	return false
}

// RemoveEmptySlots drops ingredient and product slots with no components.
func (r *Recipe) RemoveEmptySlots() {
	ingredients := r.Ingredients[:0]
	for _, ing := range r.Ingredients {
		if len(ing.Components) > 0 {
			ingredients = append(ingredients, ing)
		}
	}
	r.Ingredients = ingredients

	products := r.Products[:0]
	for _, p := range r.Products {
		if len(p.Components) > 0 {
			products = append(products, p)
		}
	}
	r.Products = products
}

// Normalize backfills missing ids and strategies on loaded or imported data
// and enforces the no-empty-slot invariant.
func (r *Recipe) Normalize(bookID string) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.BookID = bookID
	if r.Img == "" {
		r.Img = DefaultRecipeImg
	}
	normalizeSlots(r.Ingredients)
	normalizeSlots(r.Products)
	r.RemoveEmptySlots()
}

func normalizeSlots(slots []Ingredient) {
	for i := range slots {
		if slots[i].ID == "" {
			slots[i].ID = uuid.NewString()
		}
		for j := range slots[i].Components {
			c := &slots[i].Components[j]
			if c.ID == "" {
				c.ID = uuid.NewString()
			}
			if c.Strategy == "" {
				c.Strategy = c.ResolveStrategy()
			}
		}
	}
}

// DeepCopy returns a duplicate of the recipe with fresh ids throughout.
func (r *Recipe) DeepCopy() Recipe {
	dup := *r
	dup.ID = uuid.NewString()
	dup.Ownership = make(map[string]Permission, len(r.Ownership))
	for k, v := range r.Ownership {
		dup.Ownership[k] = v
	}
	dup.Tools = append([]string(nil), r.Tools...)
	dup.Ingredients = copySlots(r.Ingredients)
	dup.Products = copySlots(r.Products)
	return dup
}

func copySlots(slots []Ingredient) []Ingredient {
	out := make([]Ingredient, len(slots))
	for i, slot := range slots {
		out[i] = slot
		out[i].ID = uuid.NewString()
		out[i].Components = make([]Component, len(slot.Components))
		for j, c := range slot.Components {
			out[i].Components[j] = c
			out[i].Components[j].ID = uuid.NewString()
			out[i].Components[j].Tags = append([]string(nil), c.Tags...)
		}
	}
	return out
}
