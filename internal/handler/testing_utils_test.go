package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgelight/crucible/internal/availability"
	"github.com/forgelight/crucible/internal/cauldron"
	"github.com/forgelight/crucible/internal/crafting"
	"github.com/forgelight/crucible/internal/domain"
	"github.com/forgelight/crucible/internal/registry"
)

// stubCrafting implements crafting.Service with overridable function fields.
type stubCrafting struct {
	availabilityFn func(ctx context.Context, bookID, recipeID, actorID string) (*availability.Result, error)
	craftFn        func(ctx context.Context, req crafting.Request) (*crafting.Outcome, error)
	sweepFn        func(ctx context.Context) (int, error)
}

func (s *stubCrafting) Availability(ctx context.Context, bookID, recipeID, actorID string) (*availability.Result, error) {
	if s.availabilityFn == nil {
		return &availability.Result{}, nil
	}
	return s.availabilityFn(ctx, bookID, recipeID, actorID)
}

func (s *stubCrafting) Craft(ctx context.Context, req crafting.Request) (*crafting.Outcome, error) {
	if s.craftFn == nil {
		return &crafting.Outcome{}, nil
	}
	return s.craftFn(ctx, req)
}

func (s *stubCrafting) ProcessDelayed(ctx context.Context) (int, error) {
	if s.sweepFn == nil {
		return 0, nil
	}
	return s.sweepFn(ctx)
}

// stubCauldron implements cauldron.Service.
type stubCauldron struct {
	brewFn func(ctx context.Context, req cauldron.Request) (*cauldron.Result, error)
}

func (s *stubCauldron) Brew(ctx context.Context, req cauldron.Request) (*cauldron.Result, error) {
	if s.brewFn == nil {
		return &cauldron.Result{}, nil
	}
	return s.brewFn(ctx, req)
}

// stubClock implements clock.Service.
type stubClock struct {
	now       int64
	advanceFn func(ctx context.Context, worldTime int64) error
}

func (s *stubClock) Now(ctx context.Context) (int64, error) { return s.now, nil }

func (s *stubClock) Advance(ctx context.Context, worldTime int64) error {
	if s.advanceFn == nil {
		s.now = worldTime
		return nil
	}
	return s.advanceFn(ctx, worldTime)
}

// stubRegistry implements registry.Service with overridable function fields.
// Methods without an override return not-found so misrouted calls surface.
type stubRegistry struct {
	listBooksFn        func(ctx context.Context) ([]domain.RecipeBook, error)
	getBookFn          func(ctx context.Context, bookID string) (*domain.RecipeBook, error)
	createBookFn       func(ctx context.Context, name string) (*domain.RecipeBook, error)
	updateDefaultsFn   func(ctx context.Context, defaults registry.BookDefaults) error
	deleteBookFn       func(ctx context.Context, bookID string) error
	inspectBookFn      func(ctx context.Context, bookID string, isGM bool) (*domain.RecipeBook, error)
	inspectRecipeFn    func(ctx context.Context, bookID, recipeID string, isGM bool) (*domain.Recipe, error)
	getRecipeFn        func(ctx context.Context, bookID, recipeID string) (*domain.Recipe, error)
	createRecipeFn     func(ctx context.Context, bookID, name string) (*domain.Recipe, error)
	updateRecipeFn     func(ctx context.Context, recipe domain.Recipe) error
	deleteRecipeFn     func(ctx context.Context, bookID, recipeID string) error
	duplicateRecipeFn  func(ctx context.Context, bookID, recipeID string) (*domain.Recipe, error)
	addSlotFn          func(ctx context.Context, bookID, recipeID string, kind registry.SlotKind, name string) (*domain.Ingredient, error)
	addComponentFn     func(ctx context.Context, ref registry.SlotRef, spec registry.ComponentSpec) (*domain.Component, error)
	removeComponentFn  func(ctx context.Context, ref registry.SlotRef, componentID string) error
	setQuantityFn      func(ctx context.Context, ref registry.SlotRef, componentID string, quantity float64) error
	recipesByItemFn    func(ctx context.Context, itemName string) ([]registry.Match, error)
	exportRecipeFn     func(ctx context.Context, bookID, recipeID string) ([]byte, error)
	exportBookFn       func(ctx context.Context, bookID string) ([]byte, error)
	importRecipeFn     func(ctx context.Context, bookID string, payload []byte) (*domain.Recipe, error)
	importBookFn       func(ctx context.Context, payload []byte) (*domain.RecipeBook, error)
	confirmDiscoveryFn func(ctx context.Context, bookID, recipeID, userID string, isGM bool) error
}

func (s *stubRegistry) ListBooks(ctx context.Context) ([]domain.RecipeBook, error) {
	if s.listBooksFn == nil {
		return nil, nil
	}
	return s.listBooksFn(ctx)
}

func (s *stubRegistry) GetBook(ctx context.Context, bookID string) (*domain.RecipeBook, error) {
	if s.getBookFn == nil {
		return nil, domain.ErrBookNotFound
	}
	return s.getBookFn(ctx, bookID)
}

func (s *stubRegistry) CreateBook(ctx context.Context, name string) (*domain.RecipeBook, error) {
	if s.createBookFn == nil {
		book := domain.NewRecipeBook(name)
		return &book, nil
	}
	return s.createBookFn(ctx, name)
}

func (s *stubRegistry) UpdateBookDefaults(ctx context.Context, defaults registry.BookDefaults) error {
	if s.updateDefaultsFn == nil {
		return domain.ErrBookNotFound
	}
	return s.updateDefaultsFn(ctx, defaults)
}

func (s *stubRegistry) DeleteBook(ctx context.Context, bookID string) error {
	if s.deleteBookFn == nil {
		return domain.ErrBookNotFound
	}
	return s.deleteBookFn(ctx, bookID)
}

func (s *stubRegistry) InspectBook(ctx context.Context, bookID string, isGM bool) (*domain.RecipeBook, error) {
	if s.inspectBookFn == nil {
		return nil, domain.ErrBookNotFound
	}
	return s.inspectBookFn(ctx, bookID, isGM)
}

func (s *stubRegistry) InspectRecipe(ctx context.Context, bookID, recipeID string, isGM bool) (*domain.Recipe, error) {
	if s.inspectRecipeFn == nil {
		return nil, domain.ErrRecipeNotFound
	}
	return s.inspectRecipeFn(ctx, bookID, recipeID, isGM)
}

func (s *stubRegistry) GetRecipe(ctx context.Context, bookID, recipeID string) (*domain.Recipe, error) {
	if s.getRecipeFn == nil {
		return nil, domain.ErrRecipeNotFound
	}
	return s.getRecipeFn(ctx, bookID, recipeID)
}

func (s *stubRegistry) CreateRecipe(ctx context.Context, bookID, name string) (*domain.Recipe, error) {
	if s.createRecipeFn == nil {
		return nil, domain.ErrBookNotFound
	}
	return s.createRecipeFn(ctx, bookID, name)
}

func (s *stubRegistry) UpdateRecipe(ctx context.Context, recipe domain.Recipe) error {
	if s.updateRecipeFn == nil {
		return domain.ErrRecipeNotFound
	}
	return s.updateRecipeFn(ctx, recipe)
}

func (s *stubRegistry) DeleteRecipe(ctx context.Context, bookID, recipeID string) error {
	if s.deleteRecipeFn == nil {
		return domain.ErrRecipeNotFound
	}
	return s.deleteRecipeFn(ctx, bookID, recipeID)
}

func (s *stubRegistry) DuplicateRecipe(ctx context.Context, bookID, recipeID string) (*domain.Recipe, error) {
	if s.duplicateRecipeFn == nil {
		return nil, domain.ErrRecipeNotFound
	}
	return s.duplicateRecipeFn(ctx, bookID, recipeID)
}

func (s *stubRegistry) AddSlot(ctx context.Context, bookID, recipeID string, kind registry.SlotKind, name string) (*domain.Ingredient, error) {
	if s.addSlotFn == nil {
		return nil, domain.ErrRecipeNotFound
	}
	return s.addSlotFn(ctx, bookID, recipeID, kind, name)
}

func (s *stubRegistry) AddComponent(ctx context.Context, ref registry.SlotRef, spec registry.ComponentSpec) (*domain.Component, error) {
	if s.addComponentFn == nil {
		return nil, domain.ErrRecipeNotFound
	}
	return s.addComponentFn(ctx, ref, spec)
}

func (s *stubRegistry) RemoveComponent(ctx context.Context, ref registry.SlotRef, componentID string) error {
	if s.removeComponentFn == nil {
		return domain.ErrRecipeNotFound
	}
	return s.removeComponentFn(ctx, ref, componentID)
}

func (s *stubRegistry) SetComponentQuantity(ctx context.Context, ref registry.SlotRef, componentID string, quantity float64) error {
	if s.setQuantityFn == nil {
		return domain.ErrRecipeNotFound
	}
	return s.setQuantityFn(ctx, ref, componentID, quantity)
}

func (s *stubRegistry) Snapshot(ctx context.Context) ([]domain.RecipeBook, error) {
	return s.ListBooks(ctx)
}

func (s *stubRegistry) RecipesByItem(ctx context.Context, itemName string) ([]registry.Match, error) {
	if s.recipesByItemFn == nil {
		return nil, nil
	}
	return s.recipesByItemFn(ctx, itemName)
}

func (s *stubRegistry) ExportRecipe(ctx context.Context, bookID, recipeID string) ([]byte, error) {
	if s.exportRecipeFn == nil {
		return nil, domain.ErrRecipeNotFound
	}
	return s.exportRecipeFn(ctx, bookID, recipeID)
}

func (s *stubRegistry) ExportBook(ctx context.Context, bookID string) ([]byte, error) {
	if s.exportBookFn == nil {
		return nil, domain.ErrBookNotFound
	}
	return s.exportBookFn(ctx, bookID)
}

func (s *stubRegistry) ImportRecipe(ctx context.Context, bookID string, payload []byte) (*domain.Recipe, error) {
	if s.importRecipeFn == nil {
		return nil, domain.ErrInvalidImportData
	}
	return s.importRecipeFn(ctx, bookID, payload)
}

func (s *stubRegistry) ImportBook(ctx context.Context, payload []byte) (*domain.RecipeBook, error) {
	if s.importBookFn == nil {
		return nil, domain.ErrInvalidImportData
	}
	return s.importBookFn(ctx, payload)
}

func (s *stubRegistry) GrantDiscovery(ctx context.Context, bookID, recipeID, userID string) error {
	return nil
}

func (s *stubRegistry) ConfirmDiscovery(ctx context.Context, bookID, recipeID, userID string, isGM bool) error {
	if s.confirmDiscoveryFn == nil {
		return domain.ErrNoPermission
	}
	return s.confirmDiscoveryFn(ctx, bookID, recipeID, userID, isGM)
}

// doJSON marshals the body and runs the request through the router.
func doJSON(t *testing.T, router http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a recorded JSON response into out.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}
