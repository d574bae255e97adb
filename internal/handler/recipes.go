package handler

import (
	"io"
	"net/http"

	"github.com/forgelight/crucible/internal/domain"
	"github.com/forgelight/crucible/internal/logger"
)

// CreateRecipeRequest represents the request to create a recipe in a book
type CreateRecipeRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// GetRecipe returns one recipe by id, redacted for the viewer the same way
// GetBook is.
func (h *RegistryHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	bookID, ok := GetPathParam(r, w, "bookID")
	if !ok {
		return
	}
	recipeID, ok := GetPathParam(r, w, "recipeID")
	if !ok {
		return
	}

	recipe, err := h.registrySvc.InspectRecipe(r.Context(), bookID, recipeID, isGMRequest(r))
	if err != nil {
		respondServiceError(w, r, "Get recipe", err)
		return
	}
	respondJSON(w, http.StatusOK, recipe)
}

// CreateRecipe creates an empty recipe inheriting the book defaults
func (h *RegistryHandler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	bookID, ok := GetPathParam(r, w, "bookID")
	if !ok {
		return
	}

	var req CreateRecipeRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Create recipe"); err != nil {
		return
	}

	recipe, err := h.registrySvc.CreateRecipe(r.Context(), bookID, req.Name)
	if err != nil {
		respondServiceError(w, r, "Create recipe", err)
		return
	}

	log.Info("Recipe created", "book_id", bookID, "recipe_id", recipe.ID, "name", recipe.Name)
	respondJSON(w, http.StatusCreated, recipe)
}

// UpdateRecipe replaces the stored recipe with the request body. The path ids
// win over whatever the body carries.
func (h *RegistryHandler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	bookID, ok := GetPathParam(r, w, "bookID")
	if !ok {
		return
	}
	recipeID, ok := GetPathParam(r, w, "recipeID")
	if !ok {
		return
	}

	var recipe domain.Recipe
	if err := DecodeAndValidateRequest(r, w, &recipe, "Update recipe"); err != nil {
		return
	}
	recipe.BookID = bookID
	recipe.ID = recipeID

	if err := h.registrySvc.UpdateRecipe(r.Context(), recipe); err != nil {
		respondServiceError(w, r, "Update recipe", err)
		return
	}

	log.Info("Recipe updated", "book_id", bookID, "recipe_id", recipeID)
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgRecipeUpdatedSuccess})
}

// DeleteRecipe removes a recipe from its book
func (h *RegistryHandler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	bookID, ok := GetPathParam(r, w, "bookID")
	if !ok {
		return
	}
	recipeID, ok := GetPathParam(r, w, "recipeID")
	if !ok {
		return
	}

	if err := h.registrySvc.DeleteRecipe(r.Context(), bookID, recipeID); err != nil {
		respondServiceError(w, r, "Delete recipe", err)
		return
	}

	log.Info("Recipe deleted", "book_id", bookID, "recipe_id", recipeID)
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgRecipeDeletedSuccess})
}

// DuplicateRecipe deep-copies a recipe with fresh ids
func (h *RegistryHandler) DuplicateRecipe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	bookID, ok := GetPathParam(r, w, "bookID")
	if !ok {
		return
	}
	recipeID, ok := GetPathParam(r, w, "recipeID")
	if !ok {
		return
	}

	duplicate, err := h.registrySvc.DuplicateRecipe(r.Context(), bookID, recipeID)
	if err != nil {
		respondServiceError(w, r, "Duplicate recipe", err)
		return
	}

	log.Info("Recipe duplicated", "book_id", bookID, "source_id", recipeID, "copy_id", duplicate.ID)
	respondJSON(w, http.StatusCreated, duplicate)
}

// ExportRecipe returns the portable JSON export of one recipe
func (h *RegistryHandler) ExportRecipe(w http.ResponseWriter, r *http.Request) {
	bookID, ok := GetPathParam(r, w, "bookID")
	if !ok {
		return
	}
	recipeID, ok := GetPathParam(r, w, "recipeID")
	if !ok {
		return
	}

	payload, err := h.registrySvc.ExportRecipe(r.Context(), bookID, recipeID)
	if err != nil {
		respondServiceError(w, r, "Export recipe", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// ExportBook returns the portable JSON export of a whole book
func (h *RegistryHandler) ExportBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := GetPathParam(r, w, "bookID")
	if !ok {
		return
	}

	payload, err := h.registrySvc.ExportBook(r.Context(), bookID)
	if err != nil {
		respondServiceError(w, r, "Export book", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// ImportRecipe validates an exported recipe payload and adds it to the book
func (h *RegistryHandler) ImportRecipe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	bookID, ok := GetPathParam(r, w, "bookID")
	if !ok {
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("Failed to read import payload", "error", err)
		http.Error(w, ErrMsgInvalidRequest, http.StatusBadRequest)
		return
	}

	recipe, err := h.registrySvc.ImportRecipe(r.Context(), bookID, payload)
	if err != nil {
		respondServiceError(w, r, "Import recipe", err)
		return
	}

	log.Info("Recipe imported", "book_id", bookID, "recipe_id", recipe.ID)
	respondJSON(w, http.StatusCreated, recipe)
}

// ImportBook validates an exported book payload and adds it to the collection
func (h *RegistryHandler) ImportBook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("Failed to read import payload", "error", err)
		http.Error(w, ErrMsgInvalidRequest, http.StatusBadRequest)
		return
	}

	book, err := h.registrySvc.ImportBook(r.Context(), payload)
	if err != nil {
		respondServiceError(w, r, "Import book", err)
		return
	}

	log.Info("Book imported", "book_id", book.ID, "recipes", len(book.Recipes))
	respondJSON(w, http.StatusCreated, book)
}

// RecipesByItem lists recipes naming the item in an ingredient or product slot
func (h *RegistryHandler) RecipesByItem(w http.ResponseWriter, r *http.Request) {
	itemName, ok := GetQueryParam(r, w, "item")
	if !ok {
		return
	}

	matches, err := h.registrySvc.RecipesByItem(r.Context(), itemName)
	if err != nil {
		respondServiceError(w, r, "Recipes by item", err)
		return
	}
	respondJSON(w, http.StatusOK, DataResponse{Data: matches})
}
