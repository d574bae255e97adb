package handler

import (
	"net/http"

	"github.com/forgelight/crucible/internal/domain"
	"github.com/forgelight/crucible/internal/logger"
	"github.com/forgelight/crucible/internal/registry"
)

// CreateBookRequest represents the request to create a recipe book
type CreateBookRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// UpdateBookRequest carries the book-level defaults. The book id comes from
// the path, not the body.
type UpdateBookRequest struct {
	Name                  string                       `json:"name" validate:"required,max=200"`
	Img                   string                       `json:"img,omitempty"`
	Sound                 string                       `json:"sound,omitempty"`
	Tools                 []string                     `json:"tools,omitempty"`
	IngredientsVisibility domain.Visibility            `json:"ingredients_visibility"`
	ProductsVisibility    domain.Visibility            `json:"products_visibility"`
	Ownership             map[string]domain.Permission `json:"ownership,omitempty"`
}

// RegistryHandler handles recipe-book and recipe HTTP requests
type RegistryHandler struct {
	registrySvc registry.Service
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(registrySvc registry.Service) *RegistryHandler {
	return &RegistryHandler{
		registrySvc: registrySvc,
	}
}

// ListBooks returns every book in the collection
func (h *RegistryHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.registrySvc.ListBooks(r.Context())
	if err != nil {
		respondServiceError(w, r, "List books", err)
		return
	}
	respondJSON(w, http.StatusOK, DataResponse{Data: books})
}

// GetBook returns one book by id, with slot lists the viewer may not
// inspect removed. GM callers pass is_gm=true and see everything.
func (h *RegistryHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := GetPathParam(r, w, "bookID")
	if !ok {
		return
	}

	book, err := h.registrySvc.InspectBook(r.Context(), bookID, isGMRequest(r))
	if err != nil {
		respondServiceError(w, r, "Get book", err)
		return
	}
	respondJSON(w, http.StatusOK, book)
}

// isGMRequest reports whether the host marked the request as GM-issued.
func isGMRequest(r *http.Request) bool {
	return r.URL.Query().Get("is_gm") == "true"
}

// CreateBook creates an empty recipe book
func (h *RegistryHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req CreateBookRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Create book"); err != nil {
		return
	}

	book, err := h.registrySvc.CreateBook(r.Context(), req.Name)
	if err != nil {
		respondServiceError(w, r, "Create book", err)
		return
	}

	log.Info("Book created", "book_id", book.ID, "name", book.Name)
	respondJSON(w, http.StatusCreated, book)
}

// UpdateBook replaces the book-level defaults. Recipes are untouched.
func (h *RegistryHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	bookID, ok := GetPathParam(r, w, "bookID")
	if !ok {
		return
	}

	var req UpdateBookRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Update book"); err != nil {
		return
	}

	defaults := registry.BookDefaults{
		ID:                    bookID,
		Name:                  req.Name,
		Img:                   req.Img,
		Sound:                 req.Sound,
		Tools:                 req.Tools,
		IngredientsVisibility: req.IngredientsVisibility,
		ProductsVisibility:    req.ProductsVisibility,
		Ownership:             req.Ownership,
	}

	if err := h.registrySvc.UpdateBookDefaults(r.Context(), defaults); err != nil {
		respondServiceError(w, r, "Update book", err)
		return
	}

	log.Info("Book updated", "book_id", bookID)
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgBookUpdatedSuccess})
}

// DeleteBook removes a book and all its recipes
func (h *RegistryHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	bookID, ok := GetPathParam(r, w, "bookID")
	if !ok {
		return
	}

	if err := h.registrySvc.DeleteBook(r.Context(), bookID); err != nil {
		respondServiceError(w, r, "Delete book", err)
		return
	}

	log.Info("Book deleted", "book_id", bookID)
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgBookDeletedSuccess})
}
