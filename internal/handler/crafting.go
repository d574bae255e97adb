package handler

import (
	"net/http"

	"github.com/forgelight/crucible/internal/crafting"
	"github.com/forgelight/crucible/internal/logger"
)

// CraftingHandler handles availability and craft HTTP requests
type CraftingHandler struct {
	craftingSvc crafting.Service
}

// NewCraftingHandler creates a new crafting handler
func NewCraftingHandler(craftingSvc crafting.Service) *CraftingHandler {
	return &CraftingHandler{
		craftingSvc: craftingSvc,
	}
}

// Availability computes the read-only craftability report for one recipe
// against one actor
func (h *CraftingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	bookID, ok := GetQueryParam(r, w, "book_id")
	if !ok {
		return
	}
	recipeID, ok := GetQueryParam(r, w, "recipe_id")
	if !ok {
		return
	}
	actorID, ok := GetQueryParam(r, w, "actor_id")
	if !ok {
		return
	}

	result, err := h.craftingSvc.Availability(r.Context(), bookID, recipeID, actorID)
	if err != nil {
		respondServiceError(w, r, "Availability", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Craft runs the full crafting transaction
func (h *CraftingHandler) Craft(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req crafting.Request
	if err := DecodeAndValidateRequest(r, w, &req, "Craft"); err != nil {
		return
	}

	log.Info("Craft request received",
		"book_id", req.BookID, "recipe_id", req.RecipeID, "actor_id", req.ActorID)

	outcome, err := h.craftingSvc.Craft(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, "Craft", err)
		return
	}

	log.Info("Craft successful",
		"recipe_id", outcome.RecipeID,
		"delayed", outcome.Delayed,
		"consumed", len(outcome.Consumed))

	respondJSON(w, http.StatusOK, outcome)
}
