package handler

import (
	"net/http"
	"strings"

	"github.com/forgelight/crucible/internal/logger"
	"github.com/forgelight/crucible/internal/registry"
)

// AddSlotRequest represents the request to add a slot to a recipe
type AddSlotRequest struct {
	Kind string `json:"kind" validate:"required,slotkind"`
	Name string `json:"name" validate:"required,max=200"`
}

// AddComponentRequest represents the request to add a component to a slot,
// typically built from an item dropped onto the slot.
type AddComponentRequest struct {
	Ref           string   `json:"ref"`
	Name          string   `json:"name" validate:"required,max=200"`
	Quantity      float64  `json:"quantity" validate:"gte=0"`
	Tags          []string `json:"tags,omitempty"`
	AttributePath string   `json:"attribute_path,omitempty"`
}

// SetQuantityRequest represents the request to change a component quantity
type SetQuantityRequest struct {
	Quantity float64 `json:"quantity" validate:"gte=0"`
}

// slotRefFromPath builds the slot address from the request path. The kind
// segment has already been validated by the router pattern or the handler.
func slotRefFromPath(r *http.Request, w http.ResponseWriter) (registry.SlotRef, bool) {
	bookID, ok := GetPathParam(r, w, "bookID")
	if !ok {
		return registry.SlotRef{}, false
	}
	recipeID, ok := GetPathParam(r, w, "recipeID")
	if !ok {
		return registry.SlotRef{}, false
	}
	kind, ok := GetPathParam(r, w, "kind")
	if !ok {
		return registry.SlotRef{}, false
	}
	if !ValidSlotKinds[strings.ToLower(kind)] {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
		return registry.SlotRef{}, false
	}
	slotID, ok := GetPathParam(r, w, "slotID")
	if !ok {
		return registry.SlotRef{}, false
	}
	return registry.SlotRef{
		BookID:   bookID,
		RecipeID: recipeID,
		Kind:     registry.SlotKind(strings.ToLower(kind)),
		SlotID:   slotID,
	}, true
}

// AddSlot appends an empty ingredient or product slot to a recipe
func (h *RegistryHandler) AddSlot(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	bookID, ok := GetPathParam(r, w, "bookID")
	if !ok {
		return
	}
	recipeID, ok := GetPathParam(r, w, "recipeID")
	if !ok {
		return
	}

	var req AddSlotRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Add slot"); err != nil {
		return
	}

	slot, err := h.registrySvc.AddSlot(r.Context(), bookID, recipeID,
		registry.SlotKind(strings.ToLower(req.Kind)), req.Name)
	if err != nil {
		respondServiceError(w, r, "Add slot", err)
		return
	}

	log.Info("Slot added", "book_id", bookID, "recipe_id", recipeID, "slot_id", slot.ID, "kind", req.Kind)
	respondJSON(w, http.StatusCreated, slot)
}

// AddComponent adds a component to a slot
func (h *RegistryHandler) AddComponent(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	ref, ok := slotRefFromPath(r, w)
	if !ok {
		return
	}

	var req AddComponentRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Add component"); err != nil {
		return
	}

	component, err := h.registrySvc.AddComponent(r.Context(), ref, registry.ComponentSpec{
		Ref:           req.Ref,
		Name:          req.Name,
		Quantity:      req.Quantity,
		Tags:          req.Tags,
		AttributePath: req.AttributePath,
	})
	if err != nil {
		respondServiceError(w, r, "Add component", err)
		return
	}

	log.Info("Component added",
		"book_id", ref.BookID, "recipe_id", ref.RecipeID,
		"slot_id", ref.SlotID, "component_id", component.ID)
	respondJSON(w, http.StatusCreated, component)
}

// RemoveComponent deletes a component from a slot
func (h *RegistryHandler) RemoveComponent(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	ref, ok := slotRefFromPath(r, w)
	if !ok {
		return
	}
	componentID, ok := GetPathParam(r, w, "componentID")
	if !ok {
		return
	}

	if err := h.registrySvc.RemoveComponent(r.Context(), ref, componentID); err != nil {
		respondServiceError(w, r, "Remove component", err)
		return
	}

	log.Info("Component removed",
		"book_id", ref.BookID, "recipe_id", ref.RecipeID,
		"slot_id", ref.SlotID, "component_id", componentID)
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgComponentRemoved})
}

// SetComponentQuantity changes a component's required quantity
func (h *RegistryHandler) SetComponentQuantity(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	ref, ok := slotRefFromPath(r, w)
	if !ok {
		return
	}
	componentID, ok := GetPathParam(r, w, "componentID")
	if !ok {
		return
	}

	var req SetQuantityRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Set component quantity"); err != nil {
		return
	}

	if err := h.registrySvc.SetComponentQuantity(r.Context(), ref, componentID, req.Quantity); err != nil {
		respondServiceError(w, r, "Set component quantity", err)
		return
	}

	log.Info("Component quantity updated",
		"book_id", ref.BookID, "recipe_id", ref.RecipeID,
		"slot_id", ref.SlotID, "component_id", componentID, "quantity", req.Quantity)
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgQuantityUpdated})
}
