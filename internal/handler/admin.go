package handler

import (
	"net/http"

	"github.com/forgelight/crucible/internal/clock"
	"github.com/forgelight/crucible/internal/crafting"
	"github.com/forgelight/crucible/internal/logger"
	"github.com/forgelight/crucible/internal/registry"
)

// WorldTimeResponse reports the current world time in world-seconds
type WorldTimeResponse struct {
	WorldTime int64 `json:"world_time"`
}

// AdvanceWorldTimeRequest sets the world time. Moving backwards is rejected
// by the clock service.
type AdvanceWorldTimeRequest struct {
	WorldTime int64 `json:"world_time" validate:"gte=0"`
}

// SweepResponse reports how many pending crafts a sweep delivered
type SweepResponse struct {
	Delivered int `json:"delivered"`
}

// ConfirmDiscoveryRequest marks a recipe as discovered by a user
type ConfirmDiscoveryRequest struct {
	BookID   string `json:"book_id" validate:"required"`
	RecipeID string `json:"recipe_id" validate:"required"`
	UserID   string `json:"user_id" validate:"required"`
	IsGM     bool   `json:"is_gm"`
}

// AdminHandler handles host-side operations: the world clock, the delayed
// craft sweep and discovery confirmation.
type AdminHandler struct {
	clockSvc    clock.Service
	craftingSvc crafting.Service
	registrySvc registry.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(clockSvc clock.Service, craftingSvc crafting.Service, registrySvc registry.Service) *AdminHandler {
	return &AdminHandler{
		clockSvc:    clockSvc,
		craftingSvc: craftingSvc,
		registrySvc: registrySvc,
	}
}

// GetWorldTime returns the current world time
func (h *AdminHandler) GetWorldTime(w http.ResponseWriter, r *http.Request) {
	worldTime, err := h.clockSvc.Now(r.Context())
	if err != nil {
		respondServiceError(w, r, "Get world time", err)
		return
	}
	respondJSON(w, http.StatusOK, WorldTimeResponse{WorldTime: worldTime})
}

// AdvanceWorldTime sets the world time forward
func (h *AdminHandler) AdvanceWorldTime(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req AdvanceWorldTimeRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Advance world time"); err != nil {
		return
	}

	if err := h.clockSvc.Advance(r.Context(), req.WorldTime); err != nil {
		respondServiceError(w, r, "Advance world time", err)
		return
	}

	log.Info("World time advanced", "world_time", req.WorldTime)
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgWorldTimeAdvanced})
}

// Sweep delivers every pending craft that is ready
func (h *AdminHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	delivered, err := h.craftingSvc.ProcessDelayed(r.Context())
	if err != nil {
		respondServiceError(w, r, "Sweep", err)
		return
	}

	log.Info("Sweep completed", "delivered", delivered)
	respondJSON(w, http.StatusOK, SweepResponse{Delivered: delivered})
}

// ConfirmDiscovery grants recipe ownership to a user through the GM-gated
// confirm flow
func (h *AdminHandler) ConfirmDiscovery(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req ConfirmDiscoveryRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Confirm discovery"); err != nil {
		return
	}

	if err := h.registrySvc.ConfirmDiscovery(r.Context(), req.BookID, req.RecipeID, req.UserID, req.IsGM); err != nil {
		respondServiceError(w, r, "Confirm discovery", err)
		return
	}

	log.Info("Discovery confirmed",
		"book_id", req.BookID, "recipe_id", req.RecipeID, "user_id", req.UserID)
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgDiscoveryConfirmed})
}
