package handler

import (
	"net/http"

	"github.com/forgelight/crucible/internal/cauldron"
	"github.com/forgelight/crucible/internal/logger"
)

// HandleBrew throws the actor's dropped items into the cauldron
func HandleBrew(cauldronSvc cauldron.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req cauldron.Request
		if err := DecodeAndValidateRequest(r, w, &req, "Brew"); err != nil {
			return
		}

		log.Info("Brew request received", "actor_id", req.ActorID, "items", len(req.ItemNames))

		result, err := cauldronSvc.Brew(r.Context(), req)
		if err != nil {
			respondServiceError(w, r, "Brew", err)
			return
		}

		log.Info("Brew resolved",
			"outcome", result.Outcome,
			"message_key", result.MessageKey,
			"extra", result.ExtraCount,
			"missing", result.MissingCount)

		respondJSON(w, http.StatusOK, result)
	}
}
