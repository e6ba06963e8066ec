// internal/server/callbacks.go
package server

import (
	"encoding/json"
	"io"
	"net/http"

	apperrors "outreach-engine/internal/common/errors"
	"outreach-engine/internal/models"
)

type engagementPayload struct {
	ProspectID string `json:"prospect_id"`
	Event      string `json:"event"`
}

// handleEngagementCallback ingests open/reply notifications from the
// delivery provider. Duplicates and out-of-order events return 200 with
// the current state so the provider never retries them.
func (s *Server) handleEngagementCallback(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, apperrors.NewValidationError("unreadable request body"))
		return
	}

	var payload engagementPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.writeError(w, apperrors.NewValidationError("malformed JSON body"))
		return
	}
	if payload.ProspectID == "" {
		s.writeError(w, apperrors.NewValidationError("prospect_id is required"))
		return
	}

	p, err := s.svc.HandleEngagement(r.Context(), payload.ProspectID, models.EngagementKind(payload.Event))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
