// internal/server/prospects.go
package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "outreach-engine/internal/common/errors"
	"outreach-engine/internal/common/validation"
	"outreach-engine/internal/models"
)

const maxBodyBytes = 64 << 10

type prospectPayload struct {
	ID              string `json:"id,omitempty"`
	OwnerID         string `json:"owner_id"`
	Name            string `json:"name"`
	Sector          string `json:"sector"`
	EstimatedBudget string `json:"estimated_budget"`
	CompanySize     string `json:"company_size"`
	Needs           string `json:"needs,omitempty"`
}

func (p prospectPayload) toModel() *models.Prospect {
	return &models.Prospect{
		ID:              p.ID,
		OwnerID:         p.OwnerID,
		Name:            p.Name,
		Sector:          models.Sector(p.Sector),
		EstimatedBudget: models.BudgetBucket(p.EstimatedBudget),
		CompanySize:     models.CompanySize(p.CompanySize),
		Needs:           p.Needs,
	}
}

// readProspectPayload validates the raw body against the prospect schema
// before any unmarshalling, so a bad payload can never partially apply.
func readProspectPayload(r *http.Request) (*prospectPayload, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.NewValidationError("unreadable request body")
	}
	if err := validation.ValidateProspectPayload(raw); err != nil {
		return nil, err
	}

	var payload prospectPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperrors.NewValidationError("malformed JSON body")
	}
	return &payload, nil
}

func ownerID(r *http.Request) (string, error) {
	owner := r.URL.Query().Get("owner_id")
	if owner == "" {
		return "", apperrors.NewValidationError("owner_id query parameter is required")
	}
	return owner, nil
}

func (s *Server) handleCreateProspect(w http.ResponseWriter, r *http.Request) {
	payload, err := readProspectPayload(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	p, err := s.svc.SaveProspect(r.Context(), payload.toModel())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListProspects(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	prospects, err := s.svc.ListProspects(r.Context(), owner)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if prospects == nil {
		prospects = []models.Prospect{}
	}
	writeJSON(w, http.StatusOK, prospects)
}

func (s *Server) handleGetProspect(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	p, err := s.svc.GetProspect(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProspect(w http.ResponseWriter, r *http.Request) {
	payload, err := readProspectPayload(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	p := payload.toModel()
	p.ID = chi.URLParam(r, "id")

	updated, err := s.svc.SaveProspect(r.Context(), p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteProspect(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.svc.DeleteProspect(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type draftRequestPayload struct {
	OfferingID string `json:"offering_id,omitempty"`
}

func (s *Server) handleRequestDraft(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var payload draftRequestPayload
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, apperrors.NewValidationError("unreadable request body"))
		return
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			s.writeError(w, apperrors.NewValidationError("malformed JSON body"))
			return
		}
	}

	p, err := s.svc.RequestDraft(r.Context(), owner, chi.URLParam(r, "id"), payload.OfferingID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleMarkSent(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	p, err := s.svc.MarkSent(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	p, err := s.svc.ResetOutreach(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListOfferings(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	offerings, err := s.svc.ListOfferings(r.Context(), owner)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if offerings == nil {
		offerings = []models.Offering{}
	}
	writeJSON(w, http.StatusOK, offerings)
}
