// internal/server/respond.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "outreach-engine/internal/common/errors"
)

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// statusFor maps the error taxonomy onto HTTP statuses. Contention maps
// to 409 like a state conflict: from the console's perspective both mean
// "somebody got there first, re-fetch and retry".
func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeConflict, apperrors.ErrCodeLockContention:
		return http.StatusConflict
	case apperrors.ErrCodeProspectNotFound, apperrors.ErrCodeOfferingNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeGenerationTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeGenerationService:
		return http.StatusBadGateway
	case apperrors.ErrCodePersistence:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var stdErr *apperrors.StandardError
	if !errors.As(err, &stdErr) {
		s.logger.Error("unclassified error reached the http layer", map[string]interface{}{
			"error": err.Error(),
		})
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "internal error",
		})
		return
	}

	writeJSON(w, statusFor(stdErr.Code), errorResponse{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
	})
}
