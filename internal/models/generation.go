// internal/models/generation.go
package models

import "time"

// GenerationStatus tracks a single draft generation attempt.
type GenerationStatus string

const (
	GenerationInFlight  GenerationStatus = "IN_FLIGHT"
	GenerationSucceeded GenerationStatus = "SUCCEEDED"
	GenerationFailed    GenerationStatus = "FAILED"
)

// GenerationRequest is the ephemeral audit record of one call to the
// external generation service. At most one request per prospect may be
// IN_FLIGHT at any time; the orchestrator's per-prospect lock enforces it.
type GenerationRequest struct {
	ID          string           `json:"id"`
	ProspectID  string           `json:"prospect_id"`
	OfferingID  string           `json:"offering_id"`
	RequestedAt time.Time        `json:"requested_at"`
	Status      GenerationStatus `json:"status"`
	Error       string           `json:"error,omitempty"`
}
