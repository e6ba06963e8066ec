// internal/models/events.go
package models

// EventKind classifies a prospect change event.
type EventKind string

const (
	EventProspectCreated EventKind = "prospect.created"
	EventProspectUpdated EventKind = "prospect.updated"
	EventProspectDeleted EventKind = "prospect.deleted"
)

// ProspectEvent is the change notification pushed to every live
// subscriber of an owner's prospect set. Events are idempotent state
// snapshots: subscribers apply one only when Version is newer than the
// version they hold. Prospect is nil for deletions.
type ProspectEvent struct {
	ProspectID string    `json:"prospect_id"`
	OwnerID    string    `json:"owner_id"`
	Kind       EventKind `json:"kind"`
	Version    int64     `json:"version"`
	Prospect   *Prospect `json:"prospect,omitempty"`
}

// EngagementKind is an inbound delivery-engagement signal.
type EngagementKind string

const (
	EngagementOpened  EngagementKind = "opened"
	EngagementReplied EngagementKind = "replied"
)

// TargetStatus maps an engagement kind to the status it drives toward.
func (k EngagementKind) TargetStatus() (OutreachStatus, bool) {
	switch k {
	case EngagementOpened:
		return StatusOpened, true
	case EngagementReplied:
		return StatusReplied, true
	default:
		return "", false
	}
}
