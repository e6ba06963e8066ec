// internal/models/offering.go
package models

// Offering is a creator's published agent, used as the subject of
// outreach. Read-only from this subsystem's perspective.
type Offering struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"owner_id"`
	Name        string   `json:"name"`
	Sector      Sector   `json:"sector"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Price       int      `json:"price"`
}
