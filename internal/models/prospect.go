// internal/models/prospect.go
package models

import "time"

// OutreachStatus is the lifecycle stage of a prospect's contact attempt.
// Statuses are ordered; outside of an explicit reset they only move forward.
type OutreachStatus string

const (
	StatusNotSent OutreachStatus = "NOT_SENT"
	StatusPending OutreachStatus = "PENDING"
	StatusSent    OutreachStatus = "SENT"
	StatusOpened  OutreachStatus = "OPENED"
	StatusReplied OutreachStatus = "REPLIED"
)

var statusRank = map[OutreachStatus]int{
	StatusNotSent: 0,
	StatusPending: 1,
	StatusSent:    2,
	StatusOpened:  3,
	StatusReplied: 4,
}

// Rank returns the position of the status in the forward ordering,
// or -1 for an unknown status.
func (s OutreachStatus) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

func (s OutreachStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Sector is the enumerated business domain of a prospect or offering.
// Unknown values are tolerated everywhere and simply never match.
type Sector string

const (
	SectorFinance   Sector = "finance"
	SectorHealth    Sector = "health"
	SectorCommerce  Sector = "commerce"
	SectorEducation Sector = "education"
	SectorLogistics Sector = "logistics"
	SectorRetail    Sector = "retail"
)

// Known reports whether the sector is one of the listed domains.
// Unknown sectors still score, they just never match.
func (s Sector) Known() bool {
	switch s {
	case SectorFinance, SectorHealth, SectorCommerce, SectorEducation, SectorLogistics, SectorRetail:
		return true
	}
	return false
}

// BudgetBucket is a bucketed monthly budget range, e.g. "500-1000".
type BudgetBucket string

const (
	BudgetUnder500  BudgetBucket = "0-500"
	Budget500To1K   BudgetBucket = "500-1000"
	Budget1KTo5K    BudgetBucket = "1000-5000"
	Budget5KTo20K   BudgetBucket = "5000-20000"
	BudgetOver20K   BudgetBucket = "20000+"
)

// budgetBuckets in ascending order; index is used for bucket distance.
var budgetBuckets = []BudgetBucket{
	BudgetUnder500,
	Budget500To1K,
	Budget1KTo5K,
	Budget5KTo20K,
	BudgetOver20K,
}

// Index returns the ordinal of the bucket, or -1 if the value is not a
// known bucket.
func (b BudgetBucket) Index() int {
	for i, bucket := range budgetBuckets {
		if bucket == b {
			return i
		}
	}
	return -1
}

// BucketForPrice maps a price to the bucket that contains it.
func BucketForPrice(price int) BudgetBucket {
	switch {
	case price < 500:
		return BudgetUnder500
	case price < 1000:
		return Budget500To1K
	case price < 5000:
		return Budget1KTo5K
	case price < 20000:
		return Budget5KTo20K
	default:
		return BudgetOver20K
	}
}

// CompanySize is a bucketed headcount range.
type CompanySize string

const (
	SizeSmall  CompanySize = "small"
	SizeMedium CompanySize = "medium"
	SizeLarge  CompanySize = "large"
)

// Prospect is a potential customer tracked by a creator for outreach.
// All mutation goes through the outreach service so the lifecycle
// invariants hold at the single write path.
type Prospect struct {
	ID                 string         `json:"id"`
	OwnerID            string         `json:"owner_id"`
	Name               string         `json:"name"`
	Sector             Sector         `json:"sector"`
	EstimatedBudget    BudgetBucket   `json:"estimated_budget"`
	CompanySize        CompanySize    `json:"company_size"`
	Needs              string         `json:"needs,omitempty"`
	CompatibilityScore int            `json:"compatibility_score"`
	OutreachStatus     OutreachStatus `json:"outreach_status"`
	DraftContent       *string        `json:"draft_content,omitempty"`
	DraftGeneratedAt   *time.Time     `json:"draft_generated_at,omitempty"`
	SentAt             *time.Time     `json:"sent_at,omitempty"`
	Version            int64          `json:"version"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// HasDraft reports whether generated draft content is present.
func (p *Prospect) HasDraft() bool {
	return p.DraftContent != nil && *p.DraftContent != ""
}
