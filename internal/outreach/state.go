// internal/outreach/state.go
package outreach

import (
	"fmt"
	"time"

	apperrors "outreach-engine/internal/common/errors"
	"outreach-engine/internal/models"
)

// The outreach lifecycle: NOT_SENT -> PENDING -> SENT -> OPENED -> REPLIED.
// Statuses only advance; engagement states may be skipped but never
// reversed. The only way back to NOT_SENT is an explicit manual reset.

// BeginGeneration moves a NOT_SENT prospect to PENDING. Prospects already
// at PENDING or beyond keep their status; the returned bool reports
// whether a transition happened.
func BeginGeneration(p *models.Prospect) bool {
	if p.OutreachStatus != models.StatusNotSent {
		return false
	}
	p.OutreachStatus = models.StatusPending
	return true
}

// MarkSent confirms the draft was sent by the creator. It requires draft
// content to be present and the prospect to be at PENDING; re-invoking it
// at SENT or beyond is an idempotent no-op success. The returned bool
// reports whether state actually changed.
func MarkSent(p *models.Prospect, now time.Time) (bool, error) {
	switch p.OutreachStatus {
	case models.StatusSent, models.StatusOpened, models.StatusReplied:
		return false, nil
	case models.StatusPending:
		if !p.HasDraft() {
			return false, apperrors.NewConflictError(
				fmt.Sprintf("prospect %s has no draft to send", p.ID))
		}
		p.OutreachStatus = models.StatusSent
		sentAt := now.UTC()
		p.SentAt = &sentAt
		return true, nil
	default:
		return false, apperrors.NewConflictError(
			fmt.Sprintf("prospect %s cannot be marked sent from %s", p.ID, p.OutreachStatus))
	}
}

// ApplyEngagement advances the status toward the engagement target.
// Events at or below the current rank are accepted and ignored; events
// arriving before the message was sent are precondition failures. The
// returned bool reports whether state actually changed.
func ApplyEngagement(p *models.Prospect, kind models.EngagementKind) (bool, error) {
	target, ok := kind.TargetStatus()
	if !ok {
		return false, apperrors.NewValidationError(
			fmt.Sprintf("unknown engagement kind %q", kind))
	}

	current := p.OutreachStatus.Rank()
	if current < models.StatusSent.Rank() {
		return false, apperrors.NewConflictError(
			fmt.Sprintf("prospect %s received %s engagement while %s", p.ID, kind, p.OutreachStatus))
	}
	if current >= target.Rank() {
		// Duplicate or out-of-order callback, no downgrade.
		return false, nil
	}

	p.OutreachStatus = target
	return true, nil
}

// Reset returns the prospect to NOT_SENT and clears the generated draft
// and delivery timestamps. Used when a creator wants to regenerate from
// scratch; valid from any state.
func Reset(p *models.Prospect) {
	p.OutreachStatus = models.StatusNotSent
	p.DraftContent = nil
	p.DraftGeneratedAt = nil
	p.SentAt = nil
}

// engagementSources lists the statuses an engagement transition may start
// from, for use in conditional store writes.
func engagementSources(target models.OutreachStatus) []string {
	var from []string
	for _, s := range []models.OutreachStatus{models.StatusSent, models.StatusOpened} {
		if s.Rank() < target.Rank() {
			from = append(from, string(s))
		}
	}
	return from
}
