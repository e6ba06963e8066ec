// internal/outreach/state_test.go
package outreach

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "outreach-engine/internal/common/errors"
	"outreach-engine/internal/models"
)

func draftProspect(status models.OutreachStatus) *models.Prospect {
	draft := "Hello, this is a draft."
	return &models.Prospect{
		ID:             "prospect-1",
		OwnerID:        "creator-1",
		OutreachStatus: status,
		DraftContent:   &draft,
	}
}

func TestBeginGeneration(t *testing.T) {
	p := &models.Prospect{ID: "p1", OutreachStatus: models.StatusNotSent}

	assert.True(t, BeginGeneration(p))
	assert.Equal(t, models.StatusPending, p.OutreachStatus)

	// Already pending or beyond: status untouched.
	assert.False(t, BeginGeneration(p))
	assert.Equal(t, models.StatusPending, p.OutreachStatus)

	sent := draftProspect(models.StatusSent)
	assert.False(t, BeginGeneration(sent))
	assert.Equal(t, models.StatusSent, sent.OutreachStatus)
}

func TestMarkSent_FromPendingWithDraft(t *testing.T) {
	p := draftProspect(models.StatusPending)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	changed, err := MarkSent(p, now)

	assert.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.StatusSent, p.OutreachStatus)
	assert.NotNil(t, p.SentAt)
	assert.Equal(t, now, *p.SentAt)
}

func TestMarkSent_IdempotentWhenAlreadySent(t *testing.T) {
	p := draftProspect(models.StatusPending)
	first := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	_, err := MarkSent(p, first)
	assert.NoError(t, err)

	// Second invocation does not change state or move sent_at.
	changed, err := MarkSent(p, first.Add(time.Hour))
	assert.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.StatusSent, p.OutreachStatus)
	assert.Equal(t, first, *p.SentAt)
}

func TestMarkSent_NoOpBeyondSent(t *testing.T) {
	for _, status := range []models.OutreachStatus{models.StatusOpened, models.StatusReplied} {
		p := draftProspect(status)
		changed, err := MarkSent(p, time.Now())
		assert.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, status, p.OutreachStatus)
	}
}

func TestMarkSent_RequiresDraft(t *testing.T) {
	p := &models.Prospect{ID: "p1", OutreachStatus: models.StatusPending}

	changed, err := MarkSent(p, time.Now())

	assert.False(t, changed)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConflict))
	assert.Equal(t, models.StatusPending, p.OutreachStatus)
}

func TestMarkSent_FromNotSentIsConflict(t *testing.T) {
	p := &models.Prospect{ID: "p1", OutreachStatus: models.StatusNotSent}

	_, err := MarkSent(p, time.Now())

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConflict))
}

func TestApplyEngagement_Advances(t *testing.T) {
	p := draftProspect(models.StatusSent)

	changed, err := ApplyEngagement(p, models.EngagementOpened)
	assert.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.StatusOpened, p.OutreachStatus)

	changed, err = ApplyEngagement(p, models.EngagementReplied)
	assert.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.StatusReplied, p.OutreachStatus)
}

func TestApplyEngagement_SkipsStates(t *testing.T) {
	// A reply received while still SENT jumps straight to REPLIED.
	p := draftProspect(models.StatusSent)

	changed, err := ApplyEngagement(p, models.EngagementReplied)

	assert.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.StatusReplied, p.OutreachStatus)
}

func TestApplyEngagement_NeverDowngrades(t *testing.T) {
	// An OPENED callback for a prospect already in REPLIED is a no-op.
	p := draftProspect(models.StatusReplied)

	changed, err := ApplyEngagement(p, models.EngagementOpened)

	assert.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.StatusReplied, p.OutreachStatus)
}

func TestApplyEngagement_DuplicateIsNoOp(t *testing.T) {
	p := draftProspect(models.StatusOpened)

	changed, err := ApplyEngagement(p, models.EngagementOpened)

	assert.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.StatusOpened, p.OutreachStatus)
}

func TestApplyEngagement_BeforeSentIsConflict(t *testing.T) {
	for _, status := range []models.OutreachStatus{models.StatusNotSent, models.StatusPending} {
		p := draftProspect(status)
		_, err := ApplyEngagement(p, models.EngagementOpened)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConflict))
		assert.Equal(t, status, p.OutreachStatus)
	}
}

func TestApplyEngagement_UnknownKind(t *testing.T) {
	p := draftProspect(models.StatusSent)

	_, err := ApplyEngagement(p, models.EngagementKind("forwarded"))

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
}

func TestReset_ClearsDraftAndTimestamps(t *testing.T) {
	for _, status := range []models.OutreachStatus{
		models.StatusPending, models.StatusSent, models.StatusOpened, models.StatusReplied,
	} {
		p := draftProspect(status)
		at := time.Now()
		p.SentAt = &at
		p.DraftGeneratedAt = &at

		Reset(p)

		assert.Equal(t, models.StatusNotSent, p.OutreachStatus)
		assert.Nil(t, p.DraftContent)
		assert.Nil(t, p.DraftGeneratedAt)
		assert.Nil(t, p.SentAt)
	}
}

func TestMonotonicityOutsideReset(t *testing.T) {
	// Walking every operation except Reset from every state never lowers
	// the status rank.
	states := []models.OutreachStatus{
		models.StatusNotSent, models.StatusPending, models.StatusSent,
		models.StatusOpened, models.StatusReplied,
	}

	for _, start := range states {
		p := draftProspect(start)
		before := p.OutreachStatus.Rank()

		BeginGeneration(p)
		assert.GreaterOrEqual(t, p.OutreachStatus.Rank(), before)

		MarkSent(p, time.Now())
		assert.GreaterOrEqual(t, p.OutreachStatus.Rank(), before)

		ApplyEngagement(p, models.EngagementOpened)
		assert.GreaterOrEqual(t, p.OutreachStatus.Rank(), before)

		ApplyEngagement(p, models.EngagementReplied)
		assert.GreaterOrEqual(t, p.OutreachStatus.Rank(), before)
	}
}

func TestEngagementSources(t *testing.T) {
	assert.Equal(t, []string{"SENT"}, engagementSources(models.StatusOpened))
	assert.Equal(t, []string{"SENT", "OPENED"}, engagementSources(models.StatusReplied))
}
