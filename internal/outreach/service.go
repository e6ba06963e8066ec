// internal/outreach/service.go
package outreach

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "outreach-engine/internal/common/errors"
	"outreach-engine/internal/common/logger"
	"outreach-engine/internal/common/metrics"
	"outreach-engine/internal/common/observability"
	"outreach-engine/internal/matching"
	"outreach-engine/internal/models"
)

const (
	lockKeyPrefix = "outreach:lock:"
	// lockTTLSlack keeps the lock alive a little past the generation
	// deadline so a slow service response cannot outlive its own lock.
	lockTTLSlack = 5 * time.Second

	releaseTimeout = 5 * time.Second
)

// ProspectStore is the persistence surface the service depends on.
// *Store satisfies it; tests substitute an in-memory implementation.
type ProspectStore interface {
	UpsertProspect(ctx context.Context, p *models.Prospect) error
	GetProspect(ctx context.Context, ownerID, id string) (*models.Prospect, error)
	GetProspectByID(ctx context.Context, id string) (*models.Prospect, error)
	ListProspects(ctx context.Context, ownerID string) ([]models.Prospect, error)
	MarkPending(ctx context.Context, ownerID, id string) (*models.Prospect, bool, error)
	RevertPending(ctx context.Context, ownerID, id string, prior models.OutreachStatus) (*models.Prospect, error)
	SaveDraft(ctx context.Context, ownerID, id, draft string, at time.Time) (*models.Prospect, error)
	MarkSent(ctx context.Context, ownerID, id string, at time.Time) (*models.Prospect, error)
	AdvanceStatus(ctx context.Context, id string, target models.OutreachStatus, from []string) (*models.Prospect, error)
	ResetOutreach(ctx context.Context, ownerID, id string) (*models.Prospect, error)
	DeleteProspect(ctx context.Context, ownerID, id string) (int64, error)
	GetOffering(ctx context.Context, ownerID, id string) (*models.Offering, error)
	ListOfferings(ctx context.Context, ownerID string) ([]models.Offering, error)
}

// DraftGenerator produces outreach draft content for a prospect/offering
// pair. *generation.Client satisfies it.
type DraftGenerator interface {
	GenerateDraft(ctx context.Context, p *models.Prospect, o *models.Offering) (string, error)
}

// Notifier fans prospect change events out to the owning creator.
type Notifier interface {
	PublishProspectChange(ctx context.Context, ev models.ProspectEvent)
}

// Service orchestrates prospect writes, draft generation and the outreach
// lifecycle. All mutations go through it so every change carries a fresh
// version and a published event.
type Service struct {
	store      ProspectStore
	locks      *redis.Client
	gen        DraftGenerator
	notifier   Notifier
	obs        *observability.Observability
	logger     logger.Logger
	genTimeout time.Duration
}

func NewService(store ProspectStore, locks *redis.Client, gen DraftGenerator,
	notifier Notifier, obs *observability.Observability, log logger.Logger,
	genTimeout time.Duration) *Service {
	return &Service{
		store:      store,
		locks:      locks,
		gen:        gen,
		notifier:   notifier,
		obs:        obs,
		logger:     log,
		genTimeout: genTimeout,
	}
}

func lockKey(prospectID string) string {
	return lockKeyPrefix + prospectID
}

// SaveProspect creates or updates a prospect. The compatibility score is
// recomputed against the owner's current offerings on every save; an
// update never touches outreach state or an existing draft.
func (s *Service) SaveProspect(ctx context.Context, p *models.Prospect) (*models.Prospect, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.rescore(ctx, p); err != nil {
		return nil, err
	}

	err := s.withRetry("upsert prospect", func() error {
		return s.store.UpsertProspect(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	kind := models.EventProspectUpdated
	if p.Version == 1 {
		kind = models.EventProspectCreated
	}
	s.publish(ctx, kind, p)
	return p, nil
}

// GetProspect fetches one prospect scoped to its owner.
func (s *Service) GetProspect(ctx context.Context, ownerID, id string) (*models.Prospect, error) {
	return s.store.GetProspect(ctx, ownerID, id)
}

// ListProspects returns all prospects of one owner.
func (s *Service) ListProspects(ctx context.Context, ownerID string) ([]models.Prospect, error) {
	return s.store.ListProspects(ctx, ownerID)
}

// DeleteProspect removes a prospect and notifies subscribers with a final
// tombstone event carrying the post-delete version.
func (s *Service) DeleteProspect(ctx context.Context, ownerID, id string) error {
	var version int64
	err := s.withRetry("delete prospect", func() error {
		var e error
		version, e = s.store.DeleteProspect(ctx, ownerID, id)
		return e
	})
	if err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.PublishProspectChange(ctx, models.ProspectEvent{
			ProspectID: id,
			OwnerID:    ownerID,
			Kind:       models.EventProspectDeleted,
			Version:    version,
		})
	}
	return nil
}

// RequestDraft runs one exclusive draft generation for a prospect. At most
// one generation per prospect is in flight at any time; a second request
// while one runs fails fast with ALREADY_GENERATING rather than queueing.
//
// The prospect moves to PENDING for the duration of the call when it was
// NOT_SENT. On failure the prior status is restored and the stored draft is
// untouched, so a failed generation never leaves a partial write behind.
func (s *Service) RequestDraft(ctx context.Context, ownerID, prospectID, offeringID string) (*models.Prospect, error) {
	requestID := uuid.NewString()
	key := lockKey(prospectID)

	acquired, err := s.locks.SetNX(ctx, key, requestID, s.genTimeout+lockTTLSlack).Result()
	if err != nil {
		return nil, apperrors.NewPersistenceError(fmt.Errorf("acquire generation lock: %w", err))
	}
	if !acquired {
		metrics.LockContention.Inc()
		return nil, apperrors.NewLockContentionError(prospectID)
	}
	defer s.releaseLock(ctx, key, requestID)

	p, err := s.store.GetProspect(ctx, ownerID, prospectID)
	if err != nil {
		return nil, err
	}

	offering, err := s.resolveOffering(ctx, p, offeringID)
	if err != nil {
		return nil, err
	}

	// Once generation starts the operation runs to completion even if the
	// caller goes away; only the generation deadline bounds it.
	opCtx := context.WithoutCancel(ctx)

	prior := p.OutreachStatus
	movedToPending := false
	staged := *p
	if BeginGeneration(&staged) {
		var marked *models.Prospect
		var applied bool
		err = s.withRetry("mark pending", func() error {
			var e error
			marked, applied, e = s.store.MarkPending(opCtx, ownerID, prospectID)
			return e
		})
		if err != nil {
			return nil, err
		}
		if applied {
			p = marked
			movedToPending = true
			metrics.StatusTransitions.WithLabelValues(string(models.StatusPending)).Inc()
			s.publish(opCtx, models.EventProspectUpdated, p)
		}
	}

	req := models.GenerationRequest{
		ID:          requestID,
		ProspectID:  prospectID,
		OfferingID:  offering.ID,
		RequestedAt: time.Now().UTC(),
		Status:      models.GenerationInFlight,
	}

	genCtx, cancel := context.WithTimeout(opCtx, s.genTimeout)
	defer cancel()

	start := time.Now()
	draft, genErr := s.gen.GenerateDraft(genCtx, p, offering)
	elapsed := time.Since(start)
	metrics.GenerationDuration.Observe(elapsed.Seconds())
	s.obs.RecordDraft(opCtx, genErr == nil, float64(elapsed.Milliseconds()))

	if genErr != nil {
		s.rollbackPending(opCtx, ownerID, prospectID, prior, movedToPending)
		s.finishRequest(req, models.GenerationFailed, elapsed, genErr)
		return nil, genErr
	}

	var updated *models.Prospect
	err = s.withRetry("save draft", func() error {
		var e error
		updated, e = s.store.SaveDraft(opCtx, ownerID, prospectID, draft, time.Now().UTC())
		return e
	})
	if err != nil {
		s.rollbackPending(opCtx, ownerID, prospectID, prior, movedToPending)
		s.finishRequest(req, models.GenerationFailed, elapsed, err)
		return nil, err
	}
	if updated == nil {
		// A manual reset (or delete) won the race against the generation;
		// the row is back at NOT_SENT and the draft must not land on it.
		discarded := apperrors.NewConflictError(fmt.Sprintf(
			"prospect %s was reset during generation, draft discarded", prospectID))
		s.finishRequest(req, models.GenerationFailed, elapsed, discarded)
		return nil, discarded
	}

	s.finishRequest(req, models.GenerationSucceeded, elapsed, nil)
	s.publish(opCtx, models.EventProspectUpdated, updated)
	return updated, nil
}

// MarkSent confirms the creator sent the current draft. Re-invocation at
// SENT or beyond is an idempotent no-op that returns the current state.
func (s *Service) MarkSent(ctx context.Context, ownerID, id string) (*models.Prospect, error) {
	p, err := s.store.GetProspect(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	staged := *p
	changed, err := MarkSent(&staged, time.Now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return p, nil
	}

	var updated *models.Prospect
	err = s.withRetry("mark sent", func() error {
		var e error
		updated, e = s.store.MarkSent(ctx, ownerID, id, *staged.SentAt)
		return e
	})
	if err != nil {
		return nil, err
	}

	metrics.StatusTransitions.WithLabelValues(string(models.StatusSent)).Inc()
	s.publish(ctx, models.EventProspectUpdated, updated)
	return updated, nil
}

// HandleEngagement applies an engagement callback from the delivery
// provider. Duplicate and out-of-order callbacks are accepted and ignored;
// a callback for a prospect that was never sent is a conflict.
func (s *Service) HandleEngagement(ctx context.Context, prospectID string, kind models.EngagementKind) (*models.Prospect, error) {
	p, err := s.store.GetProspectByID(ctx, prospectID)
	if err != nil {
		return nil, err
	}

	staged := *p
	changed, err := ApplyEngagement(&staged, kind)
	if err != nil {
		return nil, err
	}
	if !changed {
		return p, nil
	}

	target := staged.OutreachStatus
	var updated *models.Prospect
	err = s.withRetry("advance engagement status", func() error {
		var e error
		updated, e = s.store.AdvanceStatus(ctx, prospectID, target, engagementSources(target))
		return e
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// A concurrent callback advanced past the target first.
		return s.store.GetProspectByID(ctx, prospectID)
	}

	metrics.StatusTransitions.WithLabelValues(string(target)).Inc()
	s.publish(ctx, models.EventProspectUpdated, updated)
	return updated, nil
}

// ResetOutreach returns a prospect to NOT_SENT and clears its draft, the
// only sanctioned way backwards through the lifecycle.
func (s *Service) ResetOutreach(ctx context.Context, ownerID, id string) (*models.Prospect, error) {
	var updated *models.Prospect
	err := s.withRetry("reset outreach", func() error {
		var e error
		updated, e = s.store.ResetOutreach(ctx, ownerID, id)
		return e
	})
	if err != nil {
		return nil, err
	}

	metrics.StatusTransitions.WithLabelValues(string(models.StatusNotSent)).Inc()
	s.publish(ctx, models.EventProspectUpdated, updated)
	return updated, nil
}

// GetOffering fetches one offering scoped to its owner.
func (s *Service) GetOffering(ctx context.Context, ownerID, id string) (*models.Offering, error) {
	return s.store.GetOffering(ctx, ownerID, id)
}

// ListOfferings returns all offerings of one owner.
func (s *Service) ListOfferings(ctx context.Context, ownerID string) ([]models.Offering, error) {
	return s.store.ListOfferings(ctx, ownerID)
}

// resolveOffering picks the offering a draft should pitch: the explicit
// one when the caller named it, otherwise the owner's best-scoring one.
func (s *Service) resolveOffering(ctx context.Context, p *models.Prospect, offeringID string) (*models.Offering, error) {
	if offeringID != "" {
		return s.store.GetOffering(ctx, p.OwnerID, offeringID)
	}

	offerings, err := s.store.ListOfferings(ctx, p.OwnerID)
	if err != nil {
		return nil, err
	}
	best, _, ok := matching.BestOffering(p, offerings)
	if !ok {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("owner %s has no offerings to generate a draft for", p.OwnerID))
	}
	return &best, nil
}

// rescore recomputes the compatibility score against the owner's current
// offerings. No offerings means score zero, not an error.
func (s *Service) rescore(ctx context.Context, p *models.Prospect) error {
	if !p.Sector.Known() {
		s.logger.Warn("prospect sector not recognized, sector bonus will not apply", map[string]interface{}{
			"prospectId": p.ID,
			"sector":     string(p.Sector),
		})
	}

	offerings, err := s.store.ListOfferings(ctx, p.OwnerID)
	if err != nil {
		return err
	}

	p.CompatibilityScore = 0
	if _, score, ok := matching.BestOffering(p, offerings); ok {
		p.CompatibilityScore = score
	}
	return nil
}

// rollbackPending restores the pre-generation status after a failed
// generation. Best effort: the lock TTL and the conditional write keep a
// missed rollback from corrupting state.
func (s *Service) rollbackPending(ctx context.Context, ownerID, id string, prior models.OutreachStatus, moved bool) {
	if !moved {
		return
	}

	var reverted *models.Prospect
	err := s.withRetry("revert pending", func() error {
		var e error
		reverted, e = s.store.RevertPending(ctx, ownerID, id, prior)
		return e
	})
	if err != nil {
		s.logger.Error("failed to revert prospect after generation failure", map[string]interface{}{
			"prospectId": id,
			"error":      err.Error(),
		})
		return
	}
	if reverted != nil {
		s.publish(ctx, models.EventProspectUpdated, reverted)
	}
}

// finishRequest closes out the per-request audit record. Generation
// requests are ephemeral: they live in the log stream, not the store.
func (s *Service) finishRequest(req models.GenerationRequest, status models.GenerationStatus, elapsed time.Duration, cause error) {
	req.Status = status
	fields := map[string]interface{}{
		"requestId":  req.ID,
		"prospectId": req.ProspectID,
		"offeringId": req.OfferingID,
		"status":     string(status),
		"durationMs": elapsed.Milliseconds(),
	}

	if status == models.GenerationSucceeded {
		metrics.DraftRequests.WithLabelValues("success").Inc()
		s.logger.Info("draft generation completed", fields)
		return
	}

	metrics.DraftRequests.WithLabelValues("failure").Inc()
	if cause != nil {
		fields["error"] = cause.Error()
	}
	s.logger.Error("draft generation failed", fields)
}

// releaseLock deletes the per-prospect generation lock. Detached from the
// caller's context so a cancelled request still frees the lock.
func (s *Service) releaseLock(ctx context.Context, key, requestID string) {
	relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := s.locks.Del(relCtx, key).Err(); err != nil {
		s.logger.Error("failed to release generation lock, TTL will reclaim it", map[string]interface{}{
			"key":       key,
			"requestId": requestID,
			"error":     err.Error(),
		})
	}
}

// withRetry reruns a persistence operation once when the failure is
// transient. Conflicts and validation failures pass straight through.
func (s *Service) withRetry(op string, fn func() error) error {
	err := fn()
	if err == nil || !apperrors.IsRetryable(err) {
		return err
	}

	s.logger.Warn("retrying persistence operation", map[string]interface{}{
		"operation": op,
		"error":     err.Error(),
	})
	return fn()
}

func (s *Service) publish(ctx context.Context, kind models.EventKind, p *models.Prospect) {
	if s.notifier == nil || p == nil {
		return
	}
	s.notifier.PublishProspectChange(ctx, models.ProspectEvent{
		ProspectID: p.ID,
		OwnerID:    p.OwnerID,
		Kind:       kind,
		Version:    p.Version,
		Prospect:   p,
	})
}
