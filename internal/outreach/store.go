// internal/outreach/store.go
package outreach

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	apperrors "outreach-engine/internal/common/errors"
	"outreach-engine/internal/common/logger"
	"outreach-engine/internal/models"
)

// Store is the persistence adapter for prospects and offerings. Every
// read is owner-scoped (except the callback lookup by id), every write
// bumps the row version, and prospect upserts are conditional so retried
// client submissions never duplicate rows.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "store"}),
	}
}

const prospectColumns = `id, owner_id, name, sector, estimated_budget, company_size, needs,
		compatibility_score, outreach_status, draft_content, draft_generated_at, sent_at,
		version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProspect(row rowScanner) (*models.Prospect, error) {
	var p models.Prospect
	var needs, draft sql.NullString
	var draftAt, sentAt sql.NullTime

	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Sector, &p.EstimatedBudget, &p.CompanySize, &needs,
		&p.CompatibilityScore, &p.OutreachStatus, &draft, &draftAt, &sentAt,
		&p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if needs.Valid {
		p.Needs = needs.String
	}
	if draft.Valid {
		p.DraftContent = &draft.String
	}
	if draftAt.Valid {
		t := draftAt.Time
		p.DraftGeneratedAt = &t
	}
	if sentAt.Valid {
		t := sentAt.Time
		p.SentAt = &t
	}
	return &p, nil
}

// UpsertProspect creates the prospect if absent, else updates its input
// fields and score. Outreach state is never touched by an upsert. The
// owner guard on the conflict branch makes another owner's row invisible:
// the statement simply matches nothing and the caller gets not-found.
func (s *Store) UpsertProspect(ctx context.Context, p *models.Prospect) error {
	if p.OutreachStatus == "" {
		p.OutreachStatus = models.StatusNotSent
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO prospects (id, owner_id, name, sector, estimated_budget, company_size,
			needs, compatibility_score, outreach_status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			sector = EXCLUDED.sector,
			estimated_budget = EXCLUDED.estimated_budget,
			company_size = EXCLUDED.company_size,
			needs = EXCLUDED.needs,
			compatibility_score = EXCLUDED.compatibility_score,
			updated_at = NOW(),
			version = prospects.version + 1
		WHERE prospects.owner_id = EXCLUDED.owner_id
		RETURNING outreach_status, draft_content, draft_generated_at, sent_at,
			version, created_at, updated_at`,
		p.ID, p.OwnerID, p.Name, p.Sector, p.EstimatedBudget, p.CompanySize,
		nullString(p.Needs), p.CompatibilityScore, p.OutreachStatus,
	)

	var draft sql.NullString
	var draftAt, sentAt sql.NullTime
	err := row.Scan(&p.OutreachStatus, &draft, &draftAt, &sentAt, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return apperrors.NewProspectNotFoundError(p.ID)
	}
	if err != nil {
		return apperrors.NewPersistenceError(err)
	}

	p.DraftContent = nil
	if draft.Valid {
		p.DraftContent = &draft.String
	}
	p.DraftGeneratedAt = nil
	if draftAt.Valid {
		t := draftAt.Time
		p.DraftGeneratedAt = &t
	}
	p.SentAt = nil
	if sentAt.Valid {
		t := sentAt.Time
		p.SentAt = &t
	}
	return nil
}

// GetProspect fetches one prospect scoped to its owner.
func (s *Store) GetProspect(ctx context.Context, ownerID, id string) (*models.Prospect, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+prospectColumns+`
		FROM prospects WHERE id = $1 AND owner_id = $2`, id, ownerID)

	p, err := scanProspect(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewProspectNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return p, nil
}

// GetProspectByID fetches one prospect without owner scoping. Only the
// engagement callback path may use it: callbacks carry no owner.
func (s *Store) GetProspectByID(ctx context.Context, id string) (*models.Prospect, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+prospectColumns+`
		FROM prospects WHERE id = $1`, id)

	p, err := scanProspect(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewProspectNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return p, nil
}

// ListProspects returns all prospects of one owner, newest first.
func (s *Store) ListProspects(ctx context.Context, ownerID string) ([]models.Prospect, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+prospectColumns+`
		FROM prospects WHERE owner_id = $1
		ORDER BY created_at DESC, id`, ownerID)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	defer rows.Close()

	var out []models.Prospect
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, apperrors.NewPersistenceError(err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return out, nil
}

// MarkPending moves a NOT_SENT prospect to PENDING. The condition is in
// the statement so concurrent writers cannot race past the status guard;
// zero rows means the prospect was already at PENDING or beyond.
func (s *Store) MarkPending(ctx context.Context, ownerID, id string) (*models.Prospect, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE prospects
		SET outreach_status = $3, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND owner_id = $2 AND outreach_status = $4
		RETURNING `+prospectColumns,
		id, ownerID, models.StatusPending, models.StatusNotSent)

	p, err := scanProspect(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.NewPersistenceError(err)
	}
	return p, true, nil
}

// RevertPending restores the pre-generation status after a failed
// generation, but only if the row is still PENDING.
func (s *Store) RevertPending(ctx context.Context, ownerID, id string, prior models.OutreachStatus) (*models.Prospect, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE prospects
		SET outreach_status = $3, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND owner_id = $2 AND outreach_status = $4
		RETURNING `+prospectColumns,
		id, ownerID, prior, models.StatusPending)

	p, err := scanProspect(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return p, nil
}

// SaveDraft persists freshly generated draft content. The write is
// conditional on the row not sitting at NOT_SENT: a prospect that was
// reset (or deleted) while the generation ran matches nothing and the
// caller discards the draft, so draft content never appears on a
// NOT_SENT row. Status is otherwise untouched: a regeneration for an
// already-sent prospect keeps its delivery state.
func (s *Store) SaveDraft(ctx context.Context, ownerID, id, draft string, at time.Time) (*models.Prospect, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE prospects
		SET draft_content = $3, draft_generated_at = $4, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND owner_id = $2 AND outreach_status <> $5
		RETURNING `+prospectColumns,
		id, ownerID, draft, at, models.StatusNotSent)

	p, err := scanProspect(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return p, nil
}

// MarkSent records the creator's send confirmation. Conditional on
// PENDING with a draft present; zero rows is a state conflict and the
// caller should re-fetch.
func (s *Store) MarkSent(ctx context.Context, ownerID, id string, at time.Time) (*models.Prospect, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE prospects
		SET outreach_status = $3, sent_at = $4, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND owner_id = $2 AND outreach_status = $5 AND draft_content IS NOT NULL
		RETURNING `+prospectColumns,
		id, ownerID, models.StatusSent, at, models.StatusPending)

	p, err := scanProspect(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewConflictError("prospect " + id + " is not pending with a draft")
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return p, nil
}

// AdvanceStatus applies an engagement transition, constrained to the
// allowed source statuses so a late callback can never downgrade a row.
func (s *Store) AdvanceStatus(ctx context.Context, id string, target models.OutreachStatus, from []string) (*models.Prospect, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE prospects
		SET outreach_status = $2, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND outreach_status = ANY($3)
		RETURNING `+prospectColumns,
		id, target, pq.Array(from))

	p, err := scanProspect(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return p, nil
}

// ResetOutreach returns a prospect to NOT_SENT and clears the draft and
// delivery timestamps.
func (s *Store) ResetOutreach(ctx context.Context, ownerID, id string) (*models.Prospect, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE prospects
		SET outreach_status = $3, draft_content = NULL, draft_generated_at = NULL,
			sent_at = NULL, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND owner_id = $2
		RETURNING `+prospectColumns,
		id, ownerID, models.StatusNotSent)

	p, err := scanProspect(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewProspectNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return p, nil
}

// DeleteProspect hard-deletes a prospect and returns the version its
// deletion event should carry.
func (s *Store) DeleteProspect(ctx context.Context, ownerID, id string) (int64, error) {
	row := s.db.QueryRowContext(ctx, `
		DELETE FROM prospects WHERE id = $1 AND owner_id = $2
		RETURNING version`, id, ownerID)

	var version int64
	err := row.Scan(&version)
	if err == sql.ErrNoRows {
		return 0, apperrors.NewProspectNotFoundError(id)
	}
	if err != nil {
		return 0, apperrors.NewPersistenceError(err)
	}
	return version + 1, nil
}

// GetOffering fetches one offering scoped to its owner.
func (s *Store) GetOffering(ctx context.Context, ownerID, id string) (*models.Offering, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, sector, description, features, price
		FROM offerings WHERE id = $1 AND owner_id = $2`, id, ownerID)

	var o models.Offering
	err := row.Scan(&o.ID, &o.OwnerID, &o.Name, &o.Sector, &o.Description, pq.Array(&o.Features), &o.Price)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewOfferingNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return &o, nil
}

// ListOfferings returns all offerings of one owner.
func (s *Store) ListOfferings(ctx context.Context, ownerID string) ([]models.Offering, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, sector, description, features, price
		FROM offerings WHERE owner_id = $1
		ORDER BY id`, ownerID)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	defer rows.Close()

	var out []models.Offering
	for rows.Next() {
		var o models.Offering
		if err := rows.Scan(&o.ID, &o.OwnerID, &o.Name, &o.Sector, &o.Description, pq.Array(&o.Features), &o.Price); err != nil {
			return nil, apperrors.NewPersistenceError(err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
