// internal/outreach/store_test.go
package outreach

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "outreach-engine/internal/common/errors"
	"outreach-engine/internal/common/logger"
	"outreach-engine/internal/models"
)

func setupStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db, logger.NewTestLogger(t)), mock
}

func prospectColumnsList() []string {
	return []string{
		"id", "owner_id", "name", "sector", "estimated_budget", "company_size", "needs",
		"compatibility_score", "outreach_status", "draft_content", "draft_generated_at", "sent_at",
		"version", "created_at", "updated_at",
	}
}

func prospectRow(mockRows *sqlmock.Rows, p models.Prospect) *sqlmock.Rows {
	var needs, draft interface{}
	if p.Needs != "" {
		needs = p.Needs
	}
	if p.DraftContent != nil {
		draft = *p.DraftContent
	}
	var draftAt, sentAt interface{}
	if p.DraftGeneratedAt != nil {
		draftAt = *p.DraftGeneratedAt
	}
	if p.SentAt != nil {
		sentAt = *p.SentAt
	}
	return mockRows.AddRow(
		p.ID, p.OwnerID, p.Name, p.Sector, p.EstimatedBudget, p.CompanySize, needs,
		p.CompatibilityScore, p.OutreachStatus, draft, draftAt, sentAt,
		p.Version, p.CreatedAt, p.UpdatedAt,
	)
}

func TestUpsertProspect_Insert(t *testing.T) {
	store, mock := setupStore(t)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO prospects").
		WithArgs("p1", "creator-1", "ACME", "finance", "1000-5000", "medium",
			nil, 70, string(models.StatusNotSent)).
		WillReturnRows(sqlmock.NewRows([]string{
			"outreach_status", "draft_content", "draft_generated_at", "sent_at",
			"version", "created_at", "updated_at",
		}).AddRow(string(models.StatusNotSent), nil, nil, nil, 1, now, now))

	p := &models.Prospect{
		ID: "p1", OwnerID: "creator-1", Name: "ACME", Sector: models.SectorFinance,
		EstimatedBudget: "1000-5000", CompanySize: models.SizeMedium, CompatibilityScore: 70,
	}
	require.NoError(t, store.UpsertProspect(context.Background(), p))

	assert.Equal(t, models.StatusNotSent, p.OutreachStatus)
	assert.Equal(t, int64(1), p.Version)
	assert.Nil(t, p.DraftContent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertProspect_UpdateKeepsOutreachState(t *testing.T) {
	store, mock := setupStore(t)

	now := time.Now()
	draftAt := now.Add(-time.Hour)
	mock.ExpectQuery("INSERT INTO prospects").
		WillReturnRows(sqlmock.NewRows([]string{
			"outreach_status", "draft_content", "draft_generated_at", "sent_at",
			"version", "created_at", "updated_at",
		}).AddRow(string(models.StatusPending), "existing draft", draftAt, nil, 4, now.Add(-24*time.Hour), now))

	p := &models.Prospect{ID: "p1", OwnerID: "creator-1", Name: "ACME Corp", Sector: models.SectorHealth}
	require.NoError(t, store.UpsertProspect(context.Background(), p))

	assert.Equal(t, models.StatusPending, p.OutreachStatus)
	require.NotNil(t, p.DraftContent)
	assert.Equal(t, "existing draft", *p.DraftContent)
	assert.Equal(t, int64(4), p.Version)
}

func TestUpsertProspect_OwnerMismatchIsNotFound(t *testing.T) {
	store, mock := setupStore(t)

	// The owner guard on the conflict branch matches no row.
	mock.ExpectQuery("INSERT INTO prospects").
		WillReturnRows(sqlmock.NewRows([]string{"outreach_status"}))

	p := &models.Prospect{ID: "p1", OwnerID: "other-owner", Name: "ACME"}
	err := store.UpsertProspect(context.Background(), p)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetProspect_NotFound(t *testing.T) {
	store, mock := setupStore(t)

	mock.ExpectQuery("SELECT (.+) FROM prospects WHERE id").
		WithArgs("missing", "creator-1").
		WillReturnRows(sqlmock.NewRows(prospectColumnsList()))

	_, err := store.GetProspect(context.Background(), "creator-1", "missing")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeProspectNotFound))
}

func TestMarkPending_AlreadyPastNotSent(t *testing.T) {
	store, mock := setupStore(t)

	mock.ExpectQuery("UPDATE prospects").
		WithArgs("p1", "creator-1", string(models.StatusPending), string(models.StatusNotSent)).
		WillReturnRows(sqlmock.NewRows(prospectColumnsList()))

	p, applied, err := store.MarkPending(context.Background(), "creator-1", "p1")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Nil(t, p)
}

func TestMarkPending_Applies(t *testing.T) {
	store, mock := setupStore(t)

	now := time.Now()
	rows := prospectRow(sqlmock.NewRows(prospectColumnsList()), models.Prospect{
		ID: "p1", OwnerID: "creator-1", Name: "ACME", Sector: models.SectorFinance,
		EstimatedBudget: "1000-5000", CompanySize: models.SizeMedium,
		OutreachStatus: models.StatusPending, Version: 2, CreatedAt: now, UpdatedAt: now,
	})
	mock.ExpectQuery("UPDATE prospects").WillReturnRows(rows)

	p, applied, err := store.MarkPending(context.Background(), "creator-1", "p1")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, models.StatusPending, p.OutreachStatus)
	assert.Equal(t, int64(2), p.Version)
}

func TestSaveDraft_PersistsForPendingProspect(t *testing.T) {
	store, mock := setupStore(t)

	now := time.Now()
	draft := "generated copy"
	rows := prospectRow(sqlmock.NewRows(prospectColumnsList()), models.Prospect{
		ID: "p1", OwnerID: "creator-1", Name: "ACME", Sector: models.SectorFinance,
		EstimatedBudget: "1000-5000", CompanySize: models.SizeMedium, DraftContent: &draft,
		OutreachStatus: models.StatusPending, Version: 3, CreatedAt: now, UpdatedAt: now,
	})
	mock.ExpectQuery("UPDATE prospects").
		WithArgs("p1", "creator-1", draft, now, string(models.StatusNotSent)).
		WillReturnRows(rows)

	p, err := store.SaveDraft(context.Background(), "creator-1", "p1", draft, now)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, draft, *p.DraftContent)
	assert.Equal(t, models.StatusPending, p.OutreachStatus)
}

func TestSaveDraft_ResetRowMatchesNothing(t *testing.T) {
	store, mock := setupStore(t)

	// The NOT_SENT guard keeps a racing reset's row untouched.
	mock.ExpectQuery("UPDATE prospects").
		WillReturnRows(sqlmock.NewRows(prospectColumnsList()))

	p, err := store.SaveDraft(context.Background(), "creator-1", "p1", "late draft", time.Now())
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestMarkSent_StateConflict(t *testing.T) {
	store, mock := setupStore(t)

	at := time.Now()
	mock.ExpectQuery("UPDATE prospects").
		WithArgs("p1", "creator-1", string(models.StatusSent), at, string(models.StatusPending)).
		WillReturnRows(sqlmock.NewRows(prospectColumnsList()))

	_, err := store.MarkSent(context.Background(), "creator-1", "p1", at)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConflict))
}

func TestAdvanceStatus(t *testing.T) {
	store, mock := setupStore(t)

	now := time.Now()
	draft := "d"
	rows := prospectRow(sqlmock.NewRows(prospectColumnsList()), models.Prospect{
		ID: "p1", OwnerID: "creator-1", Name: "ACME", Sector: models.SectorFinance,
		EstimatedBudget: "1000-5000", CompanySize: models.SizeMedium, DraftContent: &draft,
		OutreachStatus: models.StatusReplied, Version: 6, CreatedAt: now, UpdatedAt: now,
	})
	mock.ExpectQuery("UPDATE prospects").
		WithArgs("p1", string(models.StatusReplied), pq.Array([]string{"SENT", "OPENED"})).
		WillReturnRows(rows)

	p, err := store.AdvanceStatus(context.Background(), "p1", models.StatusReplied, []string{"SENT", "OPENED"})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, models.StatusReplied, p.OutreachStatus)
}

func TestAdvanceStatus_LateCallbackMatchesNothing(t *testing.T) {
	store, mock := setupStore(t)

	mock.ExpectQuery("UPDATE prospects").
		WillReturnRows(sqlmock.NewRows(prospectColumnsList()))

	p, err := store.AdvanceStatus(context.Background(), "p1", models.StatusOpened, []string{"SENT"})
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestResetOutreach_ClearsDraftAndTimestamps(t *testing.T) {
	store, mock := setupStore(t)

	now := time.Now()
	rows := prospectRow(sqlmock.NewRows(prospectColumnsList()), models.Prospect{
		ID: "p1", OwnerID: "creator-1", Name: "ACME", Sector: models.SectorFinance,
		EstimatedBudget: "1000-5000", CompanySize: models.SizeMedium,
		OutreachStatus: models.StatusNotSent, Version: 9, CreatedAt: now, UpdatedAt: now,
	})
	mock.ExpectQuery("UPDATE prospects").
		WithArgs("p1", "creator-1", string(models.StatusNotSent)).
		WillReturnRows(rows)

	p, err := store.ResetOutreach(context.Background(), "creator-1", "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotSent, p.OutreachStatus)
	assert.Nil(t, p.DraftContent)
	assert.Nil(t, p.SentAt)
}

func TestDeleteProspect_ReturnsTombstoneVersion(t *testing.T) {
	store, mock := setupStore(t)

	mock.ExpectQuery("DELETE FROM prospects").
		WithArgs("p1", "creator-1").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(4))

	version, err := store.DeleteProspect(context.Background(), "creator-1", "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), version)
}

func TestDeleteProspect_NotFound(t *testing.T) {
	store, mock := setupStore(t)

	mock.ExpectQuery("DELETE FROM prospects").
		WillReturnRows(sqlmock.NewRows([]string{"version"}))

	_, err := store.DeleteProspect(context.Background(), "creator-1", "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetOffering_ScansFeatureArray(t *testing.T) {
	store, mock := setupStore(t)

	mock.ExpectQuery("SELECT (.+) FROM offerings WHERE id").
		WithArgs("o1", "creator-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "sector", "description", "features", "price"}).
			AddRow("o1", "creator-1", "Analytics", "finance", "Dashboards", "{reporting,alerts}", 2000))

	o, err := store.GetOffering(context.Background(), "creator-1", "o1")
	require.NoError(t, err)
	assert.Equal(t, []string{"reporting", "alerts"}, o.Features)
	assert.Equal(t, 2000, o.Price)
}

func TestListOfferings_QueryFailure(t *testing.T) {
	store, mock := setupStore(t)

	mock.ExpectQuery("SELECT (.+) FROM offerings WHERE owner_id").
		WillReturnError(assert.AnError)

	_, err := store.ListOfferings(context.Background(), "creator-1")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodePersistence))
	assert.True(t, apperrors.IsRetryable(err))
}
