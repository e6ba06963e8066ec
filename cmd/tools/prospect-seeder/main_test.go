// cmd/tools/prospect-seeder/main_test.go
package main

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "outreach-engine/internal/common/errors"
	"outreach-engine/internal/models"
)

type fakeSeedStore struct {
	offerings []models.Offering
	inserted  []*models.Prospect
	failAt    int // 1-based insert index to fail on, 0 never fails
}

func (f *fakeSeedStore) ListOfferings(ctx context.Context, ownerID string) ([]models.Offering, error) {
	return f.offerings, nil
}

func (f *fakeSeedStore) UpsertProspect(ctx context.Context, p *models.Prospect) error {
	if f.failAt > 0 && len(f.inserted)+1 == f.failAt {
		return apperrors.NewPersistenceError(assert.AnError)
	}
	f.inserted = append(f.inserted, p)
	return nil
}

func TestSeedProspects_ScoresAgainstOfferings(t *testing.T) {
	store := &fakeSeedStore{offerings: []models.Offering{
		{ID: "o1", OwnerID: "creator-1", Sector: models.SectorFinance, Price: 2000},
	}}
	rng := rand.New(rand.NewSource(1))

	inserted, err := seedProspects(context.Background(), store, "creator-1", 25, rng)
	require.NoError(t, err)
	assert.Equal(t, 25, inserted)
	require.Len(t, store.inserted, 25)

	for _, p := range store.inserted {
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, "creator-1", p.OwnerID)
		assert.GreaterOrEqual(t, p.CompatibilityScore, 40)
		assert.LessOrEqual(t, p.CompatibilityScore, 100)
	}
}

func TestSeedProspects_NoOfferingsScoresZero(t *testing.T) {
	store := &fakeSeedStore{}
	rng := rand.New(rand.NewSource(1))

	inserted, err := seedProspects(context.Background(), store, "creator-1", 5, rng)
	require.NoError(t, err)
	assert.Equal(t, 5, inserted)
	for _, p := range store.inserted {
		assert.Zero(t, p.CompatibilityScore)
	}
}

func TestSeedProspects_ReportsPartialCountOnFailure(t *testing.T) {
	store := &fakeSeedStore{failAt: 8}
	rng := rand.New(rand.NewSource(1))

	inserted, err := seedProspects(context.Background(), store, "creator-1", 20, rng)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert prospect 8 of 20")
	assert.Equal(t, 7, inserted)
	assert.Len(t, store.inserted, 7)
}
