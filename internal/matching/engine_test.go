// internal/matching/engine_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"outreach-engine/internal/models"
)

func testProspect() *models.Prospect {
	return &models.Prospect{
		ID:              "prospect-1",
		OwnerID:         "creator-1",
		Name:            "Acme Capital",
		Sector:          models.SectorFinance,
		EstimatedBudget: models.Budget500To1K,
		CompanySize:     models.SizeMedium,
	}
}

func TestScore_FullMatch(t *testing.T) {
	// Sector match plus price inside the budget bucket is the highest tier.
	p := testProspect()
	o := &models.Offering{Sector: models.SectorFinance, Price: 750}

	score := Score(p, o)

	assert.Equal(t, 100, score)
}

func TestScore_NoMatch(t *testing.T) {
	// Different sector and a price two buckets away is the lowest tier,
	// strictly below the full-match score.
	p := testProspect()
	full := &models.Offering{Sector: models.SectorFinance, Price: 750}
	none := &models.Offering{Sector: models.SectorRetail, Price: 50}

	assert.Equal(t, 40, Score(p, none))
	assert.Less(t, Score(p, none), Score(p, full))
}

func TestScore_AdjacentBudgetBucket(t *testing.T) {
	tests := []struct {
		name     string
		price    int
		expected int
	}{
		{"one bucket below", 300, 40 + 30 + 15},
		{"one bucket above", 2500, 40 + 30 + 15},
		{"two buckets above", 7500, 40 + 30},
		{"inside bucket", 600, 40 + 30 + 30},
	}

	p := testProspect()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &models.Offering{Sector: models.SectorFinance, Price: tt.price}
			assert.Equal(t, tt.expected, Score(p, o))
		})
	}
}

func TestScore_UnknownSectorScoresAsNoMatch(t *testing.T) {
	p := testProspect()
	p.Sector = "quantum-gardening"

	o := &models.Offering{Sector: models.SectorFinance, Price: 750}

	assert.Equal(t, 40+30, Score(p, o))
}

func TestScore_UnknownBudgetBucketScoresAsNoBonus(t *testing.T) {
	p := testProspect()
	p.EstimatedBudget = "a-lot"

	o := &models.Offering{Sector: models.SectorFinance, Price: 750}

	assert.Equal(t, 40+30, Score(p, o))
}

func TestScore_EmptySectorNeverMatches(t *testing.T) {
	p := testProspect()
	p.Sector = ""

	o := &models.Offering{Sector: "", Price: 750}

	assert.Equal(t, 40+30, Score(p, o))
}

func TestScore_DeterministicAndInRange(t *testing.T) {
	sectors := []models.Sector{models.SectorFinance, models.SectorHealth, "", "unknown"}
	budgets := []models.BudgetBucket{models.BudgetUnder500, models.Budget500To1K, models.BudgetOver20K, "bogus"}
	prices := []int{0, 499, 750, 4999, 25000, 1000000}

	for _, sector := range sectors {
		for _, budget := range budgets {
			for _, price := range prices {
				p := testProspect()
				p.Sector = sector
				p.EstimatedBudget = budget
				o := &models.Offering{Sector: models.SectorFinance, Price: price}

				first := Score(p, o)
				second := Score(p, o)

				assert.Equal(t, first, second)
				assert.GreaterOrEqual(t, first, 0)
				assert.LessOrEqual(t, first, 100)
			}
		}
	}
}

func TestBestOffering_PicksHighestScore(t *testing.T) {
	p := testProspect()
	offerings := []models.Offering{
		{ID: "o-1", Sector: models.SectorRetail, Price: 50},
		{ID: "o-2", Sector: models.SectorFinance, Price: 750},
		{ID: "o-3", Sector: models.SectorFinance, Price: 25000},
	}

	best, score, ok := BestOffering(p, offerings)

	assert.True(t, ok)
	assert.Equal(t, "o-2", best.ID)
	assert.Equal(t, 100, score)
}

func TestBestOffering_TieGoesToMostRecentlyScored(t *testing.T) {
	p := testProspect()
	offerings := []models.Offering{
		{ID: "o-1", Sector: models.SectorFinance, Price: 600},
		{ID: "o-2", Sector: models.SectorFinance, Price: 900},
	}

	best, score, ok := BestOffering(p, offerings)

	assert.True(t, ok)
	assert.Equal(t, "o-2", best.ID)
	assert.Equal(t, 100, score)
}

func TestBestOffering_EmptySlice(t *testing.T) {
	_, _, ok := BestOffering(testProspect(), nil)
	assert.False(t, ok)
}
