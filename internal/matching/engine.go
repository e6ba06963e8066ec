// internal/matching/engine.go
package matching

import (
	"outreach-engine/internal/models"
)

// Scoring policy. A score starts from the base, gains a fixed bonus for a
// sector match and a graduated bonus for the offering price landing in or
// near the prospect's budget bucket, then is clamped to [0,100].
const (
	baseScore = 40

	sectorMatchBonus = 30

	budgetExactBonus    = 30
	budgetAdjacentBonus = 15
)

// Score computes the compatibility score between a prospect and an
// offering. It is pure and deterministic: the same inputs always produce
// the same score, and the result is always within [0,100]. Unknown
// sector or budget values score as the no-match case rather than erroring.
func Score(p *models.Prospect, o *models.Offering) int {
	score := baseScore

	if p.Sector != "" && p.Sector == o.Sector {
		score += sectorMatchBonus
	}

	score += budgetFit(p.EstimatedBudget, o.Price)

	return clamp(score, 0, 100)
}

// budgetFit grades how well the offering price sits against the
// prospect's budget bucket: full bonus inside the bucket, partial bonus
// within one bucket of distance, zero otherwise.
func budgetFit(budget models.BudgetBucket, price int) int {
	budgetIdx := budget.Index()
	if budgetIdx < 0 {
		// Unlisted bucket: no budget information, no bonus.
		return 0
	}

	priceIdx := models.BucketForPrice(price).Index()
	distance := budgetIdx - priceIdx
	if distance < 0 {
		distance = -distance
	}

	switch distance {
	case 0:
		return budgetExactBonus
	case 1:
		return budgetAdjacentBonus
	default:
		return 0
	}
}

// BestOffering scores every offering against the prospect and returns
// the best one. Ties are resolved in favor of the most recently scored
// offering, i.e. the later entry in the slice wins. ok is false when the
// slice is empty.
func BestOffering(p *models.Prospect, offerings []models.Offering) (best models.Offering, score int, ok bool) {
	for _, o := range offerings {
		s := Score(p, &o)
		if !ok || s >= score {
			best = o
			score = s
			ok = true
		}
	}
	return best, score, ok
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
