// cmd/tools/prospect-seeder/main.go
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"outreach-engine/internal/common/config"
	"outreach-engine/internal/common/logger"
	"outreach-engine/internal/matching"
	"outreach-engine/internal/models"
	"outreach-engine/internal/outreach"
)

var (
	sectors = []models.Sector{
		models.SectorFinance, models.SectorHealth, models.SectorCommerce,
		models.SectorEducation, models.SectorLogistics, models.SectorRetail,
	}
	budgets = []models.BudgetBucket{
		models.BudgetUnder500, models.Budget500To1K, models.Budget1KTo5K,
		models.Budget5KTo20K, models.BudgetOver20K,
	}
	sizes = []models.CompanySize{models.SizeSmall, models.SizeMedium, models.SizeLarge}

	needsPool = []string{
		"needs better reporting",
		"wants to automate invoicing",
		"looking for customer analytics",
		"scaling support operations",
		"",
	}
)

func main() {
	owner := flag.String("owner", "", "owner id to seed prospects for (required)")
	count := flag.Int("count", 50, "number of prospects to insert")
	dsn := flag.String("dsn", "", "postgres DSN; falls back to the configured database")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed, set for reproducible data")
	flag.Parse()

	if *owner == "" {
		fmt.Fprintln(os.Stderr, "Error: -owner is required")
		flag.Usage()
		os.Exit(1)
	}
	if *count <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -count must be positive")
		os.Exit(1)
	}

	connStr := *dsn
	if connStr == "" {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: no -dsn given and config load failed: %v\n", err)
			os.Exit(1)
		}
		connStr = cfg.Database.Postgres.GetDSN()
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: database unreachable: %v\n", err)
		os.Exit(1)
	}

	store := outreach.NewStore(db, logger.NewNoOpLogger())
	rng := rand.New(rand.NewSource(*seed))

	inserted, err := seedProspects(ctx, store, *owner, *count, rng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Printf("Inserted %d prospects before failure\n", inserted)
		os.Exit(1)
	}

	fmt.Printf("Inserted %d prospects for owner %s\n", inserted, *owner)
}

// seedStore is the slice of the prospect store the seeder needs.
type seedStore interface {
	ListOfferings(ctx context.Context, ownerID string) ([]models.Offering, error)
	UpsertProspect(ctx context.Context, p *models.Prospect) error
}

// seedProspects inserts count synthetic prospects for one owner, scoring
// each against the owner's offerings so a fresh environment is
// immediately browsable in the console. It stops at the first failed
// insert and returns how many made it in.
func seedProspects(ctx context.Context, store seedStore, owner string, count int, rng *rand.Rand) (int, error) {
	offerings, err := store.ListOfferings(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("list offerings: %w", err)
	}

	for i := 0; i < count; i++ {
		p := synthesizeProspect(rng, owner, i)
		if _, score, ok := matching.BestOffering(p, offerings); ok {
			p.CompatibilityScore = score
		}

		if err := store.UpsertProspect(ctx, p); err != nil {
			return i, fmt.Errorf("insert prospect %d of %d: %w", i+1, count, err)
		}
	}
	return count, nil
}

func synthesizeProspect(rng *rand.Rand, owner string, n int) *models.Prospect {
	return &models.Prospect{
		ID:              uuid.NewString(),
		OwnerID:         owner,
		Name:            fmt.Sprintf("Seed Prospect %03d", n+1),
		Sector:          sectors[rng.Intn(len(sectors))],
		EstimatedBudget: budgets[rng.Intn(len(budgets))],
		CompanySize:     sizes[rng.Intn(len(sizes))],
		Needs:           needsPool[rng.Intn(len(needsPool))],
	}
}
