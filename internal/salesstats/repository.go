package salesstats

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

const liftTolerance = 1e-9

// Repository holds the immutable statistics tables loaded once at process
// startup. All assembly reads values out of it; nothing mutates it after
// Load returns.
type Repository struct {
	quant QuantStats
	qual  QualStats
}

// Load reads the quantitative and qualitative statistics files. Any missing
// file, malformed JSON, or violated invariant is fatal: the advisor cannot
// operate on empty tables.
func Load(quantPath, qualPath string) (*Repository, error) {
	var repo Repository
	if err := readJSON(quantPath, &repo.quant); err != nil {
		return nil, fmt.Errorf("load quantitative stats: %w", err)
	}
	if err := readJSON(qualPath, &repo.qual); err != nil {
		return nil, fmt.Errorf("load qualitative stats: %w", err)
	}
	if err := repo.validate(); err != nil {
		return nil, fmt.Errorf("validate stats: %w", err)
	}
	return &repo, nil
}

// NewRepository wraps already-decoded tables, validating the same invariants
// as Load. Used by tests and by the stats precompute path.
func NewRepository(quant QuantStats, qual QualStats) (*Repository, error) {
	repo := &Repository{quant: quant, qual: qual}
	if err := repo.validate(); err != nil {
		return nil, err
	}
	return repo, nil
}

func readJSON(path string, dst any) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(blob, dst)
}

func (r *Repository) validate() error {
	if r.quant.OverallWinRate <= 0 || r.quant.OverallWinRate > 1 {
		return fmt.Errorf("overall_win_rate %v out of range (0,1]", r.quant.OverallWinRate)
	}
	for name, table := range map[string]DimensionTable{
		"product":        r.quant.Product,
		"account_sector": r.quant.AccountSector,
		"account_region": r.quant.AccountRegion,
		"sales_rep":      r.quant.SalesRep,
	} {
		if len(table.WinRate) == 0 {
			return fmt.Errorf("dimension %s has no win_rate entries", name)
		}
		for key, wr := range table.WinRate {
			lift, ok := table.Lift[key]
			if !ok {
				return fmt.Errorf("dimension %s key %q has win_rate but no lift", name, key)
			}
			if math.Abs(lift-wr/r.quant.OverallWinRate) > liftTolerance {
				return fmt.Errorf("dimension %s key %q violates lift invariant: lift=%v win_rate=%v baseline=%v",
					name, key, lift, wr, r.quant.OverallWinRate)
			}
		}
	}
	return nil
}

func (r *Repository) OverallWinRate() float64 { return r.quant.OverallWinRate }

func (r *Repository) Quant() QuantStats { return r.quant }

func (r *Repository) Qual() QualStats { return r.qual }
