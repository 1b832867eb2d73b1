package salesstats

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnparsableUplift marks an uplift estimation whose response could not be
// read as a number. The assembler recovers from it locally; transport
// failures are anything else and propagate to the caller.
var ErrUnparsableUplift = errors.New("uplift estimate not parsable")

// UpliftEstimator estimates the win-rate uplift (as a percentage) of
// addressing the top loss risk. Production wires an LLM-backed
// implementation; tests substitute a deterministic stub.
type UpliftEstimator interface {
	EstimateUplift(ctx context.Context, risk string, frequency float64, sector string) (float64, error)
}

// Assembler composes the lookup, simulation, qualitative, and ranking steps
// into the final relevant-stats evidence package. It is safe for concurrent
// use: all state is the immutable repository plus the injected estimator.
type Assembler struct {
	repo            *Repository
	uplift          UpliftEstimator
	topAlternatives int
	topReps         int
}

func NewAssembler(repo *Repository, uplift UpliftEstimator) *Assembler {
	return &Assembler{
		repo:            repo,
		uplift:          uplift,
		topAlternatives: DefaultTopAlternatives,
		topReps:         DefaultTopReps,
	}
}

// Assemble builds a fresh RelevantStats for one opportunity. Unrecognized
// attribute values never fail the assembly; they degrade to top alternatives.
func (a *Assembler) Assemble(ctx context.Context, attrs OpportunityAttributes) (*RelevantStats, error) {
	quant := a.repo.Quant()
	baseline := quant.OverallWinRate

	out := &RelevantStats{
		OverallWinRate: baseline,
		AvgCycleDays:   quant.AvgCycleDays,
		Correlations:   copyFloatMap(quant.Correlations),
		Simulations:    []Simulation{},
	}

	product := GetDimensionStats(attrs.Product, quant.Product, a.topAlternatives)
	sector := GetDimensionStats(attrs.Sector, quant.AccountSector, a.topAlternatives)
	region := GetDimensionStats(attrs.Region, quant.AccountRegion, a.topAlternatives)
	rep := GetDimensionStats(attrs.CurrentRep, quant.SalesRep, a.topAlternatives)

	var productOrder []string
	out.Products, productOrder = dimensionMap(product)
	out.AvgRevenueByProduct = map[string]float64{}
	for name := range out.Products {
		out.AvgRevenueByProduct[name] = quant.AvgRevenueByProduct[name]
	}
	out.Sector, _ = dimensionMap(sector)
	out.Region, _ = dimensionMap(region)

	if rep.Matched != nil {
		out.CurrentRep = &RepRecord{
			Name:       rep.MatchedKey,
			WinRate:    rep.Matched.WinRate,
			Lift:       rep.Matched.Lift,
			SampleSize: rep.Matched.SampleSize,
		}
	}
	out.TopReps = TopReps(quant.SalesRep, a.topReps)

	// Combinations anchor on the sector; without a resolved sector (or a
	// resolved product to pair it with) the component is skipped.
	if sector.Matched != nil && product.Matched != nil {
		combo := GetComboStats(product.MatchedKey, sector.MatchedKey, quant.ProductSectorWinRates, a.topAlternatives)
		out.ProductSector = map[string]float64{}
		if combo.Matched != nil {
			out.ProductSector[combo.MatchedKey] = *combo.Matched
		}
		for key, wr := range combo.Alternatives {
			out.ProductSector[key] = wr
		}
	}

	out.Simulations = BuildSimulations(baseline, sector, out.Products, productOrder, out.AvgRevenueByProduct, out.TopReps)

	var qualSector *string
	if sector.Matched != nil {
		key := sector.MatchedKey
		qualSector = &key
	} else {
		qualSector = attrs.Sector
	}
	out.QualitativeInsights = SelectQualitativeInsights(qualSector, a.repo.Qual())

	if topRisk, ok := TopLossRisk(out.QualitativeInsights); ok {
		sectorName := ""
		if sector.Matched != nil {
			sectorName = sector.MatchedKey
		}
		estimate, err := a.uplift.EstimateUplift(ctx, topRisk.Category, topRisk.Frequency, sectorName)
		switch {
		case err == nil:
			out.QualLiftEstimate = &estimate
			out.Simulations = append(out.Simulations, QualRiskSimulation(baseline, topRisk.Category, estimate))
		case errors.Is(err, ErrUnparsableUplift):
			fallback := (1 - topRisk.Frequency) * 10
			out.QualLiftEstimate = &fallback
		default:
			return nil, fmt.Errorf("uplift estimation: %w", err)
		}
	}

	if attrs.SalesPrice != nil {
		out.PriceInsight = fmt.Sprintf(
			"Current price %v: Correlation with win rate %.4f (negative suggests lower price may help).",
			*attrs.SalesPrice, quant.Correlations["sales_price"])
	}
	if attrs.ExpectedRevenue != nil {
		out.RevenueInsight = fmt.Sprintf(
			"Expected revenue %v: Compare to product avgs for uplift potential.", *attrs.ExpectedRevenue)
	}

	SortSimulations(out.Simulations)
	out.WinProbabilityImprovements = BuildImprovements(out.Simulations)
	return out, nil
}

// dimensionMap collapses a lookup result into the keyed output map plus a
// deterministic order (match first, then alternatives by rank) for the
// simulation builder.
func dimensionMap(stats DimensionStats) (map[string]WinRateRecord, []string) {
	out := map[string]WinRateRecord{}
	order := []string{}
	if stats.Matched != nil {
		out[stats.MatchedKey] = *stats.Matched
		order = append(order, stats.MatchedKey)
	}
	for _, alt := range stats.Alternatives {
		out[alt.Key] = alt.Record
		order = append(order, alt.Key)
	}
	return out, order
}

func copyFloatMap(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
