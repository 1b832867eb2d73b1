package salesstats

import "fmt"

// BuildSimulations turns resolved dimension stats into what-if scenarios.
// Construction order is sector, products, reps; ranking happens later in
// SortSimulations. A dimension with no data simply contributes nothing.
func BuildSimulations(baseline float64, sector DimensionStats, products map[string]WinRateRecord, productOrder []string, avgRevenue map[string]float64, topReps []RepRecord) []Simulation {
	sims := []Simulation{}

	if sector.Matched != nil {
		sims = append(sims, Simulation{
			Description:      fmt.Sprintf("Baseline adjusted for %s sector", sector.MatchedKey),
			EstimatedWinRate: baseline * sector.Matched.Lift,
			UpliftPercent:    (sector.Matched.Lift - 1) * 100,
		})
	}

	for _, name := range productOrder {
		rec, ok := products[name]
		if !ok {
			continue
		}
		revenue := avgRevenue[name]
		sims = append(sims, Simulation{
			Description:      fmt.Sprintf("Switch to %s", name),
			EstimatedWinRate: baseline * rec.Lift,
			UpliftPercent:    (rec.Lift - 1) * 100,
			RevenueEstimate:  &revenue,
		})
	}

	for _, rep := range topReps {
		confidence := ConfidenceMedium
		if rep.SampleSize > HighConfidenceSampleSize {
			confidence = ConfidenceHigh
		}
		sims = append(sims, Simulation{
			Description:      fmt.Sprintf("Assign to %s", rep.Name),
			EstimatedWinRate: baseline * rep.Lift,
			UpliftPercent:    (rep.Lift - 1) * 100,
			Confidence:       confidence,
		})
	}
	return sims
}

// QualRiskSimulation builds the simulation appended when the uplift estimator
// returned a usable percentage for the top loss risk.
func QualRiskSimulation(baseline float64, risk string, upliftPercent float64) Simulation {
	return Simulation{
		Description:      fmt.Sprintf("Address top qual risk '%s'", risk),
		EstimatedWinRate: baseline * (1 + upliftPercent/100),
		UpliftPercent:    upliftPercent,
		FromQual:         true,
	}
}
