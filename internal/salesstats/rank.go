package salesstats

import (
	"fmt"
	"sort"
	"strings"
)

// SortSimulations orders simulations by uplift descending. The sort is
// stable: ties keep their construction order, which is what makes repeated
// assemblies byte-identical.
func SortSimulations(sims []Simulation) {
	sort.SliceStable(sims, func(i, j int) bool {
		return sims[i].UpliftPercent > sims[j].UpliftPercent
	})
}

// BuildImprovements derives the fixed top-3 list from the already-sorted
// simulations. The downstream prompt consumes these positionally, so rank is
// both the slice index and an explicit field.
func BuildImprovements(sorted []Simulation) []WinProbabilityImprovement {
	n := TopImprovements
	if len(sorted) < n {
		n = len(sorted)
	}
	out := make([]WinProbabilityImprovement, 0, n)
	for i := 0; i < n; i++ {
		sim := sorted[i]
		source := SourceQuantitative
		if sim.FromQual {
			source = SourceQualitative
		}
		confidence := sim.Confidence
		if confidence == "" {
			confidence = ConfidenceMedium
		}
		out = append(out, WinProbabilityImprovement{
			Rank:           i + 1,
			Recommendation: sim.Description,
			UpliftPercent:  sim.UpliftPercent,
			Confidence:     confidence,
			SourceType:     source,
			Explanation: fmt.Sprintf("This recommendation is based on %s showing %.2f%% improvement in win rate.",
				strings.ToLower(string(source)), sim.UpliftPercent),
		})
	}
	return out
}
