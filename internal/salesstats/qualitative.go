package salesstats

import "sort"

// SelectQualitativeInsights picks the win drivers and loss risks for the
// opportunity. A resolved sector uses that sector's pre-normalized segment
// counts; anything else degrades to the overall top-3 per bucket. Categories
// at or below the significance threshold are dropped before ranking.
func SelectQualitativeInsights(sector *string, qual QualStats) QualitativeInsights {
	if segKey, ok := canonicalKeyPtr(sector, qual.Segmented); ok {
		seg := qual.Segmented[segKey]
		return QualitativeInsights{
			WinDrivers: significantEntries(seg.WinDrivers, 0),
			LossRisks:  significantEntries(seg.LossRisks, 0),
		}
	}
	return QualitativeInsights{
		WinDrivers: significantEntries(qual.WinDrivers, 3),
		LossRisks:  significantEntries(qual.LossRisks, 3),
	}
}

// significantEntries filters categories above the significance threshold and
// orders them by frequency descending, category ascending on ties. A topN of
// 0 keeps every significant category.
func significantEntries(categories map[string]QualitativeCategory, topN int) []QualitativeEntry {
	out := []QualitativeEntry{}
	for name, cat := range categories {
		if cat.Frequency <= SignificanceThreshold {
			continue
		}
		out = append(out, QualitativeEntry{
			Category:  name,
			Frequency: cat.Frequency,
			Count:     cat.Count,
			Examples:  cat.Examples,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Category < out[j].Category
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// TopLossRisk returns the highest-frequency loss risk, if any. Entries are
// already sorted, so rank 0 is the answer.
func TopLossRisk(insights QualitativeInsights) (QualitativeEntry, bool) {
	if len(insights.LossRisks) == 0 {
		return QualitativeEntry{}, false
	}
	return insights.LossRisks[0], true
}
