package precompute

import (
	"regexp"
	"strings"

	"github.com/joelkehle/sales-advisor/internal/dealsearch"
	"github.com/joelkehle/sales-advisor/internal/salesstats"
)

const maxExamples = 3

// keywordCategory maps one note pattern to its category name. Patterns are
// checked in declaration order and the first hit wins.
type keywordCategory struct {
	name     string
	patterns []*regexp.Regexp
}

func compileCategory(name string, keywords ...string) keywordCategory {
	cat := keywordCategory{name: name}
	for _, kw := range keywords {
		cat.patterns = append(cat.patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
	}
	return cat
}

var winDriverCategories = []keywordCategory{
	compileCategory("demo_success", "demo", "workshop", "pilot approval", "benchmark report", "success stories"),
	compileCategory("bundling_support", "bundled", "support package", "training package", "multi-year"),
	compileCategory("roi_evidence", "ROI", "reduced stockouts", "cost ROI", "workflow automation"),
	compileCategory("competitive_edge", "competitive edge", "superior", "expanded to include"),
}

var lossRiskCategories = []keywordCategory{
	compileCategory("pricing_high", "pricing too high", "budget cut", "pilot conversion low"),
	compileCategory("competitor", "competitor", "opted for", "undercut", "free tool", "free tier"),
	compileCategory("feature_mismatch", "mismatched", "priorities shifted", "new director favored", "abandoned post"),
	compileCategory("delays_stalls", "delays", "stalled", "awaiting", "scheduling conflicts"),
}

type noteReason struct {
	isWinDriver bool
	category    string
}

// classifyNote matches one note entry against the keyword taxonomy. Win
// drivers are checked before loss risks.
func classifyNote(entry string) (noteReason, bool) {
	for _, cat := range winDriverCategories {
		for _, re := range cat.patterns {
			if re.MatchString(entry) {
				return noteReason{isWinDriver: true, category: cat.name}, true
			}
		}
	}
	for _, cat := range lossRiskCategories {
		for _, re := range cat.patterns {
			if re.MatchString(entry) {
				return noteReason{isWinDriver: false, category: cat.name}, true
			}
		}
	}
	return noteReason{}, false
}

type categoryCounter struct {
	mentions int
	examples []string
	seen     map[string]bool
}

func (c *categoryCounter) add(snippet string) {
	c.mentions++
	if c.seen == nil {
		c.seen = map[string]bool{}
	}
	if !c.seen[snippet] {
		c.seen[snippet] = true
		if len(c.examples) < maxExamples {
			c.examples = append(c.examples, snippet)
		}
	}
}

type segmentCounts struct {
	totalWon   int
	totalLost  int
	winDrivers map[string]int
	lossRisks  map[string]int
}

// ComputeQualStats mines the pipe-separated deal notes into categorized win
// drivers and loss risks with frequencies relative to the won or lost deal
// counts. Segmented slices are keyed by product and by sector, and only count
// drivers on won deals and risks on lost ones.
func ComputeQualStats(rows []dealsearch.SourceRow) salesstats.QualStats {
	winCounters := map[string]*categoryCounter{}
	lossCounters := map[string]*categoryCounter{}
	totals := salesstats.QualTotals{}
	segments := map[string]*segmentCounts{}

	segmentFor := func(name string) *segmentCounts {
		seg, ok := segments[name]
		if !ok {
			seg = &segmentCounts{winDrivers: map[string]int{}, lossRisks: map[string]int{}}
			segments[name] = seg
		}
		return seg
	}

	for _, row := range rows {
		won := isWon(row.DealStage)
		for _, segName := range []string{row.Product, row.AccountSector} {
			seg := segmentFor(segName)
			if won {
				seg.totalWon++
			} else {
				seg.totalLost++
			}
		}

		notes := strings.TrimSpace(row.Notes)
		if notes == "" {
			continue
		}
		entries := splitNotes(notes)
		totals.TotalNotes += len(entries)
		if won {
			totals.TotalWon++
		} else {
			totals.TotalLost++
		}

		// Overall counters bucket by deal outcome, not by category type:
		// a loss-risk phrase in a won deal's notes still counts as a win
		// driver mention.
		stageCounters := winCounters
		if !won {
			stageCounters = lossCounters
		}
		for _, entry := range entries {
			reason, ok := classifyNote(entry)
			if !ok {
				continue
			}
			counter, exists := stageCounters[reason.category]
			if !exists {
				counter = &categoryCounter{}
				stageCounters[reason.category] = counter
			}
			counter.add(entry)

			if won == reason.isWinDriver {
				for _, segName := range []string{row.Product, row.AccountSector} {
					seg := segmentFor(segName)
					if reason.isWinDriver {
						seg.winDrivers[reason.category]++
					} else {
						seg.lossRisks[reason.category]++
					}
				}
			}
		}
	}

	out := salesstats.QualStats{
		WinDrivers: normalizeCounters(winCounters, totals.TotalWon),
		LossRisks:  normalizeCounters(lossCounters, totals.TotalLost),
		Overall:    totals,
		Segmented:  map[string]salesstats.QualSegment{},
	}
	for name, seg := range segments {
		if len(seg.winDrivers) == 0 && len(seg.lossRisks) == 0 {
			continue
		}
		out.Segmented[name] = salesstats.QualSegment{
			WinDrivers: normalizeSegment(seg.winDrivers, seg.totalWon),
			LossRisks:  normalizeSegment(seg.lossRisks, seg.totalLost),
		}
	}
	return out
}

func splitNotes(notes string) []string {
	parts := strings.Split(notes, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeCounters(counters map[string]*categoryCounter, denom int) map[string]salesstats.QualitativeCategory {
	out := map[string]salesstats.QualitativeCategory{}
	for category, counter := range counters {
		freq := 0.0
		if denom > 0 {
			freq = float64(counter.mentions) / float64(denom)
		}
		out[category] = salesstats.QualitativeCategory{
			Frequency: freq,
			Count:     counter.mentions,
			Examples:  counter.examples,
		}
	}
	return out
}

func normalizeSegment(counts map[string]int, denom int) map[string]salesstats.QualitativeCategory {
	out := map[string]salesstats.QualitativeCategory{}
	for category, count := range counts {
		freq := 0.0
		if denom > 0 {
			freq = float64(count) / float64(denom)
		}
		out[category] = salesstats.QualitativeCategory{Frequency: freq, Count: count}
	}
	return out
}
