package precompute

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/joelkehle/sales-advisor/internal/dealsearch"
	"github.com/joelkehle/sales-advisor/internal/salesstats"
)

// ComputeQuantStats aggregates the opportunity export into the quantitative
// statistics file the advisory pipeline loads at startup. Lifts are computed
// exactly from the win rates so the loader's consistency check holds.
func ComputeQuantStats(rows []dealsearch.SourceRow) (salesstats.QuantStats, error) {
	if len(rows) == 0 {
		return salesstats.QuantStats{}, fmt.Errorf("no rows to aggregate")
	}
	won := 0
	for _, row := range rows {
		if isWon(row.DealStage) {
			won++
		}
	}
	overall := float64(won) / float64(len(rows))
	if overall == 0 {
		return salesstats.QuantStats{}, fmt.Errorf("no won deals, lifts undefined")
	}

	out := salesstats.QuantStats{
		OverallWinRate: overall,
		Product:        dimensionTable(rows, overall, func(r dealsearch.SourceRow) string { return r.Product }, false),
		AccountSector:  dimensionTable(rows, overall, func(r dealsearch.SourceRow) string { return r.AccountSector }, false),
		AccountRegion:  dimensionTable(rows, overall, func(r dealsearch.SourceRow) string { return r.AccountRegion }, false),
		SalesRep:       dimensionTable(rows, overall, func(r dealsearch.SourceRow) string { return r.SalesRep }, true),
	}

	out.ProductSectorWinRates = map[string]float64{}
	comboWon := map[string]int{}
	comboTotal := map[string]int{}
	for _, row := range rows {
		key := row.Product + "_" + row.AccountSector
		comboTotal[key]++
		if isWon(row.DealStage) {
			comboWon[key]++
		}
	}
	for key, total := range comboTotal {
		out.ProductSectorWinRates[key] = float64(comboWon[key]) / float64(total)
	}

	out.AvgRevenueByProduct = map[string]float64{}
	revenueSum := map[string]float64{}
	revenueCount := map[string]int{}
	for _, row := range rows {
		if !isWon(row.DealStage) {
			continue
		}
		revenueSum[row.Product] += row.RevenueFromDeal
		revenueCount[row.Product]++
	}
	for product, sum := range revenueSum {
		out.AvgRevenueByProduct[product] = sum / float64(revenueCount[product])
	}

	out.Correlations = correlations(rows)
	out.AvgCycleDays = avgCycleDays(rows)
	return out, nil
}

func isWon(stage string) bool {
	return strings.EqualFold(strings.TrimSpace(stage), "won")
}

func dimensionTable(rows []dealsearch.SourceRow, overall float64, keyOf func(dealsearch.SourceRow) string, withSamples bool) salesstats.DimensionTable {
	wonBy := map[string]int{}
	totalBy := map[string]int{}
	for _, row := range rows {
		key := strings.TrimSpace(keyOf(row))
		if key == "" {
			continue
		}
		totalBy[key]++
		if isWon(row.DealStage) {
			wonBy[key]++
		}
	}
	table := salesstats.DimensionTable{
		WinRate: map[string]float64{},
		Lift:    map[string]float64{},
	}
	if withSamples {
		table.SampleSize = map[string]int{}
	}
	for key, total := range totalBy {
		rate := float64(wonBy[key]) / float64(total)
		table.WinRate[key] = rate
		table.Lift[key] = rate / overall
		if withSamples {
			table.SampleSize[key] = total
		}
	}
	return table
}

// correlations measures how each numeric deal attribute moves with the win
// outcome across the whole export.
func correlations(rows []dealsearch.SourceRow) map[string]float64 {
	outcome := make([]float64, len(rows))
	for i, row := range rows {
		if isWon(row.DealStage) {
			outcome[i] = 1
		}
	}
	series := map[string]func(dealsearch.SourceRow) float64{
		"sales_price":     func(r dealsearch.SourceRow) float64 { return r.SalesPrice },
		"account_size":    func(r dealsearch.SourceRow) float64 { return r.AccountSize },
		"account_revenue": func(r dealsearch.SourceRow) float64 { return r.AccountRevenue },
	}
	out := map[string]float64{}
	for name, valueOf := range series {
		values := make([]float64, len(rows))
		for i, row := range rows {
			values[i] = valueOf(row)
		}
		out[name] = stat.Correlation(values, outcome, nil)
	}
	return out
}

func avgCycleDays(rows []dealsearch.SourceRow) salesstats.CycleDays {
	var wonSum, lostSum float64
	var wonN, lostN int
	for _, row := range rows {
		days, ok := dealsearch.SalesCycleDuration(row.DealEngageDate, row.DealCloseDate)
		if !ok {
			continue
		}
		if isWon(row.DealStage) {
			wonSum += days
			wonN++
		} else {
			lostSum += days
			lostN++
		}
	}
	out := salesstats.CycleDays{}
	if wonN > 0 {
		out.Won = wonSum / float64(wonN)
	}
	if lostN > 0 {
		out.Lost = lostSum / float64(lostN)
	}
	return out
}
