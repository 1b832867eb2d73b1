package salesstats

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validQuant() QuantStats {
	baseline := 0.6
	return QuantStats{
		OverallWinRate: baseline,
		AvgCycleDays:   CycleDays{Won: 42.5, Lost: 61.0},
		Correlations:   map[string]float64{"sales_price": -0.32, "expected_revenue": 0.18},
		Product: sampleDimension(baseline, map[string]float64{
			"GTX Plus Pro": 0.72, "MG Special": 0.64, "GTK 500": 0.55,
		}),
		AccountSector: sampleDimension(baseline, map[string]float64{
			"Finance": 0.61, "Retail": 0.70, "Medical": 0.66,
		}),
		AccountRegion: sampleDimension(baseline, map[string]float64{
			"Americas": 0.63, "EMEA": 0.58,
		}),
		SalesRep: DimensionTable{
			WinRate:    map[string]float64{"Vera": 0.72, "James": 0.60},
			Lift:       map[string]float64{"Vera": 0.72 / baseline, "James": 1.0},
			SampleSize: map[string]int{"Vera": 250, "James": 120},
		},
		ProductSectorWinRates: map[string]float64{
			"GTX Plus Pro_Finance": 0.74, "MG Special_Finance": 0.60,
		},
		AvgRevenueByProduct: map[string]float64{
			"GTX Plus Pro": 98000, "MG Special": 54000, "GTK 500": 31000,
		},
	}
}

func validQual() QualStats {
	return QualStats{
		WinDrivers: map[string]QualitativeCategory{
			"good price":    {Frequency: 0.30, Count: 30, Examples: []string{"pricing was competitive"}},
			"fast delivery": {Frequency: 0.22, Count: 22},
			"strong demo":   {Frequency: 0.15, Count: 15},
			"referral":      {Frequency: 0.12, Count: 12},
			"rare driver":   {Frequency: 0.05, Count: 5},
		},
		LossRisks: map[string]QualitativeCategory{
			"price too high": {Frequency: 0.40, Count: 40, Examples: []string{"lost on price"}},
			"slow response":  {Frequency: 0.20, Count: 20},
			"rare risk":      {Frequency: 0.08, Count: 8},
		},
		Overall: QualTotals{TotalWon: 100, TotalLost: 100, TotalNotes: 200},
		Segmented: map[string]QualSegment{
			"Finance": {
				WinDrivers: map[string]QualitativeCategory{
					"compliance fit": {Frequency: 0.35, Count: 14},
					"rare driver":    {Frequency: 0.02, Count: 1},
				},
				LossRisks: map[string]QualitativeCategory{
					"audit concerns": {Frequency: 0.25, Count: 10},
				},
			},
		},
	}
}

func TestNewRepositoryAcceptsValidStats(t *testing.T) {
	if _, err := NewRepository(validQuant(), validQual()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewRepositoryRejectsBadBaseline(t *testing.T) {
	quant := validQuant()
	quant.OverallWinRate = 0
	if _, err := NewRepository(quant, validQual()); err == nil {
		t.Fatal("expected error for zero overall_win_rate")
	}
	quant.OverallWinRate = 1.2
	if _, err := NewRepository(quant, validQual()); err == nil {
		t.Fatal("expected error for overall_win_rate above 1")
	}
}

func TestNewRepositoryRejectsLiftInvariantViolation(t *testing.T) {
	quant := validQuant()
	quant.Product.Lift["GTX Plus Pro"] = 1.5
	_, err := NewRepository(quant, validQual())
	if err == nil {
		t.Fatal("expected lift invariant violation")
	}
	if !strings.Contains(err.Error(), "lift invariant") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewRepositoryRejectsEmptyDimension(t *testing.T) {
	quant := validQuant()
	quant.AccountRegion = DimensionTable{WinRate: map[string]float64{}, Lift: map[string]float64{}}
	if _, err := NewRepository(quant, validQual()); err == nil {
		t.Fatal("expected error for empty dimension")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.json"), filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for missing stats file")
	}
}

func TestLoadMalformedJSONFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quant.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
