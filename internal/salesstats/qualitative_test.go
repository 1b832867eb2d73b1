package salesstats

import "testing"

func TestSelectQualitativeInsightsOverallTopThree(t *testing.T) {
	insights := SelectQualitativeInsights(nil, validQual())
	if len(insights.WinDrivers) != 3 {
		t.Fatalf("expected 3 win drivers, got %d", len(insights.WinDrivers))
	}
	want := []string{"good price", "fast delivery", "strong demo"}
	for i, entry := range insights.WinDrivers {
		if entry.Category != want[i] {
			t.Fatalf("win driver %d: expected %s, got %s", i, want[i], entry.Category)
		}
	}
	if len(insights.LossRisks) != 2 {
		t.Fatalf("expected 2 significant loss risks, got %d", len(insights.LossRisks))
	}
	if insights.LossRisks[0].Category != "price too high" {
		t.Fatalf("unexpected top loss risk %s", insights.LossRisks[0].Category)
	}
}

func TestSelectQualitativeInsightsSignificanceThreshold(t *testing.T) {
	insights := SelectQualitativeInsights(nil, validQual())
	for _, entry := range insights.LossRisks {
		if entry.Frequency <= SignificanceThreshold {
			t.Fatalf("category %s below threshold leaked through", entry.Category)
		}
	}
}

func TestSelectQualitativeInsightsSegmented(t *testing.T) {
	sector := "finance"
	insights := SelectQualitativeInsights(&sector, validQual())
	if len(insights.WinDrivers) != 1 || insights.WinDrivers[0].Category != "compliance fit" {
		t.Fatalf("expected segment-only win drivers, got %+v", insights.WinDrivers)
	}
	if len(insights.LossRisks) != 1 || insights.LossRisks[0].Category != "audit concerns" {
		t.Fatalf("expected segment-only loss risks, got %+v", insights.LossRisks)
	}
}

func TestSelectQualitativeInsightsUnknownSectorFallsBack(t *testing.T) {
	sector := "Aerospace"
	insights := SelectQualitativeInsights(&sector, validQual())
	if len(insights.WinDrivers) != 3 {
		t.Fatalf("unknown sector must fall back to overall top-3, got %d drivers", len(insights.WinDrivers))
	}
}

func TestSignificantEntriesTieBreaksOnCategory(t *testing.T) {
	categories := map[string]QualitativeCategory{
		"zeta":  {Frequency: 0.2, Count: 2},
		"alpha": {Frequency: 0.2, Count: 2},
		"mid":   {Frequency: 0.2, Count: 2},
	}
	entries := significantEntries(categories, 0)
	want := []string{"alpha", "mid", "zeta"}
	for i, entry := range entries {
		if entry.Category != want[i] {
			t.Fatalf("entry %d: expected %s, got %s", i, want[i], entry.Category)
		}
	}
}

func TestTopLossRisk(t *testing.T) {
	if _, ok := TopLossRisk(QualitativeInsights{}); ok {
		t.Fatal("no loss risks must report absence")
	}
	insights := SelectQualitativeInsights(nil, validQual())
	risk, ok := TopLossRisk(insights)
	if !ok || risk.Category != "price too high" {
		t.Fatalf("unexpected top risk: %+v ok=%v", risk, ok)
	}
}
