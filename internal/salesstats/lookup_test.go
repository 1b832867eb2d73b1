package salesstats

import "testing"

func sampleDimension(baseline float64, winRates map[string]float64) DimensionTable {
	table := DimensionTable{WinRate: map[string]float64{}, Lift: map[string]float64{}}
	for key, wr := range winRates {
		table.WinRate[key] = wr
		table.Lift[key] = wr / baseline
	}
	return table
}

func strPtr(s string) *string { return &s }

func TestCanonicalKeyCaseInsensitive(t *testing.T) {
	table := map[string]float64{"Finance": 0.61, "Marketing": 0.65}
	for _, input := range []string{"finance", "FINANCE", "Finance", " finance "} {
		key, ok := CanonicalKey(input, table)
		if !ok {
			t.Fatalf("expected %q to resolve", input)
		}
		if key != "Finance" {
			t.Fatalf("expected canonical key Finance, got %q", key)
		}
	}
}

func TestCanonicalKeyMisses(t *testing.T) {
	table := map[string]float64{"Finance": 0.61}
	if _, ok := CanonicalKey("", table); ok {
		t.Fatal("empty search must not resolve")
	}
	if _, ok := CanonicalKey("Retail", table); ok {
		t.Fatal("absent key must not resolve")
	}
	if _, ok := CanonicalKey("Finance", map[string]float64{}); ok {
		t.Fatal("empty table must not resolve")
	}
}

func TestGetDimensionStatsMatchedWithAlternatives(t *testing.T) {
	table := sampleDimension(0.6, map[string]float64{
		"Alpha": 0.69, "Beta": 0.66, "Gamma": 0.63, "Delta": 0.60, "Epsilon": 0.54,
	})
	stats := GetDimensionStats(strPtr("alpha"), table, 3)
	if stats.Matched == nil || stats.MatchedKey != "Alpha" {
		t.Fatalf("expected Alpha match, got %+v", stats)
	}
	if len(stats.Alternatives) != 3 {
		t.Fatalf("expected 3 alternatives, got %d", len(stats.Alternatives))
	}
	want := []string{"Beta", "Gamma", "Delta"}
	for i, alt := range stats.Alternatives {
		if alt.Key != want[i] {
			t.Fatalf("alternative %d: expected %s, got %s", i, want[i], alt.Key)
		}
	}
}

func TestGetDimensionStatsUnresolvedDegradesToGlobalTop(t *testing.T) {
	table := sampleDimension(0.6, map[string]float64{
		"Retail": 0.72, "Finance": 0.61, "Medical": 0.66, "Software": 0.58,
	})
	stats := GetDimensionStats(strPtr("Widgets"), table, 3)
	if stats.Matched != nil {
		t.Fatal("expected no match for unknown sector")
	}
	if len(stats.Alternatives) != 3 {
		t.Fatalf("expected 3 alternatives, got %d", len(stats.Alternatives))
	}
	want := []string{"Retail", "Medical", "Finance"}
	for i, alt := range stats.Alternatives {
		if alt.Key != want[i] {
			t.Fatalf("alternative %d: expected %s, got %s", i, want[i], alt.Key)
		}
	}
}

func TestGetDimensionStatsNilSearch(t *testing.T) {
	table := sampleDimension(0.6, map[string]float64{"Alpha": 0.69, "Beta": 0.66})
	stats := GetDimensionStats(nil, table, 3)
	if stats.Matched != nil {
		t.Fatal("nil search must not match")
	}
	if len(stats.Alternatives) != 2 {
		t.Fatalf("expected all keys as alternatives, got %d", len(stats.Alternatives))
	}
}

func TestGetDimensionStatsLiftTieBreaksOnKey(t *testing.T) {
	table := sampleDimension(0.6, map[string]float64{"Zed": 0.66, "Ann": 0.66, "Mid": 0.66})
	stats := GetDimensionStats(nil, table, 3)
	want := []string{"Ann", "Mid", "Zed"}
	for i, alt := range stats.Alternatives {
		if alt.Key != want[i] {
			t.Fatalf("alternative %d: expected %s, got %s", i, want[i], alt.Key)
		}
	}
}

func TestTopRepsAlwaysFive(t *testing.T) {
	table := DimensionTable{
		WinRate:    map[string]float64{"A": 0.7, "B": 0.68, "C": 0.66, "D": 0.64, "E": 0.62, "F": 0.60},
		Lift:       map[string]float64{"A": 7.0 / 6, "B": 6.8 / 6, "C": 6.6 / 6, "D": 6.4 / 6, "E": 6.2 / 6, "F": 1.0},
		SampleSize: map[string]int{"A": 300, "B": 100, "C": 250, "D": 80, "E": 40, "F": 500},
	}
	reps := TopReps(table, 5)
	if len(reps) != 5 {
		t.Fatalf("expected 5 reps, got %d", len(reps))
	}
	if reps[0].Name != "A" || reps[0].SampleSize != 300 {
		t.Fatalf("unexpected top rep: %+v", reps[0])
	}
	for i := 1; i < len(reps); i++ {
		if reps[i].Lift > reps[i-1].Lift {
			t.Fatal("reps not sorted by lift descending")
		}
	}
}

func TestComboProductUnderscoreInProduct(t *testing.T) {
	// Product names may contain underscores, so only the trailing sector
	// segment is stripped.
	product, ok := comboProduct("MG_Special_Finance", "Finance")
	if !ok || product != "MG_Special" {
		t.Fatalf("unexpected product: %q ok=%v", product, ok)
	}
	product, ok = comboProduct("MG_Special_Finance", "Special_Finance")
	if !ok || product != "MG" {
		t.Fatalf("unexpected product: %q ok=%v", product, ok)
	}
	if _, ok := comboProduct("MG_Retail", "Finance"); ok {
		t.Fatal("different sector must not match")
	}
	if _, ok := comboProduct("_Finance", "Finance"); ok {
		t.Fatal("empty product side must not match")
	}
}

func TestGetComboStatsSuffixMatch(t *testing.T) {
	table := map[string]float64{
		"MG_Special_Finance": 0.64,
		"GTX_Finance":        0.70,
		"GTK_Finance":        0.62,
		"MG_Retail":          0.75,
	}
	combo := GetComboStats("GTX", "Finance", table, 3)
	if combo.Matched == nil || combo.MatchedKey != "GTX_Finance" {
		t.Fatalf("expected GTX_Finance match, got %+v", combo)
	}
	if _, ok := combo.Alternatives["GTK_Finance"]; !ok {
		t.Fatal("expected GTK_Finance alternative")
	}
	if _, ok := combo.Alternatives["MG_Special_Finance"]; !ok {
		t.Fatal("expected MG_Special_Finance alternative (product MG_Special, sector Finance)")
	}
	if _, ok := combo.Alternatives["MG_Retail"]; ok {
		t.Fatal("MG_Retail is a different sector and must be excluded")
	}
	if _, ok := combo.Alternatives["GTX_Finance"]; ok {
		t.Fatal("matched product must be excluded from alternatives")
	}
}

func TestGetComboStatsUnderscoreInSector(t *testing.T) {
	// Sector names may themselves contain underscores downstream of the
	// first separator.
	table := map[string]float64{"MG_Special_Finance": 0.64, "GTX_Special_Finance": 0.71}
	combo := GetComboStats("MG", "Special_Finance", table, 3)
	if combo.Matched == nil || combo.MatchedKey != "MG_Special_Finance" {
		t.Fatalf("expected MG_Special_Finance match, got %+v", combo)
	}
	if _, ok := combo.Alternatives["GTX_Special_Finance"]; !ok {
		t.Fatal("expected GTX_Special_Finance alternative")
	}
}
