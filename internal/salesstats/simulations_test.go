package salesstats

import (
	"math"
	"testing"
)

func TestBuildSimulationsUpliftFromLift(t *testing.T) {
	baseline := 0.6
	rec := WinRateRecord{WinRate: 0.69, Lift: 0.69 / baseline}
	sims := BuildSimulations(baseline, DimensionStats{},
		map[string]WinRateRecord{"Alpha": rec}, []string{"Alpha"},
		map[string]float64{"Alpha": 50000}, nil)
	if len(sims) != 1 {
		t.Fatalf("expected 1 simulation, got %d", len(sims))
	}
	sim := sims[0]
	if sim.Description != "Switch to Alpha" {
		t.Fatalf("unexpected description %q", sim.Description)
	}
	if math.Abs(sim.UpliftPercent-15.0) > 1e-6 {
		t.Fatalf("expected uplift 15.0, got %v", sim.UpliftPercent)
	}
	if math.Abs(sim.EstimatedWinRate-0.69) > 1e-9 {
		t.Fatalf("expected estimated win rate 0.69, got %v", sim.EstimatedWinRate)
	}
	if sim.RevenueEstimate == nil || *sim.RevenueEstimate != 50000 {
		t.Fatalf("expected revenue estimate 50000, got %v", sim.RevenueEstimate)
	}
}

func TestBuildSimulationsSectorScenario(t *testing.T) {
	baseline := 0.6
	matched := WinRateRecord{WinRate: 0.66, Lift: 1.1}
	sims := BuildSimulations(baseline, DimensionStats{MatchedKey: "Finance", Matched: &matched}, nil, nil, nil, nil)
	if len(sims) != 1 {
		t.Fatalf("expected 1 simulation, got %d", len(sims))
	}
	if sims[0].Description != "Baseline adjusted for Finance sector" {
		t.Fatalf("unexpected description %q", sims[0].Description)
	}
	if math.Abs(sims[0].UpliftPercent-10.0) > 1e-6 {
		t.Fatalf("expected uplift 10.0, got %v", sims[0].UpliftPercent)
	}
}

func TestBuildSimulationsRepConfidenceThreshold(t *testing.T) {
	reps := []RepRecord{
		{Name: "Vera", WinRate: 0.72, Lift: 1.2, SampleSize: 201},
		{Name: "James", WinRate: 0.66, Lift: 1.1, SampleSize: 200},
	}
	sims := BuildSimulations(0.6, DimensionStats{}, nil, nil, nil, reps)
	if len(sims) != 2 {
		t.Fatalf("expected 2 simulations, got %d", len(sims))
	}
	if sims[0].Confidence != ConfidenceHigh {
		t.Fatalf("sample size 201 must be high confidence, got %s", sims[0].Confidence)
	}
	if sims[1].Confidence != ConfidenceMedium {
		t.Fatalf("sample size 200 must stay medium confidence, got %s", sims[1].Confidence)
	}
}

func TestQualRiskSimulation(t *testing.T) {
	sim := QualRiskSimulation(0.6, "price too high", 8.0)
	if sim.Description != "Address top qual risk 'price too high'" {
		t.Fatalf("unexpected description %q", sim.Description)
	}
	if !sim.FromQual {
		t.Fatal("qual risk simulation must be flagged as qualitative")
	}
	if math.Abs(sim.EstimatedWinRate-0.6*1.08) > 1e-9 {
		t.Fatalf("unexpected estimated win rate %v", sim.EstimatedWinRate)
	}
	if sim.UpliftPercent != 8.0 {
		t.Fatalf("unexpected uplift %v", sim.UpliftPercent)
	}
}
