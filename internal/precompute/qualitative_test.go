package precompute

import (
	"testing"

	"github.com/joelkehle/sales-advisor/internal/dealsearch"
)

func notesRows() []dealsearch.SourceRow {
	return []dealsearch.SourceRow{
		{OpportunityID: "OP-1", Product: "GTX Plus Pro", AccountSector: "Finance", DealStage: "Won",
			Notes: "Great demo with the team | Bundled with support package"},
		{OpportunityID: "OP-2", Product: "GTX Plus Pro", AccountSector: "Finance", DealStage: "Won",
			Notes: "Demo sealed it"},
		{OpportunityID: "OP-3", Product: "MG Special", AccountSector: "Retail", DealStage: "Lost",
			Notes: "Pricing too high for their budget | Competitor undercut us"},
		{OpportunityID: "OP-4", Product: "MG Special", AccountSector: "Retail", DealStage: "Lost",
			Notes: ""},
		{OpportunityID: "OP-5", Product: "GTK 500", AccountSector: "Medical", DealStage: "Won",
			Notes: "No categorizable content here"},
	}
}

func TestComputeQualStatsOverall(t *testing.T) {
	qual := ComputeQualStats(notesRows())

	// Only deals with notes count into the totals.
	if qual.Overall.TotalWon != 3 || qual.Overall.TotalLost != 1 {
		t.Fatalf("totals = %+v", qual.Overall)
	}
	if qual.Overall.TotalNotes != 6 {
		t.Fatalf("total notes = %d, want 6", qual.Overall.TotalNotes)
	}

	demo, ok := qual.WinDrivers["demo_success"]
	if !ok {
		t.Fatal("demo_success missing from win drivers")
	}
	if demo.Count != 2 {
		t.Fatalf("demo_success count = %d, want 2", demo.Count)
	}
	if want := 2.0 / 3.0; demo.Frequency != want {
		t.Fatalf("demo_success frequency = %v, want %v", demo.Frequency, want)
	}
	if len(demo.Examples) != 2 || demo.Examples[0] != "Great demo with the team" {
		t.Fatalf("demo_success examples = %v", demo.Examples)
	}

	if pricing := qual.LossRisks["pricing_high"]; pricing.Count != 1 || pricing.Frequency != 1.0 {
		t.Fatalf("pricing_high = %+v", pricing)
	}
	if _, ok := qual.LossRisks["demo_success"]; ok {
		t.Fatal("win-driver category must not leak into loss risks")
	}
}

func TestComputeQualStatsSegmented(t *testing.T) {
	qual := ComputeQualStats(notesRows())

	finance, ok := qual.Segmented["Finance"]
	if !ok {
		t.Fatalf("Finance segment missing, have %v", qual.Segmented)
	}
	if got := finance.WinDrivers["demo_success"].Count; got != 2 {
		t.Fatalf("Finance demo_success count = %d, want 2", got)
	}
	// Both Finance deals were won, so frequency is count over won deals.
	if got := finance.WinDrivers["demo_success"].Frequency; got != 1.0 {
		t.Fatalf("Finance demo_success frequency = %v, want 1.0", got)
	}

	retail, ok := qual.Segmented["Retail"]
	if !ok {
		t.Fatal("Retail segment missing")
	}
	if got := retail.LossRisks["competitor"].Count; got != 1 {
		t.Fatalf("Retail competitor count = %d, want 1", got)
	}
	if len(retail.WinDrivers) != 0 {
		t.Fatalf("Retail must have no win drivers, got %v", retail.WinDrivers)
	}

	// A segment with no categorized mentions is omitted entirely.
	if _, ok := qual.Segmented["Medical"]; ok {
		t.Fatal("segment without categorized notes must be absent")
	}
}

func TestClassifyNotePrecedence(t *testing.T) {
	reason, ok := classifyNote("Strong demo but competitor pressure")
	if !ok {
		t.Fatal("expected a match")
	}
	// Win-driver categories are checked first.
	if !reason.isWinDriver || reason.category != "demo_success" {
		t.Fatalf("unexpected reason %+v", reason)
	}

	if _, ok := classifyNote("nothing relevant"); ok {
		t.Fatal("expected no match")
	}
}

func TestClassifyNoteWordBoundaries(t *testing.T) {
	// "demos" must not match the keyword "demo".
	if _, ok := classifyNote("saw our demos page"); ok {
		t.Fatal("substring inside a longer word must not match")
	}
	if reason, ok := classifyNote("ROI was clear"); !ok || reason.category != "roi_evidence" {
		t.Fatalf("case-insensitive keyword failed: %v %v", reason, ok)
	}
}
