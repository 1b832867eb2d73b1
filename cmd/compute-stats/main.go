package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joelkehle/sales-advisor/internal/dealsearch"
	"github.com/joelkehle/sales-advisor/internal/precompute"
	"github.com/joelkehle/sales-advisor/internal/salesstats"
)

func main() {
	csvPath := flag.String("csv", "", "Path to the opportunity export CSV")
	quantOut := flag.String("quant-output", "data/sales_stats.json", "Path for the quantitative statistics JSON")
	qualOut := flag.String("qual-output", "data/qualitative_stats.json", "Path for the qualitative statistics JSON")
	flag.Parse()

	if *csvPath == "" {
		log.Fatal("missing required -csv")
	}
	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	rows, err := dealsearch.ReadSourceCSV(f)
	f.Close()
	if err != nil {
		log.Fatalf("parse csv: %v", err)
	}

	quant, err := precompute.ComputeQuantStats(rows)
	if err != nil {
		log.Fatalf("quantitative stats: %v", err)
	}
	qual := precompute.ComputeQualStats(rows)

	// A repository load proves both files are consistent before we write them.
	if _, err := salesstats.NewRepository(quant, qual); err != nil {
		log.Fatalf("computed statistics failed validation: %v", err)
	}

	writeJSON(*quantOut, quant)
	writeJSON(*qualOut, qual)
	log.Printf("compute-stats done rows=%d overall_win_rate=%.4f quant=%s qual=%s",
		len(rows), quant.OverallWinRate, *quantOut, *qualOut)
}

func writeJSON(path string, v any) {
	blob, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("encode %s: %v", path, err)
	}
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
}
