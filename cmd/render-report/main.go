package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joelkehle/sales-advisor/internal/advisor"
	"github.com/joelkehle/sales-advisor/internal/history"
	"github.com/joelkehle/sales-advisor/internal/report"
)

func main() {
	inputPath := flag.String("input", "", "Path to a saved analysis result JSON")
	prompt := flag.String("prompt", "", "Opportunity description shown in the report header")
	dbPath := flag.String("db", "", "History database path (use with -id instead of -input)")
	analysisID := flag.String("id", "", "Analysis ID to load from the history database")
	outputPath := flag.String("output", "", "Path to write the PDF (prints markdown to stdout when empty)")
	flag.Parse()

	res, promptText, err := loadAnalysis(*inputPath, *dbPath, *analysisID)
	if err != nil {
		log.Fatal(err)
	}
	if *prompt != "" {
		promptText = *prompt
	}

	if *outputPath == "" {
		fmt.Print(report.BuildMarkdown(res, promptText))
		return
	}

	renderer := report.NewChromiumPDFRenderer()
	pdf, err := renderer.Render(context.Background(), res, promptText)
	if err != nil {
		log.Fatalf("render pdf: %v", err)
	}
	if err := os.WriteFile(*outputPath, pdf, 0o644); err != nil {
		log.Fatalf("write pdf: %v", err)
	}
	log.Printf("render-report wrote %s (%d bytes)", *outputPath, len(pdf))
}

func loadAnalysis(inputPath, dbPath, analysisID string) (advisor.ResponseEnvelope, string, error) {
	var res advisor.ResponseEnvelope
	switch {
	case inputPath != "":
		blob, err := os.ReadFile(inputPath)
		if err != nil {
			return res, "", fmt.Errorf("read input: %w", err)
		}
		if err := json.Unmarshal(blob, &res); err != nil {
			return res, "", fmt.Errorf("decode input JSON: %w", err)
		}
		return res, "", nil
	case dbPath != "" && analysisID != "":
		store, err := history.NewStore(dbPath)
		if err != nil {
			return res, "", fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
		rec, err := store.Get(analysisID)
		if err != nil {
			return res, "", fmt.Errorf("load analysis %s: %w", analysisID, err)
		}
		if err := json.Unmarshal([]byte(rec.Payload), &res); err != nil {
			return res, "", fmt.Errorf("decode stored analysis: %w", err)
		}
		return res, rec.Prompt, nil
	default:
		return res, "", fmt.Errorf("need -input or both -db and -id")
	}
}
