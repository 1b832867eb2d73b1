package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/olekukonko/tablewriter"

	"github.com/joelkehle/sales-advisor/internal/advisor"
	"github.com/joelkehle/sales-advisor/internal/config"
	"github.com/joelkehle/sales-advisor/internal/dealsearch"
	"github.com/joelkehle/sales-advisor/internal/salesstats"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config")
	prompt := flag.String("prompt", "", "Opportunity description (reads stdin when empty)")
	jsonOutput := flag.String("json-output", "", "Optional path to write the full result JSON")
	flag.Parse()

	text := strings.TrimSpace(*prompt)
	if text == "" {
		in, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatalf("read stdin: %v", err)
		}
		text = strings.TrimSpace(string(in))
	}
	if text == "" {
		log.Fatal("no opportunity description given")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	repo, err := salesstats.Load(cfg.Stats.QuantitativePath, cfg.Stats.QualitativePath)
	if err != nil {
		log.Fatalf("load statistics: %v", err)
	}
	search, err := dealsearch.NewClient(dealsearch.Config{
		SearchEndpoint:   cfg.Search.Endpoint,
		SearchKey:        cfg.Search.Key,
		IndexName:        cfg.Search.IndexName,
		SearchAPIVersion: cfg.Search.APIVersion,
		EmbedEndpoint:    cfg.Search.EmbedEndpoint,
		EmbedKey:         cfg.Search.EmbedKey,
		EmbedDeployment:  cfg.Search.EmbedDeployment,
	})
	if err != nil {
		log.Fatalf("deal search: %v", err)
	}
	caller, err := advisor.NewAnthropicCallerFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	assembler := salesstats.NewAssembler(repo, advisor.NewLLMUpliftEstimator(caller))
	pipeline := advisor.NewPipeline(advisor.NewExtractor(caller), assembler, search, caller)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	res, err := pipeline.Run(ctx, advisor.RequestEnvelope{Prompt: text})
	if err != nil {
		log.Fatalf("analysis failed at stage %s: %v", advisor.StageNameFromError(err), err)
	}
	if !res.Success {
		log.Fatalf("analysis incomplete: %s", res.ErrorMessage)
	}

	if res.RelevantStats != nil {
		printSimulations(os.Stdout, res.RelevantStats.Simulations)
	}
	fmt.Println()
	fmt.Println(res.Recommendation)

	if *jsonOutput != "" {
		blob, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			log.Fatalf("encode result: %v", err)
		}
		if err := os.WriteFile(*jsonOutput, blob, 0o644); err != nil {
			log.Fatalf("write result: %v", err)
		}
	}
}

func printSimulations(out io.Writer, sims []salesstats.Simulation) {
	if len(sims) == 0 {
		return
	}
	table := tablewriter.NewWriter(out)
	table.Header("Scenario", "Est. Win Rate", "Uplift", "Confidence")
	for _, sim := range sims {
		confidence := string(sim.Confidence)
		if confidence == "" {
			confidence = "-"
		}
		table.Append(
			sim.Description,
			fmt.Sprintf("%.1f%%", sim.EstimatedWinRate*100),
			fmt.Sprintf("%+.1f%%", sim.UpliftPercent),
			confidence,
		)
	}
	table.Render()
}
