package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joelkehle/sales-advisor/internal/config"
	"github.com/joelkehle/sales-advisor/internal/dealsearch"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config")
	csvPath := flag.String("csv", "", "Path to the opportunity export CSV")
	flag.Parse()

	if *csvPath == "" {
		log.Fatal("missing required -csv")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	client, err := dealsearch.NewClient(dealsearch.Config{
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

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	rows, err := dealsearch.ReadSourceCSV(f)
	f.Close()
	if err != nil {
		log.Fatalf("parse csv: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("deal-upload starting rows=%d batch_size=%d", len(rows), dealsearch.UploadBatchSize)
	stats, err := client.UploadBatches(ctx, rows)
	if err != nil {
		log.Fatalf("upload: %v (uploaded=%d skipped=%d)", err, stats.Uploaded, stats.Skipped)
	}
	log.Printf("deal-upload done batches=%d uploaded=%d skipped=%d", stats.Batches, stats.Uploaded, stats.Skipped)
}
