package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joelkehle/sales-advisor/internal/advisor"
	"github.com/joelkehle/sales-advisor/internal/config"
	"github.com/joelkehle/sales-advisor/internal/dealsearch"
	"github.com/joelkehle/sales-advisor/internal/history"
	"github.com/joelkehle/sales-advisor/internal/httpapi"
	"github.com/joelkehle/sales-advisor/internal/salesstats"
	"github.com/joelkehle/sales-advisor/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, "sales-advisor")
	if err != nil {
		log.Fatalf("tracing setup: %v", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		_ = shutdownTracing(flushCtx)
	}()

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

	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		log.Fatalf("history store: %v", err)
	}
	defer store.Close()

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: httpapi.NewServer(pipeline, store),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("sales-advisor listening on %s", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
