package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/joelkehle/sales-advisor/internal/dealsearch"
	"github.com/joelkehle/sales-advisor/internal/salesstats"
)

var tracer = otel.Tracer("sales-advisor/advisor")

type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func StageNameFromError(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return "pipeline"
}

// DealSearcher finds similar historical deals. The embedding is computed once
// per request and shared by the won and lost searches.
type DealSearcher interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	TopMatches(ctx context.Context, embedding []float32, stage string, topK int) ([]dealsearch.Deal, error)
}

// Pipeline runs the full advisory flow: attribute extraction, statistics
// assembly, similar-deal retrieval, and the final strategy recommendation.
type Pipeline struct {
	extractor *Extractor
	assembler *salesstats.Assembler
	search    DealSearcher
	caller    LLMCaller
	topK      int
}

func NewPipeline(extractor *Extractor, assembler *salesstats.Assembler, search DealSearcher, caller LLMCaller) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		assembler: assembler,
		search:    search,
		caller:    caller,
		topK:      TopMatches,
	}
}

// Run analyzes one opportunity. A prompt from which nothing can be extracted
// yields Success=false with a user-facing message, not an error; transport
// and stage failures return a StageError.
func (p *Pipeline) Run(ctx context.Context, req RequestEnvelope) (ResponseEnvelope, error) {
	ctx, span := tracer.Start(ctx, "advisor.Run",
		trace.WithAttributes(attribute.String("request_id", req.RequestID)))
	defer span.End()

	res := ResponseEnvelope{
		RequestID: req.RequestID,
		Attempts:  map[string]StageAttemptMetrics{},
		Metadata:  PipelineMetadata{Model: p.caller.ModelName(), StartedAt: time.Now()},
	}

	prompt := strings.TrimSpace(req.Prompt)
	if len(prompt) < MinPromptChars {
		return res, &StageError{Stage: "validate", Err: fmt.Errorf("opportunity description too short")}
	}
	if len(prompt) > MaxPromptChars {
		prompt = prompt[:MaxPromptChars]
		res.Metadata.InputTruncated = true
	}

	// Stage 1: attribute extraction.
	extractCtx, extractSpan := tracer.Start(ctx, "advisor.extract")
	attrs, m, err := p.extractor.Extract(extractCtx, prompt)
	extractSpan.End()
	res.Attempts["extract"] = m
	res.Metadata.StagesExecuted = append(res.Metadata.StagesExecuted, "extract")
	if errors.Is(err, ErrNoAttributes) {
		res.ErrorMessage = "Failed to extract attributes from the opportunity description. Please provide more details about the product, sector, region, or sales representative."
		return p.finalize(res), nil
	}
	if err != nil {
		return res, &StageError{Stage: "extract", Err: err}
	}
	res.ExtractedAttributes = &attrs

	// Stage 2: statistics assembly, including the qualitative uplift call.
	assembleCtx, assembleSpan := tracer.Start(ctx, "advisor.assemble")
	stats, err := p.assembler.Assemble(assembleCtx, attrs)
	assembleSpan.End()
	res.Metadata.StagesExecuted = append(res.Metadata.StagesExecuted, "assemble")
	if err != nil {
		return res, &StageError{Stage: "assemble", Err: err}
	}
	res.RelevantStats = stats

	// Stage 3: similar-deal retrieval. One embedding serves both searches.
	searchCtx, searchSpan := tracer.Start(ctx, "advisor.search")
	won, lost, err := p.topMatches(searchCtx, prompt)
	searchSpan.End()
	res.Metadata.StagesExecuted = append(res.Metadata.StagesExecuted, "search")
	if err != nil {
		return res, &StageError{Stage: "search", Err: err}
	}
	res.WonMatches = won
	res.LostMatches = lost

	// Stage 4: strategy recommendation.
	contextMsg := buildContextMessage(prompt, attrs, won, lost)
	statsJSON, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return res, &StageError{Stage: "recommend", Err: err}
	}
	recommendCtx, recommendSpan := tracer.Start(ctx, "advisor.recommend")
	recommendation, calls, err := generateWithRetry(
		recommendCtx, p.caller, strategySystemPrompt, strategyUserPrompt(contextMsg, string(statsJSON)), 0.1)
	recommendSpan.End()
	res.Attempts["recommend"] = StageAttemptMetrics{Attempts: calls}
	res.Metadata.StagesExecuted = append(res.Metadata.StagesExecuted, "recommend")
	if err != nil {
		return res, &StageError{Stage: "recommend", Err: err}
	}
	if strings.TrimSpace(recommendation) == "" {
		return res, &StageError{Stage: "recommend", Err: fmt.Errorf("empty recommendation")}
	}
	res.Recommendation = recommendation
	res.Success = true
	return p.finalize(res), nil
}

func (p *Pipeline) topMatches(ctx context.Context, prompt string) (won, lost []dealsearch.Deal, err error) {
	embedding, err := p.search.Embed(ctx, prompt)
	if err != nil {
		return nil, nil, fmt.Errorf("embed prompt: %w", err)
	}
	won, err = p.search.TopMatches(ctx, embedding, "won", p.topK)
	if err != nil {
		return nil, nil, err
	}
	lost, err = p.search.TopMatches(ctx, embedding, "lost", p.topK)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("sales-advisor search complete won=%d lost=%d", len(won), len(lost))
	return won, lost, nil
}

func buildContextMessage(prompt string, attrs salesstats.OpportunityAttributes, won, lost []dealsearch.Deal) string {
	attrsJSON, _ := json.Marshal(attrs)
	return fmt.Sprintf(
		"User Opportunity:\n%s\nExtracted Attributes: %s\n\n=== Top %d Successful Matches ===\n%s\n\n=== Top %d Failed Matches ===\n%s\n",
		prompt, attrsJSON, len(won), formatDeals(won), len(lost), formatDeals(lost))
}

// formatDeals renders matched deals into the compact pipe-separated lines the
// strategy prompt expects. Notes are capped at 400 chars per deal.
func formatDeals(deals []dealsearch.Deal) string {
	lines := make([]string, 0, len(deals))
	for _, d := range deals {
		note := d.Notes
		if len(note) > 400 {
			note = note[:400]
		}
		lines = append(lines, fmt.Sprintf(
			"%s | Stage: %s | Rep: %s | Product: %s | Sector: %s | Region: %s | Price: %v | Revenue: %v | Sales Cycle Duration: %v days | Deal Value Ratio: %v | Note: %s...",
			d.OpportunityID, capitalize(d.DealStage), d.SalesRep, d.Product, d.AccountSector,
			d.AccountRegion, d.SalesPrice, d.RevenueFromDeal, d.SalesCycleDuration, d.DealValueRatio, note))
	}
	return strings.Join(lines, "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (p *Pipeline) finalize(res ResponseEnvelope) ResponseEnvelope {
	res.Metadata.CompletedAt = time.Now()
	res.Metadata.ElapsedMS = res.Metadata.CompletedAt.Sub(res.Metadata.StartedAt).Milliseconds()
	for _, m := range res.Attempts {
		res.Metadata.TotalLLMCalls += m.Attempts
	}
	return res
}
