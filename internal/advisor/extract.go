package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/joelkehle/sales-advisor/internal/salesstats"
)

// ErrNoAttributes means the extractor returned all-null fields, so there is
// nothing to analyze.
var ErrNoAttributes = errors.New("no attributes extracted from opportunity description")

var (
	priceKeywords   = []string{"$", "price", "cost", "dollar", "usd"}
	revenueKeywords = []string{"revenue", "expected", "forecast", "$"}
)

// Extractor turns a free-text opportunity description into structured
// attributes, with the extraction grounded strictly in what the prompt says.
type Extractor struct {
	caller LLMCaller
}

func NewExtractor(caller LLMCaller) *Extractor {
	return &Extractor{caller: caller}
}

// Extract runs the extraction call with up to 2 content retries, then strips
// numeric fields the model invented for prompts that never mention them.
func (e *Extractor) Extract(ctx context.Context, prompt string) (salesstats.OpportunityAttributes, StageAttemptMetrics, error) {
	metrics := StageAttemptMetrics{}
	feedback := ""
	var attrs salesstats.OpportunityAttributes
	for attempt := 1; attempt <= 3; attempt++ {
		fullPrompt := prompt
		if feedback != "" {
			fullPrompt += "\n\n" + feedback
		}
		raw, calls, err := generateWithRetry(ctx, e.caller, extractionSystemPrompt, fullPrompt, 0)
		metrics.Attempts += calls
		if err != nil {
			return attrs, metrics, fmt.Errorf("extraction transport failure: %w", err)
		}

		clean := stripCodeFences(raw)
		attrs = salesstats.OpportunityAttributes{}
		if err := json.Unmarshal([]byte(clean), &attrs); err != nil {
			if attempt < 3 {
				metrics.ContentRetries++
				feedback = "Your previous response was not valid JSON. Respond with only a valid JSON object."
				continue
			}
			return attrs, metrics, fmt.Errorf("extraction failed json parse: %w", err)
		}

		attrs = dropHallucinatedNumbers(attrs, prompt)
		if attrs.Empty() {
			return attrs, metrics, ErrNoAttributes
		}
		return attrs, metrics, nil
	}
	return attrs, metrics, fmt.Errorf("extraction failed after retries")
}

// dropHallucinatedNumbers nulls sales_price and expected_revenue when the
// prompt never mentions money in the corresponding vocabulary. The extraction
// prompt forbids invention, but models still do it.
func dropHallucinatedNumbers(attrs salesstats.OpportunityAttributes, prompt string) salesstats.OpportunityAttributes {
	lower := strings.ToLower(prompt)
	if attrs.SalesPrice != nil && !containsAny(lower, priceKeywords) {
		attrs.SalesPrice = nil
	}
	if attrs.ExpectedRevenue != nil && !containsAny(lower, revenueKeywords) {
		attrs.ExpectedRevenue = nil
	}
	return attrs
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
