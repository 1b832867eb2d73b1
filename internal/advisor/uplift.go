package advisor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/joelkehle/sales-advisor/internal/salesstats"
)

// LLMUpliftEstimator asks the model for a single percentage. A response that
// cannot be read as a number surfaces salesstats.ErrUnparsableUplift so the
// assembler can fall back to its frequency formula.
type LLMUpliftEstimator struct {
	caller LLMCaller
}

func NewLLMUpliftEstimator(caller LLMCaller) *LLMUpliftEstimator {
	return &LLMUpliftEstimator{caller: caller}
}

func (e *LLMUpliftEstimator) EstimateUplift(ctx context.Context, risk string, frequency float64, sector string) (float64, error) {
	raw, err := e.caller.Generate(ctx, upliftSystemPrompt, upliftUserPrompt(risk, frequency, sector), 0)
	if err != nil {
		return 0, err
	}
	value, err := parseUplift(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", salesstats.ErrUnparsableUplift, err)
	}
	return value, nil
}

func parseUplift(raw string) (float64, error) {
	s := strings.TrimSpace(stripCodeFences(raw))
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	return strconv.ParseFloat(s, 64)
}
