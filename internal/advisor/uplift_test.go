package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/joelkehle/sales-advisor/internal/salesstats"
)

func TestEstimateUpliftParsesFloat(t *testing.T) {
	caller := &fakeCaller{responses: []string{"12.5"}}
	v, err := NewLLMUpliftEstimator(caller).EstimateUplift(context.Background(), "pricing_high", 0.45, "Finance")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 12.5 {
		t.Fatalf("unexpected uplift %v", v)
	}
	if !strings.Contains(caller.prompts[0], "'pricing_high'") || !strings.Contains(caller.prompts[0], "Finance sector") {
		t.Fatalf("unexpected prompt %q", caller.prompts[0])
	}
}

func TestEstimateUpliftStripsPercentSign(t *testing.T) {
	caller := &fakeCaller{responses: []string{" 8% "}}
	v, err := NewLLMUpliftEstimator(caller).EstimateUplift(context.Background(), "slow_response", 0.2, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 8 {
		t.Fatalf("unexpected uplift %v", v)
	}
	if !strings.Contains(caller.prompts[0], "general sector") {
		t.Fatalf("empty sector must fall back to general: %q", caller.prompts[0])
	}
}

func TestEstimateUpliftUnparsable(t *testing.T) {
	caller := &fakeCaller{responses: []string{"somewhere around ten percent, maybe"}}
	_, err := NewLLMUpliftEstimator(caller).EstimateUplift(context.Background(), "pricing_high", 0.45, "Finance")
	if !errors.Is(err, salesstats.ErrUnparsableUplift) {
		t.Fatalf("expected ErrUnparsableUplift, got %v", err)
	}
}

func TestEstimateUpliftTransportError(t *testing.T) {
	transportErr := errors.New("status code: 503")
	caller := &fakeCaller{errs: []error{transportErr}}
	_, err := NewLLMUpliftEstimator(caller).EstimateUplift(context.Background(), "pricing_high", 0.45, "Finance")
	if errors.Is(err, salesstats.ErrUnparsableUplift) {
		t.Fatal("transport error must not be classified as unparsable")
	}
	if !errors.Is(err, transportErr) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
