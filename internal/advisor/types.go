package advisor

import (
	"time"

	"github.com/joelkehle/sales-advisor/internal/dealsearch"
	"github.com/joelkehle/sales-advisor/internal/salesstats"
)

const (
	MinPromptChars = 10
	MaxPromptChars = 20000
	TopMatches     = 10
)

// RequestEnvelope is one opportunity analysis request.
type RequestEnvelope struct {
	RequestID string `json:"request_id"`
	Prompt    string `json:"prompt"`
}

// StageAttemptMetrics counts LLM attempts for one pipeline stage. Attempts
// includes transport retries; ContentRetries counts re-prompts after a
// malformed or invalid response.
type StageAttemptMetrics struct {
	Attempts       int `json:"attempts"`
	ContentRetries int `json:"content_retries"`
}

// PipelineMetadata records timing and per-stage accounting for one run.
type PipelineMetadata struct {
	Model          string    `json:"model"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
	ElapsedMS      int64     `json:"elapsed_ms"`
	StagesExecuted []string  `json:"stages_executed"`
	TotalLLMCalls  int       `json:"total_llm_calls"`
	InputTruncated bool      `json:"input_truncated,omitempty"`
}

// ResponseEnvelope is the full analysis result. On failure Success is false
// and ErrorMessage says what went wrong; the remaining fields are nil.
type ResponseEnvelope struct {
	RequestID           string                            `json:"request_id"`
	Success             bool                              `json:"success"`
	ErrorMessage        string                            `json:"error_message,omitempty"`
	ExtractedAttributes *salesstats.OpportunityAttributes `json:"extracted_attributes,omitempty"`
	RelevantStats       *salesstats.RelevantStats         `json:"relevant_stats,omitempty"`
	Recommendation      string                            `json:"recommendation,omitempty"`
	WonMatches          []dealsearch.Deal                 `json:"won_matches,omitempty"`
	LostMatches         []dealsearch.Deal                 `json:"lost_matches,omitempty"`
	Attempts            map[string]StageAttemptMetrics    `json:"attempts,omitempty"`
	Metadata            PipelineMetadata                  `json:"metadata"`
}
