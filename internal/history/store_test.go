package history

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/joelkehle/sales-advisor/internal/advisor"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleEnvelope(requestID string, success bool) advisor.ResponseEnvelope {
	return advisor.ResponseEnvelope{
		RequestID:      requestID,
		Success:        success,
		Recommendation: "switch product",
		Metadata:       advisor.PipelineMetadata{Model: "test-model", ElapsedMS: 1200},
	}
}

func TestInsertAndGet(t *testing.T) {
	s := testStore(t)
	id, err := s.Insert(sampleEnvelope("req-1", true), "GTX deal in Finance")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	rec, err := s.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.RequestID != "req-1" || !rec.Success || rec.ElapsedMS != 1200 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Prompt != "GTX deal in Finance" {
		t.Fatalf("unexpected prompt %q", rec.Prompt)
	}

	var payload advisor.ResponseEnvelope
	if err := json.Unmarshal([]byte(rec.Payload), &payload); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}
	if payload.Recommendation != "switch product" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if rec.CreatedAt.IsZero() || time.Since(rec.CreatedAt) > time.Minute {
		t.Fatalf("unexpected created_at %v", rec.CreatedAt)
	}
}

func TestGetMissing(t *testing.T) {
	s := testStore(t)
	if _, err := s.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListRecentNewestFirst(t *testing.T) {
	s := testStore(t)
	for i, req := range []string{"req-a", "req-b", "req-c"} {
		if _, err := s.Insert(sampleEnvelope(req, i%2 == 0), "prompt "+req); err != nil {
			t.Fatalf("insert %s: %v", req, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	list, err := s.ListRecent(2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(list))
	}
	if list[0].RequestID != "req-c" || list[1].RequestID != "req-b" {
		t.Fatalf("unexpected order %+v", list)
	}
}
