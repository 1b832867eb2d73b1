package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/joelkehle/sales-advisor/internal/advisor"
	"github.com/joelkehle/sales-advisor/internal/history"
)

// DefaultRequestsPerHour caps how many analyses one API key may run. Each
// analysis costs several LLM calls, so the ceiling is deliberately low.
const DefaultRequestsPerHour = 10

// Runner executes one opportunity analysis.
type Runner interface {
	Run(ctx context.Context, req advisor.RequestEnvelope) (advisor.ResponseEnvelope, error)
}

// HistoryStore persists and serves past analyses.
type HistoryStore interface {
	Insert(res advisor.ResponseEnvelope, prompt string) (string, error)
	Get(id string) (history.Record, error)
	ListRecent(limit int) ([]history.Summary, error)
}

type Server struct {
	runner  Runner
	store   HistoryStore
	keys    map[string]struct{}
	perHour int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewServer builds the API handler. Valid keys come from the API_KEYS env
// var (comma-separated); with no keys configured every request is rejected.
func NewServer(runner Runner, store HistoryStore) http.Handler {
	return NewServerWithKeys(runner, store, parseKeys(os.Getenv("API_KEYS")), DefaultRequestsPerHour)
}

func NewServerWithKeys(runner Runner, store HistoryStore, keys map[string]struct{}, perHour int) http.Handler {
	if perHour <= 0 {
		perHour = DefaultRequestsPerHour
	}
	s := &Server{
		runner:   runner,
		store:    store,
		keys:     keys,
		perHour:  perHour,
		limiters: map[string]*rate.Limiter{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/advise", s.handleAdvise)
	mux.HandleFunc("/v1/analyses", s.handleListAnalyses)
	mux.HandleFunc("/v1/analyses/", s.handleGetAnalysis)
	mux.HandleFunc("/v1/health", s.handleHealth)
	return mux
}

func parseKeys(raw string) map[string]struct{} {
	keys := map[string]struct{}{}
	for _, k := range strings.Split(raw, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			keys[k] = struct{}{}
		}
	}
	return keys
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": message})
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// authorize validates the X-API-Key header and applies the per-key hourly
// rate limit.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := strings.TrimSpace(r.Header.Get("X-API-Key"))
	if key == "" {
		writeError(w, http.StatusUnauthorized, "X-API-Key header required")
		return "", false
	}
	if _, ok := s.keys[key]; !ok {
		writeError(w, http.StatusUnauthorized, "invalid API key")
		return "", false
	}
	if !s.limiterFor(key).Allow() {
		w.Header().Set("Retry-After", strconv.Itoa(int(time.Hour.Seconds())/s.perHour))
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return "", false
	}
	return key, true
}

func (s *Server) limiterFor(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	lim, ok := s.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Hour/time.Duration(s.perHour)), s.perHour)
		s.limiters[key] = lim
	}
	return lim
}

func (s *Server) handleAdvise(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	if _, ok := s.authorize(w, r); !ok {
		return
	}
	var req advisor.RequestEnvelope
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	res, err := s.runner.Run(r.Context(), req)
	if err != nil {
		stage := advisor.StageNameFromError(err)
		log.Printf("sales-advisor analysis failed stage=%s request_id=%s err=%v", stage, req.RequestID, err)
		writeError(w, http.StatusBadGateway, "analysis failed at stage "+stage)
		return
	}

	id, err := s.store.Insert(res, req.Prompt)
	if err != nil {
		log.Printf("sales-advisor history insert failed request_id=%s err=%v", req.RequestID, err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"analysis_id": id, "result": res})
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	if _, ok := s.authorize(w, r); !ok {
		return
	}
	limit := 20
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	list, err := s.store.ListRecent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analyses": list})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	if _, ok := s.authorize(w, r); !ok {
		return
	}
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/analyses/"), "/")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	rec, err := s.store.Get(id)
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "time": time.Now().UTC().Format(time.RFC3339)})
}
