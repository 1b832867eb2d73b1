package dealsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTopK       = 10
	DefaultAPIVersion = "2024-07-01"
)

// Config carries the search index and embedding endpoint settings. Both
// services authenticate with an api-key header.
type Config struct {
	SearchEndpoint   string
	SearchKey        string
	IndexName        string
	EmbedEndpoint    string
	EmbedKey         string
	EmbedDeployment  string
	EmbedAPIVersion  string
	SearchAPIVersion string
	HTTPClient       *http.Client
}

// Client finds similar historical deals by vector similarity. One prompt
// produces one embedding, reused across the won and lost searches.
type Client struct {
	cfg Config
}

func NewClient(cfg Config) (*Client, error) {
	cfg.SearchEndpoint = strings.TrimRight(strings.TrimSpace(cfg.SearchEndpoint), "/")
	cfg.EmbedEndpoint = strings.TrimRight(strings.TrimSpace(cfg.EmbedEndpoint), "/")
	if cfg.SearchEndpoint == "" || strings.TrimSpace(cfg.SearchKey) == "" {
		return nil, errors.New("search endpoint and key not configured")
	}
	if strings.TrimSpace(cfg.IndexName) == "" {
		return nil, errors.New("search index name not configured")
	}
	if cfg.EmbedEndpoint == "" || strings.TrimSpace(cfg.EmbedKey) == "" {
		return nil, errors.New("embedding endpoint and key not configured")
	}
	if cfg.EmbedAPIVersion == "" {
		cfg.EmbedAPIVersion = DefaultAPIVersion
	}
	if cfg.SearchAPIVersion == "" {
		cfg.SearchAPIVersion = DefaultAPIVersion
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg}, nil
}

// Embed generates the embedding vector for one text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	url := fmt.Sprintf("%s/openai/deployments/%s/embeddings?api-version=%s",
		c.cfg.EmbedEndpoint, c.cfg.EmbedDeployment, c.cfg.EmbedAPIVersion)
	var parsed struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := c.postJSON(ctx, url, c.cfg.EmbedKey, map[string]any{"input": text}, &parsed); err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, errors.New("embed text: empty embedding response")
	}
	return parsed.Data[0].Embedding, nil
}

// TopMatches runs a vector search filtered to one deal stage ("won" or
// "lost") and returns up to topK documents.
func (c *Client) TopMatches(ctx context.Context, embedding []float32, stage string, topK int) ([]Deal, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	url := fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s",
		c.cfg.SearchEndpoint, c.cfg.IndexName, c.cfg.SearchAPIVersion)
	payload := map[string]any{
		"search": nil,
		"vectorQueries": []map[string]any{{
			"kind":       "vector",
			"fields":     "text_vector",
			"vector":     embedding,
			"k":          topK,
			"exhaustive": false,
		}},
		"filter": fmt.Sprintf("deal_stage eq '%s'", stage),
		"select": selectFields,
		"top":    topK,
	}
	var parsed struct {
		Value []Deal `json:"value"`
	}
	if err := c.postJSON(ctx, url, c.cfg.SearchKey, payload, &parsed); err != nil {
		return nil, fmt.Errorf("search %s deals: %w", stage, err)
	}
	return parsed.Value, nil
}

// postJSON sends one JSON request with up to 4 attempts. 429 honors the
// Retry-After header; 5xx and timeouts back off; other 4xx fail immediately.
func (c *Client) postJSON(ctx context.Context, url, apiKey string, body, out any) error {
	var lastErr error
	timeoutRetried := false
	for attempt := 1; attempt <= 4; attempt++ {
		code, retryAfter, err := c.postOnce(ctx, url, apiKey, body, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if code == http.StatusTooManyRequests {
			if attempt == 4 {
				break
			}
			sleep := retryAfter
			if sleep <= 0 {
				sleep = backoffDelay(attempt)
			}
			if err := sleepCtx(ctx, sleep); err != nil {
				return err
			}
			continue
		}
		if code >= 500 || isTimeoutError(err) {
			if isTimeoutError(err) {
				if timeoutRetried {
					break
				}
				timeoutRetried = true
			}
			if attempt == 4 {
				break
			}
			if err := sleepCtx(ctx, backoffDelay(attempt)); err != nil {
				return err
			}
			continue
		}
		return err
	}
	return lastErr
}

func (c *Client) postOnce(ctx context.Context, url, apiKey string, body, out any) (int, time.Duration, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", apiKey)

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer res.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(res.Body, 8<<20))

	retryAfter := parseRetryAfter(res.Header.Get("Retry-After"))
	if res.StatusCode >= 400 {
		return res.StatusCode, retryAfter, fmt.Errorf("status code: %d body=%s", res.StatusCode, truncate(string(b), 500))
	}
	if out != nil {
		if err := json.Unmarshal(b, out); err != nil {
			return res.StatusCode, retryAfter, err
		}
	}
	return res.StatusCode, retryAfter, nil
}

func parseRetryAfter(v string) time.Duration {
	if strings.TrimSpace(v) == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err == nil {
		return time.Duration(secs) * time.Second
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 1 * time.Second
	}
	return 2 * time.Second
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
