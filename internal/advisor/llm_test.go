package advisor

import (
	"context"
	"errors"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripCodeFences(tc.in); got != tc.want {
			t.Fatalf("stripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClassifyTransportError(t *testing.T) {
	if classifyTransportError(context.DeadlineExceeded) != failureTimeout {
		t.Fatal("deadline must classify as timeout")
	}
	if classifyTransportError(errors.New("status code: 429")) != failureRateLimit {
		t.Fatal("429 must classify as rate limit")
	}
	if classifyTransportError(errors.New("status code: 503")) != failureServer {
		t.Fatal("503 must classify as server error")
	}
	if classifyTransportError(errors.New("status code: 401")) != failureClient {
		t.Fatal("401 must classify as client error")
	}
}

func TestGenerateWithRetryRecoversFromServerError(t *testing.T) {
	caller := &fakeCaller{
		errs:      []error{errors.New("status code: 503"), nil},
		responses: []string{"", "ok"},
	}
	out, attempts, err := generateWithRetry(context.Background(), caller, "system", "prompt", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ok" || attempts != 2 {
		t.Fatalf("unexpected result %q attempts=%d", out, attempts)
	}
}
