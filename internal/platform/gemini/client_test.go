package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/scoutlabs/venturescout-backend/internal/platform/logger"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func testClient(t *testing.T, rt roundTripperFunc) *client {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return &client{
		log:           log,
		baseURL:       "http://upstream",
		apiKey:        "test-key",
		httpClient:    &http.Client{Transport: rt},
		streamTimeout: 2 * time.Second,
		maxRetries:    1,
	}
}

func TestStreamGenerate(t *testing.T) {
	c := testClient(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/v1beta/models/gemini-2.5-flash:streamGenerateContent" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if req.URL.Query().Get("alt") != "sse" {
			t.Fatalf("alt=%q", req.URL.Query().Get("alt"))
		}
		if req.Header.Get("x-goog-api-key") != "test-key" {
			t.Fatalf("api key header missing")
		}
		sse := strings.Join([]string{
			`data: {"candidates":[{"content":{"parts":[{"text":"What industry "}]}}]}`,
			"",
			`data: {"candidates":[{"content":{"parts":[{"text":"are you in?"}]}}]}`,
			"",
			"",
		}, "\n")
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"text/event-stream"}},
			Body:       io.NopCloser(strings.NewReader(sse)),
		}, nil
	})

	var deltas strings.Builder
	full, err := c.StreamGenerate(context.Background(), "gemini-2.5-flash", "sys", nil, "hi", func(d string) {
		deltas.WriteString(d)
	})
	if err != nil {
		t.Fatalf("StreamGenerate: %v", err)
	}
	if full != "What industry are you in?" {
		t.Fatalf("full=%q", full)
	}
	if deltas.String() != full {
		t.Fatalf("deltas=%q", deltas.String())
	}
}

func TestStreamGenerateNotFound(t *testing.T) {
	c := testClient(t, func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader(`{"error":{"code":404,"message":"model not found"}}`)),
		}, nil
	})

	_, err := c.StreamGenerate(context.Background(), "no-such-model", "", nil, "hi", nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error type: %T", err)
	}
	if httpErr.StatusCode != 404 {
		t.Fatalf("status=%d", httpErr.StatusCode)
	}
}

func TestStreamGenerateRetriesTransientOpenFailure(t *testing.T) {
	attempts := 0
	c := testClient(t, func(req *http.Request) (*http.Response, error) {
		attempts++
		if attempts == 1 {
			return &http.Response{
				StatusCode: http.StatusServiceUnavailable,
				Body:       io.NopCloser(strings.NewReader("overloaded")),
			}, nil
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"ok\"}]}}]}\n\n")),
		}, nil
	})

	full, err := c.StreamGenerate(context.Background(), "m", "", nil, "hi", nil)
	if err != nil {
		t.Fatalf("StreamGenerate: %v", err)
	}
	if full != "ok" || attempts != 2 {
		t.Fatalf("full=%q attempts=%d", full, attempts)
	}
}

func TestStreamGenerateMidStreamError(t *testing.T) {
	c := testClient(t, func(req *http.Request) (*http.Response, error) {
		sse := strings.Join([]string{
			`data: {"candidates":[{"content":{"parts":[{"text":"partial"}]}}]}`,
			"",
			`data: {"error":{"code":500,"status":"INTERNAL","message":"boom"}}`,
			"",
			"",
		}, "\n")
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(sse)),
		}, nil
	})

	var got strings.Builder
	_, err := c.StreamGenerate(context.Background(), "gemini-2.5-flash", "", nil, "hi", func(d string) {
		got.WriteString(d)
	})
	if err == nil {
		t.Fatalf("expected mid-stream error")
	}
	// Tokens sent before the failure are not retracted.
	if got.String() != "partial" {
		t.Fatalf("deltas=%q", got.String())
	}
}

func TestStreamGenerateHistoryRoles(t *testing.T) {
	var sawBody string
	c := testClient(t, func(req *http.Request) (*http.Response, error) {
		raw, _ := io.ReadAll(req.Body)
		sawBody = string(raw)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"ok\"}]}}]}\n\n")),
		}, nil
	})

	history := []Content{
		{Role: "user", Text: "I run a logistics consultancy"},
		{Role: "model", Text: "How many years of experience?"},
	}
	if _, err := c.StreamGenerate(context.Background(), "m", "sys", history, "12 years", nil); err != nil {
		t.Fatalf("StreamGenerate: %v", err)
	}
	for _, want := range []string{`"role":"user"`, `"role":"model"`, "logistics consultancy", "12 years", `"systemInstruction"`} {
		if !strings.Contains(sawBody, want) {
			t.Fatalf("request body missing %q: %s", want, sawBody)
		}
	}
}
