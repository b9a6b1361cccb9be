package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/scoutlabs/venturescout-backend/internal/pkg/ctxutil"
	"github.com/scoutlabs/venturescout-backend/internal/pkg/httpx"
	"github.com/scoutlabs/venturescout-backend/internal/platform/envutil"
	"github.com/scoutlabs/venturescout-backend/internal/platform/logger"
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Content is one prior conversation turn as the API expects it.
type Content struct {
	Role string
	Text string
}

// Client opens a single streaming generation against one named model.
// Candidate fallback and retry policy live in the interview module, not here.
type Client interface {
	// StreamGenerate forwards text deltas to onDelta as they arrive and
	// returns the accumulated text once the stream completes.
	StreamGenerate(ctx context.Context, model string, system string, history []Content, current string, onDelta func(delta string)) (string, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client

	streamTimeout time.Duration
	maxRetries    int
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}

	baseURL := envutil.String("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")
	baseURL = strings.TrimRight(baseURL, "/")

	// A hung upstream must not block the request forever: bound both the
	// time to first byte and the total stream duration.
	connectTimeout := envutil.Seconds("GEMINI_CONNECT_TIMEOUT_SECONDS", 30*time.Second)
	streamTimeout := envutil.Seconds("GEMINI_STREAM_TIMEOUT_SECONDS", 600*time.Second)

	return &client{
		log:     log.With("service", "GeminiClient"),
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: connectTimeout,
			},
		},
		streamTimeout: streamTimeout,
		maxRetries:    envutil.Int("GEMINI_MAX_RETRIES", 2),
	}, nil
}

// HTTPError is a non-2xx reply from the API, kept verbatim so callers can
// classify it (model-unavailable vs systemic).
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("gemini http %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type generateRequest struct {
	SystemInstruction *contentPayload  `json:"systemInstruction,omitempty"`
	Contents          []contentPayload `json:"contents"`
}

type contentPayload struct {
	Role  string        `json:"role,omitempty"`
	Parts []partPayload `json:"parts"`
}

type partPayload struct {
	Text string `json:"text"`
}

type streamChunk struct {
	Candidates []struct {
		Content struct {
			Parts []partPayload `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *client) StreamGenerate(ctx context.Context, model string, system string, history []Content, current string, onDelta func(delta string)) (string, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return "", fmt.Errorf("model required")
	}
	if strings.TrimSpace(current) == "" {
		return "", fmt.Errorf("current message required")
	}

	body := generateRequest{
		Contents: make([]contentPayload, 0, len(history)+1),
	}
	if s := strings.TrimSpace(system); s != "" {
		body.SystemInstruction = &contentPayload{Parts: []partPayload{{Text: s}}}
	}
	for _, h := range history {
		body.Contents = append(body.Contents, contentPayload{
			Role:  h.Role,
			Parts: []partPayload{{Text: h.Text}},
		})
	}
	body.Contents = append(body.Contents, contentPayload{
		Role:  "user",
		Parts: []partPayload{{Text: current}},
	})

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	ctx = ctxutil.Default(ctx)
	if c.streamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.streamTimeout)
		defer cancel()
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse", c.baseURL, model)

	// Transient trouble opening the stream (429, 5xx, timeouts) gets retried
	// here; once the first byte has flowed there are no retries.
	resp, err := c.openStream(ctx, url, payload, model)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var full strings.Builder
	err = streamSSE(resp.Body, func(event string, data string) error {
		if strings.TrimSpace(data) == "" || strings.TrimSpace(data) == "[DONE]" {
			return nil
		}
		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Non-JSON keepalive lines are skipped.
			return nil
		}
		if chunk.Error != nil {
			return fmt.Errorf("gemini stream error %d (%s): %s", chunk.Error.Code, chunk.Error.Status, chunk.Error.Message)
		}
		for _, cand := range chunk.Candidates {
			for _, part := range cand.Content.Parts {
				if part.Text == "" {
					continue
				}
				full.WriteString(part.Text)
				if onDelta != nil {
					onDelta(part.Text)
				}
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return full.String(), nil
}

func (c *client) openStream(ctx context.Context, url string, payload []byte, model string) (*http.Response, error) {
	backoff := 1 * time.Second

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-goog-api-key", c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "text/event-stream")

		resp, doErr := c.httpClient.Do(req)
		if doErr == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		if doErr == nil {
			raw, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			doErr = &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
		} else {
			resp = nil
		}

		if !httpx.IsRetryableError(doErr) || attempt == c.maxRetries {
			return nil, doErr
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		c.log.Warn("Gemini stream open retrying",
			"model", model,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", doErr.Error(),
		)
		time.Sleep(sleepFor)
		backoff *= 2
	}
}
