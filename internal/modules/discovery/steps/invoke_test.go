package steps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/scoutlabs/venturescout-backend/internal/platform/gemini"
	"github.com/scoutlabs/venturescout-backend/internal/platform/logger"
)

type fakeAI struct {
	calls []string
	run   func(model string, onDelta func(string)) (string, error)
}

func (f *fakeAI) StreamGenerate(ctx context.Context, model, system string, history []gemini.Content, current string, onDelta func(string)) (string, error) {
	f.calls = append(f.calls, model)
	return f.run(model, onDelta)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func invokeWith(t *testing.T, ai *fakeAI, candidates []string, stream Streamer) (InvokeOutput, error) {
	t.Helper()
	return InvokeModel(context.Background(), InvokeDeps{Log: testLogger(t), AI: ai}, InvokeInput{
		Prompt:     ComposedPrompt{System: "sys", Candidates: candidates},
		Transcript: Transcript{Current: "hello"},
		Stream:     stream,
	})
}

func TestInvokeModelFallsThroughUnavailableCandidates(t *testing.T) {
	ai := &fakeAI{run: func(model string, onDelta func(string)) (string, error) {
		if model != "third" {
			return "", &gemini.HTTPError{StatusCode: http.StatusNotFound, Body: "model not found"}
		}
		onDelta("ok")
		return "ok", nil
	}}

	out, err := invokeWith(t, ai, []string{"first", "second", "third"}, nil)
	if err != nil {
		t.Fatalf("InvokeModel: %v", err)
	}
	if out.Model != "third" || out.Text != "ok" {
		t.Fatalf("got model=%q text=%q", out.Model, out.Text)
	}
	if len(ai.calls) != 3 {
		t.Fatalf("calls: got %v", ai.calls)
	}
}

func TestInvokeModelStopsOnHardFailure(t *testing.T) {
	hard := &gemini.HTTPError{StatusCode: http.StatusUnauthorized, Body: "bad key"}
	ai := &fakeAI{run: func(model string, onDelta func(string)) (string, error) {
		return "", hard
	}}

	_, err := invokeWith(t, ai, []string{"first", "second", "third"}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	var httpErr *gemini.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("got %v", err)
	}
	if len(ai.calls) != 1 {
		t.Fatalf("hard failure should not fall back, calls: %v", ai.calls)
	}
}

func TestInvokeModelExhaustionCarriesLastCause(t *testing.T) {
	ai := &fakeAI{run: func(model string, onDelta func(string)) (string, error) {
		return "", fmt.Errorf("model %s not found", model)
	}}

	_, err := invokeWith(t, ai, []string{"first", "second"}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "all model candidates failed") {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(err.Error(), "second") {
		t.Fatalf("last cause missing: %v", err)
	}
}

func TestInvokeModelMidStreamFailureIsTerminal(t *testing.T) {
	ai := &fakeAI{run: func(model string, onDelta func(string)) (string, error) {
		onDelta("partial ")
		return "", &gemini.HTTPError{StatusCode: http.StatusNotFound, Body: "gone"}
	}}

	var seen strings.Builder
	_, err := invokeWith(t, ai, []string{"first", "second"}, StreamerFunc(func(d string) {
		seen.WriteString(d)
	}))
	if err == nil || !strings.Contains(err.Error(), "broke mid-response") {
		t.Fatalf("got %v", err)
	}
	if len(ai.calls) != 1 {
		t.Fatalf("mid-stream failure should not fall back, calls: %v", ai.calls)
	}
	if seen.String() != "partial " {
		t.Fatalf("streamed: %q", seen.String())
	}
}

func TestInvokeModelRequiresCandidates(t *testing.T) {
	ai := &fakeAI{run: func(string, func(string)) (string, error) { return "", nil }}
	if _, err := invokeWith(t, ai, nil, nil); err == nil {
		t.Fatalf("expected error for empty candidate list")
	}
}
