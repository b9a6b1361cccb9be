package steps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	types "github.com/scoutlabs/venturescout-backend/internal/domain/discovery"
	"github.com/scoutlabs/venturescout-backend/internal/platform/gemini"
	"github.com/scoutlabs/venturescout-backend/internal/platform/logger"
)

type InvokeDeps struct {
	Log *logger.Logger
	AI  gemini.Client
}

type InvokeInput struct {
	Prompt     ComposedPrompt
	Transcript Transcript
	Stream     Streamer
}

type InvokeOutput struct {
	// Text is the full accumulated response.
	Text string
	// Model is the candidate that produced it.
	Model string
}

// IsModelUnavailable classifies errors that justify trying the next
// candidate: the model id does not exist or is not served at this endpoint.
// Everything else (auth, quota, malformed request) is systemic and must not
// be masked by a slow walk down the fallback chain.
func IsModelUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *gemini.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "unsupported model")
}

// InvokeModel streams a completion from the first candidate that accepts the
// request. Candidates are tried strictly in order; a candidate that fails
// after any output has already been streamed is terminal, because the client
// has seen a partial turn that a retry could not retract.
func InvokeModel(ctx context.Context, deps InvokeDeps, in InvokeInput) (InvokeOutput, error) {
	if len(in.Prompt.Candidates) == 0 {
		return InvokeOutput{}, fmt.Errorf("no model candidates configured")
	}

	history := make([]gemini.Content, 0, len(in.Transcript.History))
	for _, turn := range in.Transcript.History {
		role := gemini.RoleModel
		if turn.Speaker == types.SpeakerUser {
			role = gemini.RoleUser
		}
		history = append(history, gemini.Content{Role: role, Text: turn.Text})
	}

	var lastErr error
	for _, model := range in.Prompt.Candidates {
		streamed := false
		onDelta := func(delta string) {
			streamed = true
			if in.Stream != nil {
				in.Stream.Write(delta)
			}
		}

		text, err := deps.AI.StreamGenerate(ctx, model, in.Prompt.System, history, in.Transcript.Current, onDelta)
		if err == nil {
			return InvokeOutput{Text: text, Model: model}, nil
		}
		if streamed {
			return InvokeOutput{}, fmt.Errorf("stream from %s broke mid-response: %w", model, err)
		}
		if !IsModelUnavailable(err) {
			return InvokeOutput{}, err
		}
		deps.Log.Warn("model candidate unavailable, falling back", "model", model, "error", err)
		lastErr = err
	}

	return InvokeOutput{}, fmt.Errorf("all model candidates failed: %w", lastErr)
}
