package steps

import (
	"fmt"
	"net/http"
	"strings"

	types "github.com/scoutlabs/venturescout-backend/internal/domain/discovery"
	"github.com/scoutlabs/venturescout-backend/internal/platform/apierr"
)

// maxTranscriptTurns bounds how much history a single request may carry.
// Older turns beyond the cap are dropped from the front.
const maxTranscriptTurns = 200

// Transcript is a cleaned conversation: strictly alternating turns plus the
// newest user message split out for prompt assembly.
type Transcript struct {
	History []types.Turn
	Current string
}

// UserTurnCount counts user turns including the current one.
func (t Transcript) UserTurnCount() int {
	n := 1
	for _, turn := range t.History {
		if turn.IsUser() {
			n++
		}
	}
	return n
}

// AssistantTexts returns every assistant turn in order.
func (t Transcript) AssistantTexts() []string {
	var out []string
	for _, turn := range t.History {
		if !turn.IsUser() {
			out = append(out, turn.Text)
		}
	}
	return out
}

// NormalizeTranscript turns a raw client transcript into model-ready shape:
// blank turns disappear, the newest user message becomes Current, and the
// prior turns are normalized into History with leading assistant turns
// dropped and runs of same-speaker turns collapsed to the earliest turn of
// the run. The transcript must end with the user turn that the model is
// being asked to answer.
func NormalizeTranscript(raw []types.Turn) (Transcript, error) {
	if len(raw) > maxTranscriptTurns {
		raw = raw[len(raw)-maxTranscriptTurns:]
	}

	filtered := make([]types.Turn, 0, len(raw))
	for _, turn := range raw {
		text := strings.TrimSpace(turn.Text)
		if text == "" {
			continue
		}
		filtered = append(filtered, types.Turn{Speaker: turn.Speaker, Text: text})
	}
	if len(filtered) == 0 {
		return Transcript{}, apierr.New(http.StatusBadRequest, "transcript_malformed", fmt.Errorf("transcript has no user turns"))
	}

	// The newest message splits off before history is collapsed, so a user
	// follow-up sent right after another user message is never folded away.
	last := filtered[len(filtered)-1]
	if !last.IsUser() {
		return Transcript{}, apierr.New(http.StatusBadRequest, "transcript_malformed", fmt.Errorf("transcript must end with a user turn"))
	}

	history := make([]types.Turn, 0, len(filtered)-1)
	for _, turn := range filtered[:len(filtered)-1] {
		if len(history) == 0 && !turn.IsUser() {
			// Client greeting produced by the model itself carries no signal
			// for the next completion.
			continue
		}
		if len(history) > 0 && history[len(history)-1].Speaker == turn.Speaker {
			continue
		}
		history = append(history, turn)
	}

	return Transcript{History: history, Current: last.Text}, nil
}
