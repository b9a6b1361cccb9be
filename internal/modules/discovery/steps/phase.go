package steps

import (
	"regexp"
	"strconv"
	"strings"
)

// discoveryQuestionBudget is how many user turns the interview runs before
// the model is asked to produce solution suggestions. The first user turn is
// the opener, then eight answered questions.
const discoveryQuestionBudget = 9

var selectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*([123])\s*[.)!]?\s*$`),
	regexp.MustCompile(`(?i)\bsolution\s*(?:#\s*)?([123])\b`),
	regexp.MustCompile(`(?i)\boption\s*(?:#\s*)?([123])\b`),
	regexp.MustCompile(`(?i)\b(?:pick|choose|select|build|go\s+with)\s+(?:the\s+)?(?:solution\s+|option\s+|number\s+)?([123])\b`),
}

// ParseSelection reports which suggested solution (1..3) the message picks,
// if any. The first matching pattern wins.
func ParseSelection(text string) (int, bool) {
	for _, re := range selectionPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil && n >= 1 && n <= 3 {
				return n, true
			}
		}
	}
	return 0, false
}

// hasSuggestionPayload reports whether an assistant turn already delivered
// the structured suggestions block.
func hasSuggestionPayload(assistantTexts []string) bool {
	for _, text := range assistantTexts {
		if strings.Contains(text, `"suggestions"`) {
			return true
		}
	}
	return false
}

// Classification is the outcome of phase selection. Selection is only set
// for the document generation phase.
type Classification struct {
	Phase     Phase
	Selection int
}

// ClassifyPhase decides what the next model call should produce.
//
// Document generation fires only when suggestions were already shown and the
// newest user message picks one of them. Until the question budget is spent
// the interview continues; on the turn that exhausts it, and as long as no
// suggestion payload exists yet, suggestions are requested. Anything else,
// including follow-up chatter after suggestions that picks nothing, falls
// back to discovery.
func ClassifyPhase(t Transcript) Classification {
	assistant := t.AssistantTexts()
	if hasSuggestionPayload(assistant) {
		if n, ok := ParseSelection(t.Current); ok {
			return Classification{Phase: PhaseDocumentGeneration, Selection: n}
		}
		return Classification{Phase: PhaseDiscovery}
	}

	userTurns := t.UserTurnCount()
	if userTurns < discoveryQuestionBudget {
		return Classification{Phase: PhaseDiscovery}
	}
	if userTurns == discoveryQuestionBudget {
		return Classification{Phase: PhaseSuggestion}
	}
	return Classification{Phase: PhaseDiscovery}
}
