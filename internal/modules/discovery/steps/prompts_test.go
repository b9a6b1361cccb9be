package steps

import (
	"reflect"
	"strings"
	"testing"

	types "github.com/scoutlabs/venturescout-backend/internal/domain/discovery"
	"github.com/scoutlabs/venturescout-backend/internal/platform/modelcfg"
)

func TestComposePromptDiscoveryHasNoAppendix(t *testing.T) {
	tiers := modelcfg.Default()

	// One user turn after a greeting: still interviewing.
	tr, err := NormalizeTranscript([]types.Turn{
		{Speaker: types.SpeakerAssistant, Text: "Hi! Tell me about yourself."},
		{Speaker: types.SpeakerUser, Text: "I run a logistics consultancy"},
	})
	if err != nil {
		t.Fatalf("NormalizeTranscript: %v", err)
	}
	cls := ClassifyPhase(tr)
	if cls.Phase != PhaseDiscovery {
		t.Fatalf("phase: got %s want discovery", cls.Phase)
	}

	got := ComposePrompt(cls.Phase, tiers)
	if got.System != baseInstruction {
		t.Fatalf("discovery prompt should be the bare base instruction")
	}
	if !reflect.DeepEqual(got.Candidates, tiers.Discovery) {
		t.Fatalf("candidates: got %v want %v", got.Candidates, tiers.Discovery)
	}
}

func TestComposePromptSuggestion(t *testing.T) {
	tiers := modelcfg.Default()
	got := ComposePrompt(PhaseSuggestion, tiers)

	if !strings.HasPrefix(got.System, baseInstruction) {
		t.Fatalf("suggestion prompt should extend the base instruction")
	}
	for _, fragment := range []string{`"suggestions"`, "exactly 3", "Do NOT emit"} {
		if !strings.Contains(got.System, fragment) {
			t.Fatalf("suggestion appendix missing %q", fragment)
		}
	}
	if !reflect.DeepEqual(got.Candidates, tiers.Suggestion) {
		t.Fatalf("candidates: got %v want %v", got.Candidates, tiers.Suggestion)
	}
}

func TestComposePromptDocuments(t *testing.T) {
	tiers := modelcfg.Default()
	got := ComposePrompt(PhaseDocumentGeneration, tiers)

	for _, fragment := range []string{prdOpenMarker, prdCloseMarker, landingPageOpenMarker, landingPageCloseMark} {
		if !strings.Contains(got.System, fragment) {
			t.Fatalf("document appendix missing marker %q", fragment)
		}
	}
	if !reflect.DeepEqual(got.Candidates, tiers.Documents) {
		t.Fatalf("candidates: got %v want %v", got.Candidates, tiers.Documents)
	}
}
