package steps

// Phase names the stage a conversation has reached. It picks the system
// prompt, the model tier, and how the raw model output gets structured.
type Phase string

const (
	PhaseDiscovery          Phase = "discovery"
	PhaseSuggestion         Phase = "suggestion"
	PhaseDocumentGeneration Phase = "document_generation"
)

// Streamer receives response text as it arrives from the model. Implemented
// by the HTTP layer to flush chunks to the client mid-request.
type Streamer interface {
	Write(delta string)
}

// StreamerFunc adapts a plain function to the Streamer interface.
type StreamerFunc func(delta string)

func (f StreamerFunc) Write(delta string) { f(delta) }
