package discovery

import (
	"encoding/json"
	"strings"
)

const (
	SpeakerUser      = "user"
	SpeakerAssistant = "assistant"
)

// Turn is one utterance in the interview transcript. The client resends the
// full transcript on every request; nothing about the conversation is held
// server-side between turns.
type Turn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// UnmarshalJSON accepts the canonical {speaker,text} shape and the legacy
// {role,content} shape ("model" counts as assistant).
func (t *Turn) UnmarshalJSON(data []byte) error {
	var raw struct {
		Speaker string `json:"speaker"`
		Text    string `json:"text"`
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	speaker := strings.ToLower(strings.TrimSpace(raw.Speaker))
	if speaker == "" {
		speaker = strings.ToLower(strings.TrimSpace(raw.Role))
	}
	switch speaker {
	case "model", "assistant":
		t.Speaker = SpeakerAssistant
	default:
		t.Speaker = SpeakerUser
	}
	t.Text = raw.Text
	if t.Text == "" {
		t.Text = raw.Content
	}
	return nil
}

func (t Turn) IsUser() bool { return t.Speaker == SpeakerUser }
