package modelcfg

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tiers holds the ordered model-candidate lists per conversation phase.
// Position 0 is tried first; later entries are fallbacks.
type Tiers struct {
	Discovery  []string `yaml:"discovery"`
	Suggestion []string `yaml:"suggestion"`
	Documents  []string `yaml:"documents"`
}

// Default mirrors the latency/quality trade-off of the interview script:
// many short turns favor the fast tier, the one expensive document turn
// favors the quality tier.
func Default() Tiers {
	return Tiers{
		Discovery:  []string{"gemini-2.5-flash", "gemini-2.0-flash"},
		Suggestion: []string{"gemini-2.5-flash", "gemini-2.0-flash"},
		Documents:  []string{"gemini-2.5-pro", "gemini-2.5-flash"},
	}
}

// Load reads a YAML override file. Phases left empty in the file keep their
// defaults.
func Load(path string) (Tiers, error) {
	out := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	var file Tiers
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return out, fmt.Errorf("parse model tiers %s: %w", path, err)
	}
	if len(file.Discovery) > 0 {
		out.Discovery = trimAll(file.Discovery)
	}
	if len(file.Suggestion) > 0 {
		out.Suggestion = trimAll(file.Suggestion)
	}
	if len(file.Documents) > 0 {
		out.Documents = trimAll(file.Documents)
	}
	return out, nil
}

// FromEnv loads MODEL_TIERS_PATH when set, otherwise returns defaults.
func FromEnv() (Tiers, error) {
	path := strings.TrimSpace(os.Getenv("MODEL_TIERS_PATH"))
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
