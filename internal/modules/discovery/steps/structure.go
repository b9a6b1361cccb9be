package steps

import (
	"encoding/json"
	"regexp"
	"strings"

	types "github.com/scoutlabs/venturescout-backend/internal/domain/discovery"
)

// StructuredResponse is what the post-stream pass recovers from raw model
// output. Zero values mean the pass found nothing of that kind; raw text is
// always preserved for display.
type StructuredResponse struct {
	Display     string
	Suggestions *types.SuggestionSet
	PRD         string
	LandingPage string
}

// StructureResponse runs document extraction first, then suggestion JSON
// extraction, on a fully accumulated response. It never fails: output that
// cannot be structured is returned as plain display text.
func StructureResponse(raw string) StructuredResponse {
	out := StructuredResponse{Display: raw}

	display := raw
	if body, rest, ok := extractMarkedSpan(display, prdOpenMarker, prdCloseMarker); ok {
		out.PRD = body
		display = rest
	}
	if body, rest, ok := extractMarkedSpan(display, landingPageOpenMarker, landingPageCloseMark); ok {
		out.LandingPage = body
		display = rest
	}

	if set, rest, ok := extractSuggestionJSON(display); ok {
		out.Suggestions = set
		display = rest
	}

	out.Display = strings.TrimSpace(display)
	return out
}

// extractMarkedSpan pulls the text between an open/close marker pair,
// returning the body and the input with the whole span removed. Unmatched
// markers leave the input untouched.
func extractMarkedSpan(s, open, close string) (body, rest string, ok bool) {
	start := strings.Index(s, open)
	if start < 0 {
		return "", s, false
	}
	endRel := strings.Index(s[start+len(open):], close)
	if endRel < 0 {
		return "", s, false
	}
	end := start + len(open) + endRel
	body = strings.TrimSpace(s[start+len(open) : end])
	rest = s[:start] + s[end+len(close):]
	return body, rest, true
}

// rawSuggestionSet mirrors the JSON the model is instructed to emit.
type rawSuggestionSet struct {
	Intro           string          `json:"intro"`
	ProblemTags     []string        `json:"problemTags"`
	Suggestions     []rawSuggestion `json:"suggestions"`
	SelectionPrompt string          `json:"selectionPrompt"`
}

type rawSuggestion struct {
	Title   string    `json:"title"`
	Summary string    `json:"summary"`
	Tags    []string  `json:"tags"`
	Fields  rawFields `json:"fields"`
}

type rawFields struct {
	Pain                 string         `json:"Pain"`
	Solution             string         `json:"Solution"`
	IdealCustomerProfile string         `json:"Ideal Customer Profile"`
	BusinessModelPricing string         `json:"Business Model/Pricing"`
	GoToMarketPlan       string         `json:"Go-to-Market Plan"`
	CurrentSolutions     string         `json:"Current Solutions"`
	TenXOpportunity      string         `json:"10x Better Opportunity"`
	FeatureList          rawFeatureList `json:"Feature List"`
}

type rawFeatureList struct {
	Core []string `json:"Core"`
	Base []string `json:"Base"`
}

// extractSuggestionJSON finds the first balanced top-level {...} span and
// parses it as a suggestion set. A failed parse gets exactly one retry after
// quote and trailing-comma normalization; anything else fails closed.
func extractSuggestionJSON(s string) (*types.SuggestionSet, string, bool) {
	span, start, end, found := balancedBraceSpan(s)
	if !found {
		return nil, s, false
	}

	raw, ok := parseSuggestionSpan(span)
	if !ok {
		raw, ok = parseSuggestionSpan(normalizeJSONText(span))
	}
	if !ok {
		return nil, s, false
	}

	set := &types.SuggestionSet{
		Intro:           raw.Intro,
		ProblemTags:     raw.ProblemTags,
		SelectionPrompt: raw.SelectionPrompt,
	}
	for _, rs := range raw.Suggestions {
		set.Suggestions = append(set.Suggestions, types.Suggestion{
			Title:   rs.Title,
			Summary: rs.Summary,
			Tags:    rs.Tags,
			Fields: types.SuggestionFields{
				Pain:                 rs.Fields.Pain,
				Solution:             rs.Fields.Solution,
				IdealCustomerProfile: rs.Fields.IdealCustomerProfile,
				BusinessModelPricing: rs.Fields.BusinessModelPricing,
				GoToMarketPlan:       rs.Fields.GoToMarketPlan,
				CurrentSolutions:     rs.Fields.CurrentSolutions,
				TenXOpportunity:      rs.Fields.TenXOpportunity,
				FeatureList: types.FeatureList{
					Core: NormalizeFeatures(rs.Fields.FeatureList.Core),
					Base: NormalizeFeatures(rs.Fields.FeatureList.Base),
				},
			},
		})
	}

	rest := s[:start] + s[end:]
	return set, rest, true
}

func parseSuggestionSpan(span string) (rawSuggestionSet, bool) {
	var raw rawSuggestionSet
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return rawSuggestionSet{}, false
	}
	// A balanced object without a suggestions array is some other JSON the
	// model happened to emit. Do not guess partial structure.
	if raw.Suggestions == nil {
		return rawSuggestionSet{}, false
	}
	return raw, true
}

// balancedBraceSpan returns the first top-level {...} span, tracking string
// and escape state so braces inside JSON strings do not miscount depth.
func balancedBraceSpan(s string) (span string, start, end int, found bool) {
	start = strings.IndexByte(s, '{')
	if start < 0 {
		return "", 0, 0, false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], start, i + 1, true
			}
		}
	}
	return "", 0, 0, false
}

var (
	smartQuoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
	)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

func normalizeJSONText(s string) string {
	s = smartQuoteReplacer.Replace(s)
	return trailingCommaRe.ReplaceAllString(s, "$1")
}
