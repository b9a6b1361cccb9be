package steps

import (
	"strings"
)

// Acronyms that stay fully uppercase when feature phrases are title-cased.
var featureAcronyms = map[string]string{
	"ai":   "AI",
	"api":  "API",
	"apis": "APIs",
	"b2b":  "B2B",
	"b2c":  "B2C",
	"crm":  "CRM",
	"csv":  "CSV",
	"erp":  "ERP",
	"faq":  "FAQ",
	"gps":  "GPS",
	"iot":  "IoT",
	"kpi":  "KPI",
	"kpis": "KPIs",
	"ml":   "ML",
	"mvp":  "MVP",
	"pdf":  "PDF",
	"saas": "SaaS",
	"sdk":  "SDK",
	"seo":  "SEO",
	"sms":  "SMS",
	"sso":  "SSO",
	"ui":   "UI",
	"ux":   "UX",
}

// lowercase connectives that stay lowercase mid-phrase.
var featureMinorWords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true,
	"by": true, "for": true, "from": true, "in": true, "of": true,
	"on": true, "or": true, "per": true, "the": true, "to": true,
	"via": true, "with": true,
}

// NormalizeFeatures cleans a model-produced feature list for display and
// storage: each entry is split into individual phrases whether it arrived as
// one item or as a blob of comma, newline, or bullet separated text, mid-word
// hyphenation from wrapped output is healed, blanks are dropped, and each
// phrase is title-cased with acronyms preserved. The function is idempotent,
// so re-normalizing stored features changes nothing.
func NormalizeFeatures(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		for _, phrase := range splitFeatureBlob(entry) {
			out = append(out, titleCasePhrase(phrase))
		}
	}
	return out
}

// splitFeatureBlob breaks one entry into individual feature phrases. Models
// sometimes emit the whole list as a single blob. Hyphenation across a wrap,
// as in "real-\ntime", is healed before splitting so the hyphen is not
// mistaken for a bullet marker.
func splitFeatureBlob(entry string) []string {
	entry = strings.ReplaceAll(entry, "-\n", "")
	entry = strings.ReplaceAll(entry, "\r\n", "\n")
	entry = strings.ReplaceAll(entry, "\r", "\n")

	var phrases []string
	for _, line := range strings.Split(entry, "\n") {
		for _, piece := range strings.Split(line, ",") {
			piece = strings.TrimSpace(piece)
			piece = strings.TrimLeft(piece, "-–•*")
			piece = strings.Join(strings.Fields(piece), " ")
			if piece != "" {
				phrases = append(phrases, piece)
			}
		}
	}
	return phrases
}

func titleCasePhrase(phrase string) string {
	words := strings.Fields(phrase)
	for i, word := range words {
		words[i] = titleCaseWord(word, i == 0)
	}
	return strings.Join(words, " ")
}

func titleCaseWord(word string, first bool) string {
	lower := strings.ToLower(word)
	if acr, ok := featureAcronyms[lower]; ok {
		return acr
	}
	// Words the model already cased beyond a plain capital, like "PostgreSQL"
	// or "OAuth", pass through untouched.
	if word != lower && word != capitalize(lower) {
		return word
	}
	if !first && featureMinorWords[lower] {
		return lower
	}
	// Hyphenated compounds title-case each part, like "Real-Time".
	if strings.Contains(lower, "-") {
		parts := strings.Split(lower, "-")
		for i, part := range parts {
			if acr, ok := featureAcronyms[part]; ok {
				parts[i] = acr
			} else {
				parts[i] = capitalize(part)
			}
		}
		return strings.Join(parts, "-")
	}
	return capitalize(lower)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
