package discovery

// SuggestionSet is the structured payload the model emits at the end of the
// discovery phase: an intro, three problem tags, and exactly three proposals.
type SuggestionSet struct {
	Intro           string       `json:"intro"`
	ProblemTags     []string     `json:"problemTags"`
	Suggestions     []Suggestion `json:"suggestions"`
	SelectionPrompt string       `json:"selectionPrompt,omitempty"`
}

type Suggestion struct {
	Title   string           `json:"title"`
	Summary string           `json:"summary"`
	Tags    []string         `json:"tags"`
	Fields  SuggestionFields `json:"fields"`
}

// SuggestionFields keeps the display-oriented keys the model is instructed to
// produce; they double as column sources for persistence.
type SuggestionFields struct {
	Pain                 string      `json:"Pain"`
	Solution             string      `json:"Solution"`
	IdealCustomerProfile string      `json:"Ideal Customer Profile"`
	BusinessModelPricing string      `json:"Business Model/Pricing"`
	GoToMarketPlan       string      `json:"Go-to-Market Plan"`
	CurrentSolutions     string      `json:"Current Solutions"`
	TenXOpportunity      string      `json:"10x Better Opportunity"`
	FeatureList          FeatureList `json:"Feature List"`
}

type FeatureList struct {
	Core []string `json:"Core"`
	Base []string `json:"Base"`
}
