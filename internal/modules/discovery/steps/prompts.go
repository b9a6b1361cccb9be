package steps

import (
	"github.com/scoutlabs/venturescout-backend/internal/platform/modelcfg"
)

const (
	prdOpenMarker         = "<PRD_FILE>"
	prdCloseMarker        = "</PRD_FILE>"
	landingPageOpenMarker = "<LANDING_PAGE_FILE>"
	landingPageCloseMark  = "</LANDING_PAGE_FILE>"
)

// baseInstruction scripts the whole interview. It rides along on every call
// so the model keeps its bearings regardless of phase.
const baseInstruction = `You are a startup discovery interviewer. The objective is to arrive at a new business venture that satisfies three criteria:
1. The founder has domain expertise in the problem space.
2. The venture is a globally scalable B2B SaaS.
3. The founder personally knows at least 10 people who would be immediate pilot customers.

Interview the founder with 8 questions to pin these down as precisely as possible. Ask the questions one at a time, never more than one per reply. Keep every reply short and concise so the founder is not overwhelmed.

If the founder does not know at least 10 potential pilot customers, ask whether they could easily reach 10. If they cannot, restart the interview from the beginning.

After the interview you will propose 3 business solutions, and later expand the chosen one into a product requirements document and landing page copy. Do not produce suggestions or documents until instructed.`

// suggestionAppendix forces the strict JSON body the structurer expects.
const suggestionAppendix = `

The interview is complete. Respond with ONLY a single JSON object and nothing else: no prose before or after, no code fence, no comments.

The object must have exactly this shape:
{
  "intro": string,
  "problemTags": [string, string, string],
  "suggestions": [
    {
      "title": string,
      "summary": string,
      "tags": [string, string, string],
      "fields": {
        "Pain": string,
        "Solution": string,
        "Ideal Customer Profile": string,
        "Business Model/Pricing": string,
        "Go-to-Market Plan": string,
        "Current Solutions": string,
        "10x Better Opportunity": string,
        "Feature List": { "Core": [string], "Base": [string] }
      }
    }
  ],
  "selectionPrompt": string
}

"suggestions" must contain exactly 3 entries.

Formatting rules for every entry in "Core" and "Base":
- one complete feature phrase per array entry
- no line breaks inside a phrase
- no hyphenation splitting a word across entries
- acronyms stay uppercase (AI, API, CRM, B2B and similar)

"problemTags" names the founder's problem domain; each suggestion's "tags" names that solution's angle. "selectionPrompt" asks the founder to pick solution 1, 2 or 3.

Do NOT emit the product requirements document or the landing page yet.`

// documentAppendix requests the two marker-wrapped documents.
const documentAppendix = `

The founder has selected a solution. Start your reply with one short confirmation sentence naming the selected solution. Then emit exactly two markdown documents.

Wrap the Product Requirement Document in ` + prdOpenMarker + ` ... ` + prdCloseMarker + `.
Wrap the landing page copy in ` + landingPageOpenMarker + ` ... ` + landingPageCloseMark + `.
The markers must appear as raw text, never inside a code fence.

Product Requirement Document outline, in order: overview, problem, solution, target users, features split into core functions for the MVP and base functions, future product roadmap, business model, go-to-market plan, success metrics, technical considerations. Assume the tech stack is Next.js, Supabase, Vercel, Tailwind CSS, shadcn UI and Lucide React icons.

Landing page outline, in order: hero with pain-led headline, problem, solution, features, how it works, pricing, call to action, FAQ. Write high-converting copy targeted at the Ideal Customer Profile.`

// ComposedPrompt pairs the system instruction with the ordered model
// candidates to try for it.
type ComposedPrompt struct {
	System     string
	Candidates []string
}

// ComposePrompt maps a phase to its system instruction and model tier.
func ComposePrompt(phase Phase, tiers modelcfg.Tiers) ComposedPrompt {
	switch phase {
	case PhaseSuggestion:
		return ComposedPrompt{
			System:     baseInstruction + suggestionAppendix,
			Candidates: tiers.Suggestion,
		}
	case PhaseDocumentGeneration:
		return ComposedPrompt{
			System:     baseInstruction + documentAppendix,
			Candidates: tiers.Documents,
		}
	default:
		return ComposedPrompt{
			System:     baseInstruction,
			Candidates: tiers.Discovery,
		}
	}
}
