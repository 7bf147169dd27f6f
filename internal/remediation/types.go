package remediation

import "encoding/json"

// ModelResponse is the JSON object returned by the complaint agent. Every field
// is optional; missing fields take the defaults applied by Normalize. Error is
// set instead of the payload when the model call itself failed.
type ModelResponse struct {
	Routing               *Routing  `json:"routing,omitempty" yaml:"routing,omitempty"`
	Summary               string    `json:"summary" yaml:"summary"`
	Steps                 []Step    `json:"steps_to_apply" yaml:"steps_to_apply"`
	VerificationChecklist []string  `json:"verification_checklist" yaml:"verification_checklist"`
	RequestsForMoreInfo   []string  `json:"requests_for_more_info" yaml:"requests_for_more_info"`
	Solution              *Solution `json:"solution,omitempty" yaml:"solution,omitempty"`
	Error                 *string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Routing is the technical/non-technical classification of a complaint.
type Routing struct {
	IsTechnical *bool   `json:"is_technical,omitempty" yaml:"is_technical,omitempty"`
	Category    *string `json:"category" yaml:"category"`
	Confidence  float64 `json:"confidence" yaml:"confidence"`
}

// Step is one remediation action, optionally carrying literal commands.
type Step struct {
	Text     string   `json:"text" yaml:"text"`
	Commands []string `json:"commands" yaml:"commands"`
}

// Solution is the optional free-form code block the model may emit.
type Solution struct {
	CodeLanguage *string `json:"code_language" yaml:"code_language"`
	Code         *string `json:"code" yaml:"code"`
}

// Failed builds the error-bearing response used when the model call fails.
func Failed(message string) *ModelResponse {
	return &ModelResponse{Error: &message}
}

// IsTechnical reports routing.is_technical, defaulting to true when absent.
func (r *ModelResponse) IsTechnical() bool {
	if r == nil || r.Routing == nil || r.Routing.IsTechnical == nil {
		return true
	}
	return *r.Routing.IsTechnical
}

// Category returns routing.category, or nil when the model gave none.
func (r *ModelResponse) Category() *string {
	if r == nil || r.Routing == nil {
		return nil
	}
	return r.Routing.Category
}

func (r *ModelResponse) solutionCode() string {
	if r.Solution == nil || r.Solution.Code == nil {
		return ""
	}
	return *r.Solution.Code
}

func (r *ModelResponse) codeLanguage() *string {
	if r.Solution == nil {
		return nil
	}
	return r.Solution.CodeLanguage
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// UIResult is the render-ready shape handed to the UI and ticket layer.
type UIResult struct {
	Status        string   `json:"status" yaml:"status"`
	Message       string   `json:"message,omitempty" yaml:"message,omitempty"`
	IsTechnical   bool     `json:"is_technical" yaml:"is_technical"`
	Category      *string  `json:"category" yaml:"category"`
	Summary       *string  `json:"summary" yaml:"summary"`
	Steps         []string `json:"steps" yaml:"steps"`
	Verify        []string `json:"verify" yaml:"verify"`
	AskMore       []string `json:"ask_more" yaml:"ask_more"`
	CodeLanguage  *string  `json:"code_language" yaml:"code_language"`
	Code          *string  `json:"code" yaml:"code"`
	TicketPrefill string   `json:"ticket_prefill" yaml:"ticket_prefill"`
}

// MarshalJSON emits only status and message for error results.
func (u UIResult) MarshalJSON() ([]byte, error) {
	if u.Status == StatusError {
		return json.Marshal(struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}{u.Status, u.Message})
	}
	type plain UIResult
	return json.Marshal(plain(u))
}
