package organiser

// Category classifies a failed save. Skipped saves carry CategoryNone.
type Category string

const (
	CategoryNone    Category = "none"
	CategoryAuth    Category = "auth_error"
	CategoryBackend Category = "backend_error"
)

// Skip reasons.
const (
	ReasonMissingUtterance = "missing_utterance"
	ReasonNoSaveIntent     = "no_save_intent"
)

// Where the final project name came from.
const (
	ProjectFromArgument  = "argument"
	ProjectFromUtterance = "utterance"
	ProjectDefault       = "default"
)

// Outcome is the result of one save call, returned to the calling agent.
// Hint tells the agent how to phrase the result to its user.
type Outcome struct {
	Saved         bool     `json:"saved"`
	Skipped       bool     `json:"skipped"`
	Category      Category `json:"error_category"`
	Reason        string   `json:"reason,omitempty"`
	Error         string   `json:"error,omitempty"`
	Hint          string   `json:"hint"`
	StatusCode    int      `json:"status_code,omitempty"`
	ProjectName   string   `json:"project_name,omitempty"`
	ProjectSource string   `json:"project_source,omitempty"`
	Title         string   `json:"title,omitempty"`
	BodyPreview   string   `json:"body_preview,omitempty"`
	Response      any      `json:"backend_response,omitempty"`
}

// Failed reports whether the outcome is an error (not a save, not a skip).
func (o Outcome) Failed() bool {
	return !o.Saved && !o.Skipped
}

func skipped(reason, hint string) Outcome {
	return Outcome{Skipped: true, Category: CategoryNone, Reason: reason, Hint: hint}
}

func failure(cat Category, msg, hint string) Outcome {
	return Outcome{Category: cat, Error: msg, Hint: hint}
}
