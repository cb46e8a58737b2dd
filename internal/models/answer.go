// internal/models/answer.go
package models

// Intent tags.
const (
	IntentInvestor = "investor"
	IntentLand     = "land"
	IntentRTS      = "rts"
	IntentForm     = "form"
	IntentGeneral  = "general"
)

// Intents is the closed set a classification may return.
var Intents = []string{IntentInvestor, IntentLand, IntentRTS, IntentForm, IntentGeneral}

// IsIntent reports whether s is in Intents.
func IsIntent(s string) bool {
	for _, i := range Intents {
		if i == s {
			return true
		}
	}
	return false
}

type ConversationState struct {
	Intent           string `json:"intent"`
	ShouldFollowUp   bool   `json:"shouldFollowUp"`
	FollowUpMessage  string `json:"followUpMessage,omitempty"`
	TimestampSeconds int64  `json:"timestampSeconds"`
}

// ComposedAnswer is the result of one pipeline run.
type ComposedAnswer struct {
	Text              string            `json:"text"`
	Confidence        float64           `json:"confidence"`
	Sources           []string          `json:"sources"`
	RecommendedPages  []Link            `json:"recommendedPages"`
	FormsDetected     []FormDescriptor  `json:"formsDetected"`
	ExternalLinks     []Link            `json:"externalLinks"`
	ConversationState ConversationState `json:"conversationState"`

	Mode      Mode     `json:"mode,omitempty"`
	Language  Language `json:"language,omitempty"`
	HTML      string   `json:"html,omitempty"`
	RequestID string   `json:"requestId,omitempty"`
}
