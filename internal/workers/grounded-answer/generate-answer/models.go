// internal/workers/grounded-answer/generate-answer/models.go
package generateanswer

import "github.com/Sankalp-SISL/MIDC-chatbot/internal/models"

type Input struct {
	Question string          `json:"question"`
	Language models.Language `json:"language"`
	Mode     models.Mode     `json:"mode"`
	// Context is the assembled grounding text; unused in internet mode.
	Context string `json:"context,omitempty"`
}

type Output struct {
	Text      string        `json:"text"`
	Citations []models.Link `json:"citations,omitempty"`
	// HTML and AnswerLinks are filled when rich rendering is on.
	HTML        string        `json:"html,omitempty"`
	AnswerLinks []models.Link `json:"answerLinks,omitempty"`
	// Fallback is set when Text is the not-available sentinel because the
	// model failed or returned nothing.
	Fallback bool `json:"fallback"`
}
