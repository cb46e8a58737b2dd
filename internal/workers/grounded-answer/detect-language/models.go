// internal/workers/grounded-answer/detect-language/models.go
package detectlanguage

import "github.com/Sankalp-SISL/MIDC-chatbot/internal/models"

type Input struct {
	Text string `json:"text"`
}

type Output struct {
	Language models.Language `json:"language"`
	// Instruction is the "respond in ..." line threaded into prompts.
	Instruction string `json:"instruction"`
}
