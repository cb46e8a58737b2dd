// internal/workers/grounded-answer/compose-answer/models.go
package composeanswer

import "github.com/Sankalp-SISL/MIDC-chatbot/internal/models"

// State is a pipeline position. A run only moves forward through them.
type State string

const (
	StateStart             State = "Start"
	StateLanguageDetected  State = "LanguageDetected"
	StateModeDecided       State = "ModeDecided"
	StateDocumentsSelected State = "DocumentsSelected"
	StateContextAssembled  State = "ContextAssembled"
	StateAnswerGenerated   State = "AnswerGenerated"
	StateEnriched          State = "Enriched"
	StateDone              State = "Done"
)

var stateOrder = map[State]int{
	StateStart:             0,
	StateLanguageDetected:  1,
	StateModeDecided:       2,
	StateDocumentsSelected: 3,
	StateContextAssembled:  4,
	StateAnswerGenerated:   5,
	StateEnriched:          6,
	StateDone:              7,
}

// Outcome labels a finished run in metrics and alerts.
const (
	OutcomeAnswered     = "answered"
	OutcomeNotAvailable = "not_available"
	OutcomeUnavailable  = "unavailable"
	OutcomeStageError   = "stage_error"
)

// Input is a question as it arrives over HTTP, MCP or a workflow job.
type Input struct {
	Question  string `json:"question"`
	Mode      string `json:"mode,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type Output struct {
	models.ComposedAnswer

	States  []State `json:"-"`
	Outcome string  `json:"-"`
}
