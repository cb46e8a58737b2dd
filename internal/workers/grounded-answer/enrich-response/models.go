// internal/workers/grounded-answer/enrich-response/models.go
package enrichresponse

import (
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"
	assemblecontext "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/assemble-context"
	generateanswer "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/generate-answer"
)

type Input struct {
	Question string
	Language models.Language
	Mode     models.Mode
	Answer   *generateanswer.Output
	// Assembled is nil in internet mode.
	Assembled *assemblecontext.Output
}
