// internal/workers/grounded-answer/compose-answer/pipeline.go
package composeanswer

import (
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/config"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/genai"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/knowledge"
	arbitratemode "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/arbitrate-mode"
	assemblecontext "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/assemble-context"
	detectlanguage "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/detect-language"
	enrichresponse "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/enrich-response"
	generateanswer "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/generate-answer"
	selectdocuments "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/select-documents"
	"github.com/Sankalp-SISL/MIDC-chatbot/pkg/registry"
)

// Stages are the six pipeline steps the orchestrator drives in order.
type Stages struct {
	Language *detectlanguage.Handler
	Mode     *arbitratemode.Handler
	Select   *selectdocuments.Handler
	Assemble *assemblecontext.Handler
	Generate *generateanswer.Handler
	Enrich   *enrichresponse.Handler
}

// NewStages wires every stage from the service configuration.
func NewStages(cfg *config.Config, repo knowledge.Repository, model genai.Client, reg *registry.KeywordRegistry, log logger.Logger) Stages {
	return Stages{
		Language: detectlanguage.NewHandler(reg),
		Mode:     arbitratemode.NewHandler(reg, log),
		Select:   selectdocuments.NewHandler(selectdocuments.LoadConfig(cfg.Pipeline), repo, model, reg, log),
		Assemble: assemblecontext.NewHandler(assemblecontext.LoadConfig(cfg.Pipeline), log),
		Generate: generateanswer.NewHandler(generateanswer.LoadConfig(cfg.Model, cfg.Pipeline), model, reg, log),
		Enrich:   enrichresponse.NewHandler(enrichresponse.LoadConfig(cfg.Pipeline), model, reg, log),
	}
}
