// internal/workers/grounded-answer/arbitrate-mode/handler.go
package arbitratemode

import (
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"
	"github.com/Sankalp-SISL/MIDC-chatbot/pkg/registry"
)

const Stage = "arbitrate-mode"

type Handler struct {
	registry *registry.KeywordRegistry
	logger   logger.Logger
}

func NewHandler(reg *registry.KeywordRegistry, log logger.Logger) *Handler {
	return &Handler{
		registry: reg,
		logger:   log.With(map[string]interface{}{"stage": Stage}),
	}
}

// Execute decides the answer mode. First match wins:
//  1. an entity-safety keyword forces internal mode, even over an explicit
//     internet request;
//  2. an explicit internet request or trigger phrase selects internet mode;
//  3. otherwise internal.
func (h *Handler) Execute(input *Input) *Output {
	text := registry.NewText(input.Text)

	out := &Output{Mode: models.ModeInternal, Rule: RuleDefault}
	switch {
	case h.match(text, h.registry.EntitySafety, &out.Keyword):
		out.Rule = RuleEntitySafety
	case input.ExplicitMode == models.ExplicitModeInternet:
		out.Mode = models.ModeInternet
		out.Rule = RuleExplicitFlag
	case h.match(text, h.registry.ExplicitInternet, &out.Keyword):
		out.Mode = models.ModeInternet
		out.Rule = RuleTriggerPhrase
	}

	if out.Rule == RuleEntitySafety && input.ExplicitMode == models.ExplicitModeInternet {
		h.logger.Info("internet mode overridden by entity safety", map[string]interface{}{"keyword": out.Keyword})
	}
	return out
}

func (h *Handler) match(text *registry.Text, set []string, keyword *string) bool {
	kw, ok := text.FirstMatch(set)
	if ok {
		*keyword = kw
	}
	return ok
}
