// internal/workers/grounded-answer/enrich-response/config.go
package enrichresponse

import "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/config"

type Formula string

const (
	FormulaOverlap Formula = "overlap"
	FormulaTiered  Formula = "tiered"
)

const (
	IntentByKeywords = "keywords"
	IntentByModel    = "model"
)

type Config struct {
	Formula           Formula
	IntentStrategy    string
	FollowUpThreshold float64
	MaxLinks          int
}

func LoadConfig(p config.PipelineConfig) *Config {
	cfg := &Config{
		Formula:           Formula(p.ConfidenceFormula),
		IntentStrategy:    p.IntentStrategy,
		FollowUpThreshold: p.FollowUpThreshold,
		MaxLinks:          p.MaxLinks,
	}
	if cfg.Formula == "" {
		cfg.Formula = FormulaOverlap
	}
	if cfg.IntentStrategy == "" {
		cfg.IntentStrategy = IntentByKeywords
	}
	if cfg.FollowUpThreshold == 0 {
		cfg.FollowUpThreshold = 0.3
	}
	if cfg.MaxLinks <= 0 {
		cfg.MaxLinks = 5
	}
	return cfg
}
