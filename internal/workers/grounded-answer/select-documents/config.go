// internal/workers/grounded-answer/select-documents/config.go
package selectdocuments

import "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/config"

const (
	StrategyKeywords = "keywords"
	StrategySemantic = "semantic"
)

type Config struct {
	TopK     int
	Strategy string
}

func LoadConfig(p config.PipelineConfig) *Config {
	cfg := &Config{TopK: p.TopK, Strategy: p.SelectionStrategy}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyKeywords
	}
	return cfg
}
