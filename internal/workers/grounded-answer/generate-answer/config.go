// internal/workers/grounded-answer/generate-answer/config.go
package generateanswer

import "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/config"

type Config struct {
	Temperature float64
	RenderHTML  bool
}

func LoadConfig(m config.ModelConfig, p config.PipelineConfig) *Config {
	return &Config{
		Temperature: m.Temperature,
		RenderHTML:  p.RenderHTML,
	}
}
