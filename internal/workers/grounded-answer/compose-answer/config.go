// internal/workers/grounded-answer/compose-answer/config.go
package composeanswer

import (
	"time"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/config"
)

type Config struct {
	// JobTimeout bounds one workflow job run.
	JobTimeout time.Duration
	// AlertTimeout bounds one knowledge-gap publish.
	AlertTimeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		JobTimeout:   time.Duration(cfg.Camunda.Timeout) * time.Millisecond,
		AlertTimeout: 3 * time.Second,
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 60 * time.Second
	}
	return c
}
