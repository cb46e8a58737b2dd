// internal/workers/grounded-answer/assemble-context/config.go
package assemblecontext

import "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/config"

type Config struct {
	ChunkCap         int
	PriorityChunkCap int
	MaxContextChunks int
	MaxLinks         int
}

func LoadConfig(p config.PipelineConfig) *Config {
	cfg := &Config{
		ChunkCap:         p.ChunkCap,
		PriorityChunkCap: p.PriorityChunkCap,
		MaxContextChunks: p.MaxContextChunks,
		MaxLinks:         p.MaxLinks,
	}
	if cfg.ChunkCap <= 0 {
		cfg.ChunkCap = 3
	}
	if cfg.PriorityChunkCap <= 0 {
		cfg.PriorityChunkCap = 6
	}
	if cfg.MaxContextChunks <= 0 {
		cfg.MaxContextChunks = 24
	}
	if cfg.MaxLinks <= 0 {
		cfg.MaxLinks = 5
	}
	return cfg
}
