package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
model:
  api_key: test-key
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "midc-chatbot", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "file", cfg.Knowledge.Source)
	assert.Equal(t, "gemini", cfg.Model.Provider)
	assert.Equal(t, 5, cfg.Pipeline.TopK)
	assert.Equal(t, 3, cfg.Pipeline.ChunkCap)
	assert.Equal(t, 6, cfg.Pipeline.PriorityChunkCap)
	assert.Equal(t, 5, cfg.Pipeline.MaxLinks)
	assert.Equal(t, "overlap", cfg.Pipeline.ConfidenceFormula)
	assert.InDelta(t, 0.3, cfg.Pipeline.FollowUpThreshold, 1e-9)
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("PIPELINE_TOP_K", "7")
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("PORT", "9090")
	t.Setenv("MIDC_INDEX", "custom-index")

	path := writeConfig(t, `
knowledge:
  index: ${MIDC_INDEX}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Pipeline.TopK)
	assert.Equal(t, "from-env", cfg.Model.APIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "custom-index", cfg.Knowledge.Index)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "unknown knowledge source",
			body: `
model: {api_key: k}
knowledge: {source: s3}
`,
			wantErr: "Source",
		},
		{
			name: "vertex without project",
			body: `
model: {backend: vertex}
`,
			wantErr: "model.project",
		},
		{
			name: "gateway without base url",
			body: `
model: {provider: gateway}
`,
			wantErr: "model.base_url",
		},
		{
			name: "priority cap below chunk cap",
			body: `
model: {api_key: k}
pipeline: {chunk_cap: 4, priority_chunk_cap: 2}
`,
			wantErr: "priority_chunk_cap",
		},
		{
			name: "cache without redis",
			body: `
model: {api_key: k}
knowledge: {cache: {enabled: true}}
`,
			wantErr: "database.redis.address",
		},
		{
			name: "alerts without topic",
			body: `
model: {api_key: k}
alerts: {enabled: true}
`,
			wantErr: "alerts.topic_arn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GEMINI_API_KEY", "")
			t.Setenv("GOOGLE_API_KEY", "")
			t.Setenv("ANTHROPIC_API_KEY", "")

			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}
