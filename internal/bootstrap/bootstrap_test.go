package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/config"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/knowledge"
	composeanswer "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/compose-answer"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSection(t *testing.T, root, sectionID, body string) {
	t.Helper()
	dir := filepath.Join(root, sectionID)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "content.json"), []byte(body), 0o644))
}

func createTestConfig(root string) *config.Config {
	return &config.Config{
		Knowledge: config.KnowledgeConfig{Source: "file", Root: root},
		Model:     config.ModelConfig{Provider: "gateway", Name: "test", Timeout: 2000},
		Pipeline: config.PipelineConfig{
			TopK: 5, ChunkCap: 3, PriorityChunkCap: 6, MaxContextChunks: 24, MaxLinks: 5,
			SelectionStrategy: "keywords", IntentStrategy: "keywords", ConfidenceFormula: "overlap",
			FollowUpThreshold: 0.3,
		},
	}
}

func TestRetryWithBackoff(t *testing.T) {
	log := logger.NewTestLogger(t)

	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, 5, time.Millisecond, log, "test dependency")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = RetryWithBackoff(context.Background(), func() error {
		calls++
		return errors.New("connection refused")
	}, 3, time.Millisecond, log, "test dependency")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test dependency failed after 3 attempts")
	assert.Equal(t, 3, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = RetryWithBackoff(ctx, func() error { return errors.New("down") }, 3, time.Hour, log, "test dependency")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewKnowledge_FileSource(t *testing.T) {
	root := t.TempDir()
	writeSection(t, root, "about-midc", `{"title":"About MIDC","chunks":["MIDC was established in 1962."]}`)

	k, err := NewKnowledge(context.Background(), createTestConfig(root), logger.NewTestLogger(t))
	require.NoError(t, err)
	defer k.Close()

	assert.True(t, k.Snapshot.Ready())
	assert.IsType(t, &knowledge.FileRepository{}, k.Source)
}

func TestNewKnowledge_MissingRootIsNotReady(t *testing.T) {
	k, err := NewKnowledge(context.Background(), createTestConfig(filepath.Join(t.TempDir(), "missing")), logger.NewTestLogger(t))
	require.NoError(t, err)
	defer k.Close()
	assert.False(t, k.Snapshot.Ready())
}

func TestNewKnowledge_WithCache(t *testing.T) {
	mr := miniredis.RunT(t)
	root := t.TempDir()
	writeSection(t, root, "faq", `{"title":"FAQ","chunks":["Frequently asked questions"]}`)

	cfg := createTestConfig(root)
	cfg.Knowledge.Cache = config.CacheConfig{Enabled: true, TTLSeconds: 60}
	cfg.Database.Redis.Address = mr.Addr()

	k, err := NewKnowledge(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer k.Close()

	assert.IsType(t, &knowledge.CachedRepository{}, k.Source)
	assert.True(t, k.Snapshot.Ready())
	assert.True(t, mr.Exists("midc:kb:list"))
}

func TestNewKnowledge_UnknownSource(t *testing.T) {
	cfg := createTestConfig(t.TempDir())
	cfg.Knowledge.Source = "s3"
	_, err := NewKnowledge(context.Background(), cfg, logger.NewTestLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid configuration")
}

func TestNewWriter_FileIsReadOnly(t *testing.T) {
	_, _, err := NewWriter(context.Background(), createTestConfig(t.TempDir()), "file", logger.NewTestLogger(t))
	require.Error(t, err)
}

func TestNewGapNotifier_Disabled(t *testing.T) {
	n, err := NewGapNotifier(context.Background(), createTestConfig(""), logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestNewPipeline_EndToEnd(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/generate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"text": "MIDC was established in 1962."})
	}))
	defer gateway.Close()

	root := t.TempDir()
	writeSection(t, root, "about-midc", `{"title":"About MIDC","source_url":"https://www.midcindia.org/about","chunks":["MIDC was established in 1962."]}`)

	cfg := createTestConfig(root)
	cfg.Model.BaseURL = gateway.URL
	log := logger.NewTestLogger(t)

	k, err := NewKnowledge(context.Background(), cfg, log)
	require.NoError(t, err)
	defer k.Close()

	pipeline, err := NewPipeline(context.Background(), cfg, k.Snapshot, nil, nil, log)
	require.NoError(t, err)

	out, err := pipeline.Execute(context.Background(), &composeanswer.Input{Question: "When was MIDC established?"})
	require.NoError(t, err)
	assert.Equal(t, "MIDC was established in 1962.", out.Text)
	assert.Equal(t, []string{"https://www.midcindia.org/about"}, out.Sources)
	assert.Equal(t, composeanswer.OutcomeAnswered, out.Outcome)
}
