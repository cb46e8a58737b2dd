package genai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/errors"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingClient struct {
	calls int
}

func (c *countingClient) Generate(ctx context.Context, prompt string, opts Options) (*Response, error) {
	c.calls++
	return &Response{Text: prompt}, nil
}

func TestNew_SelectsProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":"hello"}`))
	}))
	defer srv.Close()

	cfg := createTestConfig(srv.URL)
	client, err := New(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.IsType(t, &Gateway{}, client)

	cfg.RequestsPerSecond = 5
	client, err = New(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.IsType(t, &RateLimited{}, client)

	cfg.Provider = "llama"
	_, err = New(context.Background(), cfg, logger.NewTestLogger(t))
	assert.Error(t, err)
}

func TestRateLimited_Paces(t *testing.T) {
	inner := &countingClient{}
	limited := NewRateLimited(inner, 0.5)

	_, err := limited.Generate(context.Background(), "first", Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = limited.Generate(ctx, "second", Options{})
	assert.True(t, errors.Is(err, apperrors.ErrTimeout))
	assert.Equal(t, 1, inner.calls)
}
