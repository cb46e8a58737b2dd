// Package genai wraps the generative model providers behind one small
// interface the answer pipeline calls.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/config"
	apperrors "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/errors"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"

	"golang.org/x/time/rate"
)

// ErrEmptyResponse is returned when a provider answers with no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Options tune a single Generate call.
type Options struct {
	Temperature float64
	// WebSearch attaches the provider's web search tool when it has one.
	WebSearch bool
	// JSON asks the provider for a JSON-only response.
	JSON bool
	// Purpose labels the call in logs and metrics ("answer", "selection", "intent").
	Purpose string
}

type Response struct {
	Text      string
	Citations []models.Link
}

// Client is a generative model collaborator.
type Client interface {
	Generate(ctx context.Context, prompt string, opts Options) (*Response, error)
}

// New builds the provider named by cfg.Provider, paced by a rate limiter when
// cfg.RequestsPerSecond is positive.
func New(ctx context.Context, cfg config.ModelConfig, log logger.Logger) (Client, error) {
	var (
		client Client
		err    error
	)
	switch cfg.Provider {
	case "", "gemini":
		client, err = NewGemini(ctx, cfg, log)
	case "anthropic":
		client, err = NewAnthropic(cfg, log)
	case "gateway":
		client, err = NewGateway(cfg, log)
	default:
		err = apperrors.NewConfigurationError(fmt.Sprintf("unknown model provider %q", cfg.Provider))
	}
	if err != nil {
		return nil, err
	}

	if cfg.RequestsPerSecond > 0 {
		client = NewRateLimited(client, cfg.RequestsPerSecond)
	}
	return client, nil
}

// RateLimited paces outbound calls of the wrapped client.
type RateLimited struct {
	next    Client
	limiter *rate.Limiter
}

func NewRateLimited(next Client, rps float64) *RateLimited {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (r *RateLimited) Generate(ctx context.Context, prompt string, opts Options) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewTimeoutError("model", err)
	}
	return r.next.Generate(ctx, prompt, opts)
}

// classify maps a provider failure onto the shared error codes.
func classify(ctx context.Context, provider string, err error) error {
	if errors.Is(err, ErrEmptyResponse) {
		return err
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(provider, err)
	}
	return apperrors.NewModelCallFailedError(provider, err)
}

func timeoutOf(cfg config.ModelConfig) time.Duration {
	if cfg.Timeout <= 0 {
		return 30 * time.Second
	}
	return config.GetDuration(cfg.Timeout)
}

func nonEmpty(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
