package genai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/config"
	apperrors "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/errors"
	commonhttp "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/http"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"
)

const generatePath = "/api/ai/generate"

// Gateway calls an internal AI gateway that fronts the model providers.
type Gateway struct {
	client     *commonhttp.Client
	baseURL    string
	maxTokens  int
	maxRetries int
	timeout    time.Duration
	logger     logger.Logger
}

type gatewayRequest struct {
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	WebSearch   bool    `json:"web_search,omitempty"`
	JSON        bool    `json:"json,omitempty"`
}

type gatewayResponse struct {
	Text    string        `json:"text"`
	Sources []models.Link `json:"sources"`
}

func NewGateway(cfg config.ModelConfig, log logger.Logger) (*Gateway, error) {
	if cfg.BaseURL == "" {
		return nil, apperrors.NewConfigurationError("model.base_url is required for the gateway provider")
	}
	timeout := timeoutOf(cfg)
	return &Gateway{
		client:     commonhttp.NewClient(timeout),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		maxTokens:  cfg.MaxTokens,
		maxRetries: cfg.MaxRetries,
		timeout:    timeout,
		logger:     log.WithFields(map[string]interface{}{"provider": "gateway"}),
	}, nil
}

func (g *Gateway) Generate(ctx context.Context, prompt string, opts Options) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body := gatewayRequest{
		Prompt:      prompt,
		Temperature: opts.Temperature,
		MaxTokens:   g.maxTokens,
		WebSearch:   opts.WebSearch,
		JSON:        opts.JSON,
	}

	var (
		parsed  gatewayResponse
		lastErr error
	)
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, apperrors.NewTimeoutError("gateway", ctx.Err())
			}
		}

		parsed = gatewayResponse{}
		lastErr = g.client.PostJSON(ctx, g.baseURL+generatePath, body, &parsed)
		if lastErr == nil {
			break
		}

		var statusErr *commonhttp.StatusError
		if errors.As(lastErr, &statusErr) && !statusErr.Retryable() {
			break
		}
		if ctx.Err() != nil {
			return nil, apperrors.NewTimeoutError("gateway", lastErr)
		}
		g.logger.Warn("gateway call failed", map[string]interface{}{
			"attempt": attempt + 1,
			"purpose": opts.Purpose,
			"error":   lastErr.Error(),
		})
	}
	if lastErr != nil {
		return nil, classify(ctx, "gateway", lastErr)
	}

	text, err := nonEmpty(parsed.Text)
	if err != nil {
		return nil, err
	}
	return &Response{Text: text, Citations: parsed.Sources}, nil
}
