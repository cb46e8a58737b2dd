package genai

import (
	"context"
	"strings"
	"time"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/config"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicMaxTokens = 1024

// Anthropic calls the Claude Messages API. It has no web search tool, so
// Options.WebSearch is ignored.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	logger    logger.Logger
}

func NewAnthropic(cfg config.ModelConfig, log logger.Logger) (*Anthropic, error) {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}

	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	return &Anthropic{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Name,
		maxTokens: maxTokens,
		timeout:   timeoutOf(cfg),
		logger:    log.WithFields(map[string]interface{}{"provider": "anthropic", "model": cfg.Name}),
	}, nil
}

func (a *Anthropic) Generate(ctx context.Context, prompt string, opts Options) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if opts.WebSearch {
		a.logger.Debug("web search requested but not supported, answering without it", nil)
	}
	if opts.JSON {
		prompt += "\nRespond with JSON only."
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(opts.Temperature),
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classify(ctx, "anthropic", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	out, err := nonEmpty(text.String())
	if err != nil {
		return nil, err
	}
	return &Response{Text: out}, nil
}
