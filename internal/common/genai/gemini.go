package genai

import (
	"context"
	"time"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/config"
	apperrors "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/errors"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"

	"google.golang.org/genai"
)

// Gemini calls the Gemini API, or Vertex AI when backend is "vertex".
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	logger    logger.Logger
}

func NewGemini(ctx context.Context, cfg config.ModelConfig, log logger.Logger) (*Gemini, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Backend == "vertex" {
		cc = &genai.ClientConfig{
			Project:  cfg.Project,
			Location: cfg.Location,
			Backend:  genai.BackendVertexAI,
		}
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, apperrors.NewConfigurationError("gemini client: " + err.Error())
	}
	return &Gemini{
		client:    client,
		model:     cfg.Name,
		maxTokens: cfg.MaxTokens,
		timeout:   timeoutOf(cfg),
		logger:    log.WithFields(map[string]interface{}{"provider": "gemini", "model": cfg.Name}),
	}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string, opts Options) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if g.maxTokens > 0 {
		gc.MaxOutputTokens = int32(g.maxTokens)
	}
	if opts.WebSearch {
		gc.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	} else if opts.JSON {
		// Structured output cannot be combined with tool use.
		gc.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, gc)
	if err != nil {
		return nil, classify(ctx, "gemini", err)
	}

	text, err := nonEmpty(resp.Text())
	if err != nil {
		return nil, err
	}

	out := &Response{Text: text}
	if len(resp.Candidates) > 0 && resp.Candidates[0].GroundingMetadata != nil {
		for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			out.Citations = append(out.Citations, models.Link{Title: chunk.Web.Title, URL: chunk.Web.URI})
		}
	}
	g.logger.Debug("gemini call completed", map[string]interface{}{
		"purpose":   opts.Purpose,
		"citations": len(out.Citations),
	})
	return out, nil
}
