// internal/workers/grounded-answer/generate-answer/handler.go
package generateanswer

import (
	"context"
	"strings"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/genai"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/markup"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/metrics"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"
	"github.com/Sankalp-SISL/MIDC-chatbot/pkg/registry"
)

const (
	Stage = "generate-answer"

	rolePreamble = "You are an official information assistant for MIDC (Maharashtra Industrial Development Corporation)."
)

var emphasisMarkers = strings.NewReplacer("**", "", "__", "")

type Handler struct {
	config   *Config
	model    genai.Client
	registry *registry.KeywordRegistry
	logger   logger.Logger
}

func NewHandler(config *Config, model genai.Client, reg *registry.KeywordRegistry, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		model:    model,
		registry: reg,
		logger:   log.With(map[string]interface{}{"stage": Stage}),
	}
}

// Execute makes exactly one model call. It never returns an error: a failed
// or empty generation yields the language-matched not-available sentinel.
func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	prompt := h.buildPrompt(input)

	resp, err := h.model.Generate(ctx, prompt, genai.Options{
		Temperature: h.config.Temperature,
		WebSearch:   input.Mode == models.ModeInternet,
		Purpose:     "answer",
	})

	out := &Output{}
	if err != nil {
		metrics.ModelCalls.WithLabelValues("answer", "error").Inc()
		h.logger.Error("answer generation failed", map[string]interface{}{
			"mode":  string(input.Mode),
			"error": err.Error(),
		})
	} else {
		metrics.ModelCalls.WithLabelValues("answer", "ok").Inc()
		out.Text = h.clean(resp.Text)
		out.Citations = resp.Citations
	}

	if out.Text == "" {
		out.Text = h.registry.Messages.NotAvailable.For(input.Language)
		out.Fallback = true
	}

	if input.Mode == models.ModeInternet {
		disclaimer := h.registry.Messages.Disclaimer.For(input.Language)
		if !strings.Contains(out.Text, disclaimer) {
			out.Text = disclaimer + "\n\n" + out.Text
		}
	}

	if h.config.RenderHTML {
		h.render(out)
	}
	return out
}

func (h *Handler) clean(raw string) string {
	text := genai.StripCodeFence(raw)
	if h.config.RenderHTML {
		text = emphasisMarkers.Replace(text)
	}
	return strings.TrimSpace(text)
}

func (h *Handler) render(out *Output) {
	html, err := markup.Render(out.Text)
	if err != nil {
		h.logger.Warn("markdown rendering failed", map[string]interface{}{"error": err.Error()})
		return
	}
	out.HTML = html

	links, err := markup.ExtractLinks(html)
	if err != nil {
		h.logger.Warn("link extraction failed", map[string]interface{}{"error": err.Error()})
		return
	}
	out.AnswerLinks = links
}

func (h *Handler) buildPrompt(input *Input) string {
	var parts []string

	parts = append(parts, rolePreamble)

	if input.Mode == models.ModeInternet {
		parts = append(parts, "Answer using verifiable public web results only.")
		parts = append(parts, "Begin the answer with this disclaimer, exactly as written: "+h.registry.Messages.Disclaimer.For(input.Language))
	} else {
		parts = append(parts, "Answer ONLY using the content provided below. If the answer is not present, respond exactly with: "+
			h.registry.Messages.NotAvailable.For(input.Language))
		parts = append(parts, "\nCONTENT:")
		parts = append(parts, input.Context)
	}

	parts = append(parts, "\nQUESTION:")
	parts = append(parts, input.Question)

	parts = append(parts, "\nINSTRUCTIONS:")
	parts = append(parts, "- "+h.registry.Messages.LanguageInstruction.For(input.Language))
	parts = append(parts, "- Keep the answer concise and factual")
	parts = append(parts, "- Do not make assumptions")
	parts = append(parts, "- Never fabricate names, phone numbers, email addresses or postal addresses")
	if h.config.RenderHTML {
		parts = append(parts, "- Use Markdown headings, bullet lists and links. Do not use bold or italic emphasis markers.")
	}

	return strings.Join(parts, "\n")
}
