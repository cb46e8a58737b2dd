// internal/workers/grounded-answer/enrich-response/handler.go
package enrichresponse

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/genai"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/metrics"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/validation"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"
	"github.com/Sankalp-SISL/MIDC-chatbot/pkg/registry"
)

const Stage = "enrich-response"

type Handler struct {
	config   *Config
	model    genai.Client
	registry *registry.KeywordRegistry
	logger   logger.Logger
	now      func() time.Time
}

// NewHandler builds the enricher. model may be nil when the intent strategy
// is keywords.
func NewHandler(config *Config, model genai.Client, reg *registry.KeywordRegistry, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		model:    model,
		registry: reg,
		logger:   log.With(map[string]interface{}{"stage": Stage}),
		now:      time.Now,
	}
}

// WithClock replaces the timestamp source.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

func (h *Handler) Execute(ctx context.Context, input *Input) *models.ComposedAnswer {
	answer := &models.ComposedAnswer{
		Sources:          []string{},
		RecommendedPages: []models.Link{},
		FormsDetected:    []models.FormDescriptor{},
		ExternalLinks:    []models.Link{},
		Mode:             input.Mode,
		Language:         input.Language,
	}

	var grounding string
	var related []models.Link
	if input.Answer != nil {
		answer.Text = input.Answer.Text
		answer.HTML = input.Answer.HTML
	}
	if input.Assembled != nil {
		grounding = input.Assembled.Context
		related = input.Assembled.ExternalLinks
		answer.Sources = appendUnique(answer.Sources, input.Assembled.Sources...)
		answer.RecommendedPages = append(answer.RecommendedPages, input.Assembled.RecommendedPages...)
		answer.FormsDetected = append(answer.FormsDetected, input.Assembled.Forms...)
	}

	var citations, anchors []models.Link
	if input.Answer != nil {
		citations = input.Answer.Citations
		anchors = input.Answer.AnswerLinks
	}
	if input.Mode == models.ModeInternet {
		for _, c := range citations {
			answer.Sources = appendUnique(answer.Sources, c.URL)
		}
	}
	answer.ExternalLinks = mergeLinks(h.config.MaxLinks, related, citations, anchors)

	answer.Confidence = Confidence(h.config.Formula, answer.Text, grounding, h.registry.Messages)
	answer.ConversationState = h.conversationState(ctx, input.Question, input.Mode, answer)

	h.logger.Debug("response enriched", map[string]interface{}{
		"confidence": answer.Confidence,
		"intent":     answer.ConversationState.Intent,
		"sources":    len(answer.Sources),
		"links":      len(answer.ExternalLinks),
	})
	return answer
}

// SafeAnswer builds the short-circuit answer for a failed request: the
// unavailability text when unavailable is set, otherwise the not-available
// sentinel. It makes no model calls.
func (h *Handler) SafeAnswer(question string, lang models.Language, mode models.Mode, unavailable bool) *models.ComposedAnswer {
	text := h.registry.Messages.NotAvailable.For(lang)
	if unavailable {
		text = h.registry.Messages.Unavailable.For(lang)
	}
	answer := &models.ComposedAnswer{
		Text:             text,
		Sources:          []string{},
		RecommendedPages: []models.Link{},
		FormsDetected:    []models.FormDescriptor{},
		ExternalLinks:    []models.Link{},
		Mode:             mode,
		Language:         lang,
	}
	answer.Confidence = Confidence(h.config.Formula, text, "", h.registry.Messages)
	if mode == models.ModeInternet {
		answer.Text = h.registry.Messages.Disclaimer.For(lang) + "\n\n" + text
	}

	intent := h.registry.IntentFor(registry.NewText(question))
	message := h.registry.FollowUpFor(intent)
	answer.ConversationState = models.ConversationState{
		Intent:           intent,
		ShouldFollowUp:   message != "",
		FollowUpMessage:  message,
		TimestampSeconds: h.now().Unix(),
	}
	return answer
}

// NotAvailable reports whether text carries the not-available sentinel in
// either language.
func (h *Handler) NotAvailable(text string) bool {
	for _, s := range h.registry.Messages.NotAvailable.All() {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

func (h *Handler) conversationState(ctx context.Context, question string, mode models.Mode, answer *models.ComposedAnswer) models.ConversationState {
	intent := h.classify(ctx, question)
	message := h.registry.FollowUpFor(intent)

	should := message != "" ||
		len(answer.FormsDetected) > 0 ||
		len(answer.RecommendedPages) > 0 ||
		(mode == models.ModeInternal && answer.Confidence > h.config.FollowUpThreshold)

	return models.ConversationState{
		Intent:           intent,
		ShouldFollowUp:   should,
		FollowUpMessage:  message,
		TimestampSeconds: h.now().Unix(),
	}
}

func (h *Handler) classify(ctx context.Context, question string) string {
	if h.config.IntentStrategy != IntentByModel || h.model == nil {
		return h.registry.IntentFor(registry.NewText(question))
	}

	resp, err := h.model.Generate(ctx, intentPrompt(question), genai.Options{
		Temperature: 0,
		JSON:        true,
		Purpose:     "intent",
	})
	if err != nil {
		metrics.ModelCalls.WithLabelValues("intent", "error").Inc()
		h.logger.Warn("intent classification failed, using general", map[string]interface{}{"error": err.Error()})
		return models.IntentGeneral
	}
	metrics.ModelCalls.WithLabelValues("intent", "ok").Inc()

	intent, err := parseIntent(resp.Text)
	if err != nil {
		h.logger.Warn("discarding malformed intent classification", map[string]interface{}{
			"error": err.Error(),
			"raw":   resp.Text,
		})
		return models.IntentGeneral
	}
	return intent
}

func intentPrompt(question string) string {
	return fmt.Sprintf(`Classify the user's question into exactly one intent from this list: %s.
Respond with JSON only, in the form {"intent": "<intent>"}.

QUESTION:
%s`, strings.Join(models.Intents, ", "), question)
}

func parseIntent(raw string) (string, error) {
	body := []byte(strings.TrimSpace(genai.StripCodeFence(raw)))

	res, err := validation.ValidateJSON(validation.IntentClassification, body)
	if err != nil {
		return "", err
	}
	if !res.Valid {
		return "", fmt.Errorf("invalid intent: %s", res.Summary())
	}

	var parsed struct {
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	return parsed.Intent, nil
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if v == "" {
			continue
		}
		dup := false
		for _, existing := range dst {
			if existing == v {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}

// mergeLinks concatenates the groups in order, dropping repeated URLs, up to
// limit entries.
func mergeLinks(limit int, groups ...[]models.Link) []models.Link {
	out := []models.Link{}
	seen := make(map[string]struct{})
	for _, group := range groups {
		for _, l := range group {
			if len(out) >= limit {
				return out
			}
			if l.URL == "" {
				continue
			}
			if _, ok := seen[l.URL]; ok {
				continue
			}
			seen[l.URL] = struct{}{}
			out = append(out, l)
		}
	}
	return out
}
