// internal/workers/grounded-answer/select-documents/handler.go
package selectdocuments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	apperrors "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/errors"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/genai"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/metrics"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/validation"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/knowledge"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"
	"github.com/Sankalp-SISL/MIDC-chatbot/pkg/registry"
)

const (
	Stage = "select-documents"

	// Query words shorter than this are ignored when scoring titles.
	minScoringWordLen = 3
)

var errEmptyRepository = errors.New("repository holds no documents")

type Handler struct {
	config   *Config
	repo     knowledge.Repository
	model    genai.Client
	registry *registry.KeywordRegistry
	logger   logger.Logger
}

// NewHandler builds a selector. model may be nil when the strategy is
// keywords.
func NewHandler(config *Config, repo knowledge.Repository, model genai.Client, reg *registry.KeywordRegistry, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		repo:     repo,
		model:    model,
		registry: reg,
		logger:   log.With(map[string]interface{}{"stage": Stage}),
	}
}

// Execute returns the ordered grounding set: the priority document first,
// then mandatory documents in repository order, then scored or semantic
// picks. It never returns an empty set for a non-empty repository.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	docs, err := h.repo.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, apperrors.NewKnowledgeBaseUnavailableError("repository", errEmptyRepository)
	}

	text := registry.NewText(input.Text)
	sel := newSelection(docs)

	if kw, ok := text.FirstMatch(h.registry.HighPriority); ok {
		sel.add(h.registry.CanonicalContactSection, "high_priority:"+kw, false, true)
	} else if input.EntitySafety {
		sel.add(h.registry.CanonicalContactSection, "entity_safety", false, true)
	}

	if topics := h.registry.MatchedTopics(text); len(topics) > 0 {
		companions := make(map[string]string)
		for _, topic := range topics {
			for _, s := range topic.Sections {
				if _, ok := companions[s]; !ok {
					companions[s] = topic.Name
				}
			}
		}
		for _, d := range docs {
			if name, ok := companions[d.SectionID]; ok {
				sel.add(d.SectionID, "mandatory:"+name, true, false)
			}
		}
	}

	out := &Output{Strategy: h.config.Strategy}
	var picks []string
	if h.config.Strategy == StrategySemantic && h.model != nil {
		picks, err = h.semanticPicks(ctx, input.Text, docs)
		if err != nil {
			h.logger.Warn("semantic selection failed, using default documents", map[string]interface{}{"error": err.Error()})
			picks = nil
			out.FellBack = true
			for _, id := range h.defaults(docs) {
				sel.add(id, "fallback", false, false)
			}
		}
	} else {
		out.Strategy = StrategyKeywords
		picks = h.keywordPicks(text, docs)
	}
	for _, id := range picks {
		sel.add(id, out.Strategy, false, false)
	}

	if sel.empty() {
		out.FellBack = true
		for _, id := range h.defaults(docs) {
			sel.add(id, "fallback", false, false)
		}
	}

	out.Documents = sel.ordered()
	metrics.DocumentsSelected.Observe(float64(len(out.Documents)))
	h.logger.Info("documents selected", map[string]interface{}{
		"sections": out.SectionIDs(),
		"strategy": out.Strategy,
		"fellBack": out.FellBack,
	})
	return out, nil
}

// keywordPicks scores each document by the query words found in its title and
// sectionId, plus one point per section hint, and keeps the top K.
func (h *Handler) keywordPicks(text *registry.Text, docs []models.DocumentRecord) []string {
	var words []string
	for _, w := range text.Words() {
		if utf8.RuneCountInString(w) >= minScoringWordLen {
			words = append(words, w)
		}
	}
	hints := h.registry.HintedSections(text)

	type scored struct {
		id    string
		score int
	}
	var candidates []scored
	for _, d := range docs {
		label := registry.NewText(d.Label())
		score := hints[d.SectionID]
		for _, w := range words {
			for _, form := range wordForms(w) {
				if label.Contains(form) {
					score++
					break
				}
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{id: d.SectionID, score: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	if len(candidates) > h.config.TopK {
		candidates = candidates[:h.config.TopK]
	}
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
	}
	return ids
}

// wordForms returns w plus its stems without a plural "s" or "es", so a
// plural query scores a singular title. Label matching already covers the
// reverse. Stems shorter than minScoringWordLen and non-ASCII words are left
// alone.
func wordForms(w string) []string {
	forms := []string{w}
	if utf8.RuneCountInString(w) != len(w) {
		return forms
	}
	for _, suffix := range []string{"s", "es"} {
		if stem := strings.TrimSuffix(w, suffix); stem != w && len(stem) >= minScoringWordLen {
			forms = append(forms, stem)
		}
	}
	return forms
}

func (h *Handler) semanticPicks(ctx context.Context, question string, docs []models.DocumentRecord) ([]string, error) {
	resp, err := h.model.Generate(ctx, h.buildSelectionPrompt(question, docs), genai.Options{
		Temperature: 0,
		JSON:        true,
		Purpose:     "selection",
	})
	if err != nil {
		metrics.ModelCalls.WithLabelValues("selection", "error").Inc()
		return nil, err
	}

	indices, err := parseIndices(resp.Text)
	if err != nil {
		metrics.ModelCalls.WithLabelValues("selection", "malformed").Inc()
		return nil, err
	}
	metrics.ModelCalls.WithLabelValues("selection", "ok").Inc()

	var ids []string
	seen := make(map[int]bool)
	for _, i := range indices {
		if i < 0 || i >= len(docs) || seen[i] {
			continue
		}
		seen[i] = true
		ids = append(ids, docs[i].SectionID)
		if len(ids) == h.config.TopK {
			break
		}
	}
	if len(ids) == 0 {
		return nil, apperrors.NewMalformedModelOutputError("selection", "no usable indices")
	}
	return ids, nil
}

func (h *Handler) buildSelectionPrompt(question string, docs []models.DocumentRecord) string {
	var parts []string

	parts = append(parts, "You select which MIDC website sections can answer a question.")
	parts = append(parts, fmt.Sprintf("\nQUESTION: %s", question))
	parts = append(parts, "\nSECTIONS:")
	for i, d := range docs {
		parts = append(parts, fmt.Sprintf("%d. %s | %s | %s", i, d.SectionID, d.Title, d.SourceURL))
	}
	parts = append(parts, "\nINSTRUCTIONS:")
	parts = append(parts, fmt.Sprintf("- Return ONLY a JSON array of at most %d section indices, most relevant first, e.g. [0, 3]", h.config.TopK))
	parts = append(parts, "- Return [] when no section is relevant")
	parts = append(parts, "- Do not include any other text")

	return strings.Join(parts, "\n")
}

// parseIndices accepts a (possibly fenced) JSON array of integers.
func parseIndices(raw string) ([]int, error) {
	data := []byte(genai.StripCodeFence(raw))

	result, err := validation.ValidateJSON(validation.SelectionIndices, data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, apperrors.NewMalformedModelOutputError("selection", result.Summary())
	}

	var indices []int
	if err := json.Unmarshal(data, &indices); err != nil {
		return nil, apperrors.NewMalformedModelOutputError("selection", err.Error())
	}
	return indices, nil
}

// defaults are the configured fallback sections present in the repository,
// or the first document when none of them is.
func (h *Handler) defaults(docs []models.DocumentRecord) []string {
	present := make(map[string]bool, len(docs))
	for _, d := range docs {
		present[d.SectionID] = true
	}
	var ids []string
	for _, s := range h.registry.FallbackSections {
		if present[s] {
			ids = append(ids, s)
		}
	}
	if len(ids) == 0 {
		ids = append(ids, docs[0].SectionID)
	}
	return ids
}

// selection accumulates picks in the three ordering buckets.
type selection struct {
	byID      map[string]models.DocumentRecord
	index     map[string]*SelectedDocument
	priority  []*SelectedDocument
	mandatory []*SelectedDocument
	rest      []*SelectedDocument
}

func newSelection(docs []models.DocumentRecord) *selection {
	s := &selection{
		byID:  make(map[string]models.DocumentRecord, len(docs)),
		index: make(map[string]*SelectedDocument),
	}
	for _, d := range docs {
		if _, dup := s.byID[d.SectionID]; !dup {
			s.byID[d.SectionID] = d
		}
	}
	return s
}

// add records sectionID unless it is absent from the repository. A document
// picked twice keeps its first bucket and gains the later flags.
func (s *selection) add(sectionID, reason string, mandatory, priority bool) {
	if existing, ok := s.index[sectionID]; ok {
		existing.Mandatory = existing.Mandatory || mandatory
		existing.Priority = existing.Priority || priority
		return
	}
	rec, ok := s.byID[sectionID]
	if !ok {
		return
	}

	d := &SelectedDocument{Record: rec, Mandatory: mandatory, Priority: priority, Reason: reason}
	s.index[sectionID] = d
	switch {
	case priority:
		s.priority = append(s.priority, d)
	case mandatory:
		s.mandatory = append(s.mandatory, d)
	default:
		s.rest = append(s.rest, d)
	}
}

func (s *selection) empty() bool {
	return len(s.index) == 0
}

func (s *selection) ordered() []SelectedDocument {
	out := make([]SelectedDocument, 0, len(s.index))
	for _, bucket := range [][]*SelectedDocument{s.priority, s.mandatory, s.rest} {
		for _, d := range bucket {
			out = append(out, *d)
		}
	}
	return out
}
