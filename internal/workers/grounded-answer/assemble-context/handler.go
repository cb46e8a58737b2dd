// internal/workers/grounded-answer/assemble-context/handler.go
package assemblecontext

import (
	"strings"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"
	selectdocuments "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/select-documents"
)

const (
	Stage = "assemble-context"

	chunkSeparator = "\n\n"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.With(map[string]interface{}{"stage": Stage}),
	}
}

// Execute turns the selected documents into one bounded context block.
// Each document's chunks stay contiguous; a document that contributes no
// chunk is left out of every side list.
func (h *Handler) Execute(input *Input) *Output {
	out := &Output{
		Contributing:     []string{},
		Sources:          []string{},
		RecommendedPages: []models.Link{},
		Forms:            []models.FormDescriptor{},
		ExternalLinks:    []models.Link{},
	}

	var (
		chunks    []string
		seenSrc   = make(map[string]bool)
		seenPage  = make(map[string]bool)
		seenForm  = make(map[string]bool)
		seenLink  = make(map[string]bool)
		truncated bool
	)

	for _, doc := range prioritized(input.Documents) {
		remaining := h.config.MaxContextChunks - len(chunks)
		if remaining <= 0 {
			truncated = true
			break
		}

		limit := h.config.ChunkCap
		if doc.Mandatory || doc.Priority {
			limit = h.config.PriorityChunkCap
		}
		if limit > remaining {
			limit = remaining
		}

		taken := 0
		for _, c := range doc.Record.Chunks {
			if taken == limit {
				break
			}
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			chunks = append(chunks, c)
			taken++
		}
		if taken == 0 {
			continue
		}

		rec := doc.Record
		out.Contributing = append(out.Contributing, rec.SectionID)

		source := rec.SourceURL
		if source == "" {
			source = rec.SectionID
		}
		if !seenSrc[source] {
			seenSrc[source] = true
			out.Sources = append(out.Sources, source)
		}

		if rec.SourceURL != "" && !seenPage[rec.SourceURL] && len(out.RecommendedPages) < h.config.MaxLinks {
			seenPage[rec.SourceURL] = true
			out.RecommendedPages = append(out.RecommendedPages, models.Link{Title: rec.Title, URL: rec.SourceURL})
		}
		for _, f := range rec.Forms {
			if key := f.Key(); !seenForm[key] && len(out.Forms) < h.config.MaxLinks {
				seenForm[key] = true
				out.Forms = append(out.Forms, f)
			}
		}
		for _, l := range rec.RelatedLinks {
			if l.URL != "" && !seenLink[l.URL] && len(out.ExternalLinks) < h.config.MaxLinks {
				seenLink[l.URL] = true
				out.ExternalLinks = append(out.ExternalLinks, l)
			}
		}
	}

	out.Context = strings.Join(chunks, chunkSeparator)
	out.ChunkCount = len(chunks)
	if truncated {
		h.logger.Info("context bound reached", map[string]interface{}{
			"maxContextChunks": h.config.MaxContextChunks,
			"contributing":     len(out.Contributing),
		})
	}
	return out
}

// prioritized moves priority documents to the front, keeping relative order.
func prioritized(docs []selectdocuments.SelectedDocument) []selectdocuments.SelectedDocument {
	out := make([]selectdocuments.SelectedDocument, 0, len(docs))
	for _, d := range docs {
		if d.Priority {
			out = append(out, d)
		}
	}
	for _, d := range docs {
		if !d.Priority {
			out = append(out, d)
		}
	}
	return out
}
