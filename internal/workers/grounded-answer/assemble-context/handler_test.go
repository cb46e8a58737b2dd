package assemblecontext

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"
	selectdocuments "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/select-documents"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *Config {
	return &Config{ChunkCap: 3, PriorityChunkCap: 6, MaxContextChunks: 24, MaxLinks: 5}
}

func chunksOf(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s-%d", prefix, i+1)
	}
	return out
}

func selected(rec models.DocumentRecord, mandatory, priority bool) selectdocuments.SelectedDocument {
	return selectdocuments.SelectedDocument{Record: rec, Mandatory: mandatory, Priority: priority}
}

func TestHandler_CapsAndOrdering(t *testing.T) {
	h := NewHandler(createTestConfig(), logger.NewTestLogger(t))

	out := h.Execute(&Input{Documents: []selectdocuments.SelectedDocument{
		selected(models.DocumentRecord{SectionID: "about-midc", Chunks: chunksOf("about", 8)}, false, false),
		selected(models.DocumentRecord{SectionID: "rts-gazette", Chunks: chunksOf("rts", 8)}, true, false),
		selected(models.DocumentRecord{SectionID: "contact", SourceURL: "https://www.midcindia.org/contact", Title: "Contact", Chunks: chunksOf("contact", 8)}, false, true),
	}})

	parts := strings.Split(out.Context, "\n\n")
	require.Len(t, parts, 6+3+6)
	assert.Equal(t, chunksOf("contact", 6), parts[:6])
	assert.Equal(t, chunksOf("about", 3), parts[6:9])
	assert.Equal(t, chunksOf("rts", 6), parts[9:])
	assert.Equal(t, 15, out.ChunkCount)
	assert.Equal(t, []string{"contact", "about-midc", "rts-gazette"}, out.Contributing)
	assert.Equal(t, []string{"https://www.midcindia.org/contact", "about-midc", "rts-gazette"}, out.Sources)
	assert.Equal(t, []models.Link{{Title: "Contact", URL: "https://www.midcindia.org/contact"}}, out.RecommendedPages)
}

func TestHandler_SkipsBlankChunks(t *testing.T) {
	h := NewHandler(createTestConfig(), logger.NewTestLogger(t))

	out := h.Execute(&Input{Documents: []selectdocuments.SelectedDocument{
		selected(models.DocumentRecord{SectionID: "faq", Chunks: []string{"  ", "q1", "", "q2", "q3", "q4"}}, false, false),
		selected(models.DocumentRecord{SectionID: "empty", SourceURL: "https://x/empty", Chunks: []string{" ", "\n"}}, false, false),
	}})

	assert.Equal(t, "q1\n\nq2\n\nq3", out.Context)
	assert.Equal(t, []string{"faq"}, out.Contributing)
	assert.Equal(t, []string{"faq"}, out.Sources)
	assert.Empty(t, out.RecommendedPages)
}

func TestHandler_TotalBound(t *testing.T) {
	cfg := createTestConfig()
	cfg.MaxContextChunks = 4
	h := NewHandler(cfg, logger.NewTestLogger(t))

	out := h.Execute(&Input{Documents: []selectdocuments.SelectedDocument{
		selected(models.DocumentRecord{SectionID: "a", SourceURL: "https://x/a", Chunks: chunksOf("a", 3)}, false, false),
		selected(models.DocumentRecord{SectionID: "b", SourceURL: "https://x/b", Chunks: chunksOf("b", 3)}, false, false),
		selected(models.DocumentRecord{SectionID: "c", SourceURL: "https://x/c", Chunks: chunksOf("c", 3)}, false, false),
	}})

	assert.Equal(t, 4, out.ChunkCount)
	assert.Equal(t, "a-1\n\na-2\n\na-3\n\nb-1", out.Context)
	assert.Equal(t, []string{"https://x/a", "https://x/b"}, out.Sources)
	assert.Len(t, out.RecommendedPages, 2)
}

func TestHandler_SideListsDeduplicatedAndCapped(t *testing.T) {
	h := NewHandler(createTestConfig(), logger.NewTestLogger(t))

	var docs []selectdocuments.SelectedDocument
	for i := 0; i < 7; i++ {
		docs = append(docs, selected(models.DocumentRecord{
			SectionID: fmt.Sprintf("s%d", i),
			Title:     fmt.Sprintf("Section %d", i),
			SourceURL: fmt.Sprintf("https://www.midcindia.org/s%d", i%6),
			Chunks:    []string{"text"},
			RelatedLinks: []models.Link{
				{Title: "Portal", URL: "https://maitri.mahaonline.gov.in"},
				{Title: "Own", URL: fmt.Sprintf("https://www.midcindia.org/related/%d", i)},
			},
			Forms: []models.FormDescriptor{
				{Name: "Plot application", URL: "https://www.midcindia.org/forms/plot.pdf"},
				{Name: fmt.Sprintf("Form %d", i)},
			},
		}, false, false))
	}

	out := h.Execute(&Input{Documents: docs})

	assert.Len(t, out.Sources, 6)
	assert.Len(t, out.RecommendedPages, 5)
	assert.Len(t, out.Forms, 5)
	assert.Len(t, out.ExternalLinks, 5)
	assert.Equal(t, "https://maitri.mahaonline.gov.in", out.ExternalLinks[0].URL)

	seen := make(map[string]bool)
	for _, l := range out.ExternalLinks {
		assert.False(t, seen[l.URL], "duplicate %s", l.URL)
		seen[l.URL] = true
	}
}

func TestHandler_EmptyInput(t *testing.T) {
	h := NewHandler(createTestConfig(), logger.NewTestLogger(t))
	out := h.Execute(&Input{})
	assert.Equal(t, "", out.Context)
	assert.NotNil(t, out.Sources)
	assert.NotNil(t, out.Forms)
}
