package selectdocuments

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/errors"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/genai"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"
	"github.com/Sankalp-SISL/MIDC-chatbot/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepository struct {
	docs []models.DocumentRecord
	err  error
}

func (r *stubRepository) ListDocuments(ctx context.Context) ([]models.DocumentRecord, error) {
	return r.docs, r.err
}

func (r *stubRepository) GetDocument(ctx context.Context, sectionID string) (*models.DocumentRecord, error) {
	for _, d := range r.docs {
		if d.SectionID == sectionID {
			d := d
			return &d, nil
		}
	}
	return nil, apperrors.NewDocumentNotFoundError(sectionID)
}

type stubModel struct {
	text    string
	err     error
	prompts []string
}

func (m *stubModel) Generate(ctx context.Context, prompt string, opts genai.Options) (*genai.Response, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return nil, m.err
	}
	return &genai.Response{Text: m.text}, nil
}

func testDocuments() []models.DocumentRecord {
	return []models.DocumentRecord{
		{SectionID: "about-midc", Title: "About MIDC", Chunks: []string{"MIDC was established in 1962."}},
		{SectionID: "contact", Title: "Contact Us", SourceURL: "https://www.midcindia.org/contact", Chunks: []string{"Udyog Sarathi"}},
		{SectionID: "faq", Title: "FAQ", Chunks: []string{"Frequently asked questions"}},
		{SectionID: "right-to-public-service-act", Title: "Right to Public Service Act", Chunks: []string{"Act text"}},
		{SectionID: "rts-gazette", Title: "RTS Gazette", Chunks: []string{"Gazette text"}},
		{SectionID: "list-of-services-under-rts-act", Title: "List of services under RTS Act", Chunks: []string{"Service list"}},
		{SectionID: "land-allotment", Title: "Land Allotment", Chunks: []string{"Plots are allotted online."}},
		{SectionID: "investors", Title: "Investors", Chunks: []string{"Investor facilitation cell"}},
	}
}

func createTestConfig() *Config {
	return &Config{TopK: 5, Strategy: StrategyKeywords}
}

func newTestHandler(t *testing.T, cfg *Config, repo *stubRepository, model genai.Client) *Handler {
	reg, err := registry.Default()
	require.NoError(t, err)
	return NewHandler(cfg, repo, model, reg, logger.NewTestLogger(t))
}

func TestHandler_KeywordSelection(t *testing.T) {
	h := newTestHandler(t, createTestConfig(), &stubRepository{docs: testDocuments()}, nil)

	tests := []struct {
		name     string
		input    Input
		want     []string
		fellBack bool
	}{
		{"contact is priority", Input{Text: "contact", EntitySafety: true}, []string{"contact"}, false},
		{"scored title match", Input{Text: "How does land allotment work?"}, []string{"land-allotment"}, false},
		{"section hint", Input{Text: "What is the vision of the corporation?"}, []string{"about-midc"}, false},
		{"fallback sections", Input{Text: "hello there"}, []string{"about-midc", "faq"}, true},
		{"entity safety takes front slot", Input{Text: "Who is the chairman of MIDC?", EntitySafety: true}, []string{"contact", "about-midc"}, false},
		{
			"mandatory topic in repository order",
			Input{Text: "What does the RTS gazette say?"},
			[]string{"right-to-public-service-act", "rts-gazette", "list-of-services-under-rts-act"},
			false,
		},
		{
			"entity safety and mandatory topic",
			Input{Text: "Which officer handles the RTS act?", EntitySafety: true},
			[]string{"contact", "right-to-public-service-act", "rts-gazette", "list-of-services-under-rts-act"},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Execute(context.Background(), &tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.SectionIDs())
			assert.Equal(t, tt.fellBack, out.FellBack)
		})
	}
}

func TestHandler_PluralQueryMatchesSingularTitle(t *testing.T) {
	docs := []models.DocumentRecord{
		{SectionID: "about-midc", Title: "About MIDC", Chunks: []string{"MIDC was established in 1962."}},
		{SectionID: "faq", Title: "FAQ", Chunks: []string{"Frequently asked questions"}},
		{SectionID: "exporter-facilitation", Title: "Exporter Facilitation", Chunks: []string{"Export promotion cell"}},
		{SectionID: "trade-licence", Title: "Trade Licence", Chunks: []string{"Licences are issued online."}},
	}
	h := newTestHandler(t, createTestConfig(), &stubRepository{docs: docs}, nil)

	tests := []struct {
		query string
		want  []string
	}{
		{"support for exporters", []string{"exporter-facilitation"}},
		{"support for exporter", []string{"exporter-facilitation"}},
		{"how are licences renewed", []string{"trade-licence"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			out, err := h.Execute(context.Background(), &Input{Text: tt.query})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.SectionIDs())
			assert.False(t, out.FellBack)
		})
	}
}

func TestWordForms(t *testing.T) {
	assert.Equal(t, []string{"exporters", "exporter"}, wordForms("exporters"))
	assert.Equal(t, []string{"licences", "licence", "licenc"}, wordForms("licences"))
	assert.Equal(t, []string{"rts"}, wordForms("rts"))
	assert.Equal(t, []string{"भूखंड"}, wordForms("भूखंड"))
}

func TestHandler_Flags(t *testing.T) {
	h := newTestHandler(t, createTestConfig(), &stubRepository{docs: testDocuments()}, nil)

	out, err := h.Execute(context.Background(), &Input{Text: "contact office for rts", EntitySafety: true})
	require.NoError(t, err)
	require.NotEmpty(t, out.Documents)

	assert.Equal(t, "contact", out.Documents[0].Record.SectionID)
	assert.True(t, out.Documents[0].Priority)
	for _, d := range out.Documents[1:4] {
		assert.True(t, d.Mandatory, d.Record.SectionID)
		assert.Equal(t, "mandatory:rts", d.Reason)
	}
}

func TestHandler_MandatoryTopicSuperset(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)
	h := newTestHandler(t, &Config{TopK: 1, Strategy: StrategyKeywords}, &stubRepository{docs: testDocuments()}, nil)

	for _, topic := range reg.MandatoryTopics {
		for _, trigger := range topic.Triggers {
			out, err := h.Execute(context.Background(), &Input{Text: "tell me about " + trigger})
			require.NoError(t, err)
			assert.Subset(t, out.SectionIDs(), topic.Sections, "trigger %q", trigger)
		}
	}
}

func TestHandler_TopKAndStableTies(t *testing.T) {
	docs := []models.DocumentRecord{
		{SectionID: "a-plot", Title: "Plot A"},
		{SectionID: "b-plot", Title: "Plot B"},
		{SectionID: "c-plot-rates", Title: "Plot Rates"},
		{SectionID: "d-plot", Title: "Plot D"},
	}
	h := newTestHandler(t, &Config{TopK: 2, Strategy: StrategyKeywords}, &stubRepository{docs: docs}, nil)

	out, err := h.Execute(context.Background(), &Input{Text: "plot rates"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c-plot-rates", "a-plot"}, out.SectionIDs())
}

func TestHandler_FirstDocumentFallback(t *testing.T) {
	docs := []models.DocumentRecord{{SectionID: "notices", Title: "Notices"}, {SectionID: "tenders", Title: "Tenders"}}
	h := newTestHandler(t, createTestConfig(), &stubRepository{docs: docs}, nil)

	out, err := h.Execute(context.Background(), &Input{Text: "zzz"})
	require.NoError(t, err)
	assert.Equal(t, []string{"notices"}, out.SectionIDs())
	assert.True(t, out.FellBack)
}

func TestHandler_RepositoryFailures(t *testing.T) {
	h := newTestHandler(t, createTestConfig(), &stubRepository{}, nil)
	_, err := h.Execute(context.Background(), &Input{Text: "contact"})
	assert.True(t, errors.Is(err, apperrors.ErrKnowledgeBaseUnavailable))

	down := apperrors.NewKnowledgeBaseUnavailableError("elasticsearch", errors.New("connection refused"))
	h = newTestHandler(t, createTestConfig(), &stubRepository{err: down}, nil)
	_, err = h.Execute(context.Background(), &Input{Text: "contact"})
	assert.True(t, errors.Is(err, apperrors.ErrKnowledgeBaseUnavailable))
}

func TestHandler_SemanticSelection(t *testing.T) {
	cfg := &Config{TopK: 5, Strategy: StrategySemantic}

	tests := []struct {
		name     string
		model    *stubModel
		want     []string
		fellBack bool
	}{
		{"valid fenced indices", &stubModel{text: "```json\n[6, 6, 99, -1, 7]\n```"}, []string{"land-allotment", "investors"}, false},
		{"model error", &stubModel{err: errors.New("quota exceeded")}, []string{"about-midc", "faq"}, true},
		{"not an array", &stubModel{text: `{"indices":[1]}`}, []string{"about-midc", "faq"}, true},
		{"empty array", &stubModel{text: `[]`}, []string{"about-midc", "faq"}, true},
		{"only out of range", &stubModel{text: `[42]`}, []string{"about-midc", "faq"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, cfg, &stubRepository{docs: testDocuments()}, tt.model)
			out, err := h.Execute(context.Background(), &Input{Text: "How do I invest in an industrial plot?"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.SectionIDs())
			assert.Equal(t, tt.fellBack, out.FellBack)
			require.Len(t, tt.model.prompts, 1)
			assert.Contains(t, tt.model.prompts[0], "6. land-allotment | Land Allotment | ")
		})
	}
}

func TestHandler_Idempotent(t *testing.T) {
	h := newTestHandler(t, createTestConfig(), &stubRepository{docs: testDocuments()}, nil)
	input := &Input{Text: "investor incentives and RTS services", EntitySafety: false}

	first, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	second, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, first.SectionIDs(), second.SectionIDs())
}

func TestHandler_NeverEmpty(t *testing.T) {
	h := newTestHandler(t, createTestConfig(), &stubRepository{docs: testDocuments()}, nil)
	for _, q := range []string{"", "?", "के", "a b c", "1962"} {
		out, err := h.Execute(context.Background(), &Input{Text: q})
		require.NoError(t, err)
		assert.NotEmpty(t, out.Documents, "query %q", q)
	}
}
