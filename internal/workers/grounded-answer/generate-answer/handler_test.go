package generateanswer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/genai"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"
	"github.com/Sankalp-SISL/MIDC-chatbot/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockModel struct {
	mock.Mock
}

func (m *mockModel) Generate(ctx context.Context, prompt string, opts genai.Options) (*genai.Response, error) {
	args := m.Called(ctx, prompt, opts)
	if resp := args.Get(0); resp != nil {
		return resp.(*genai.Response), args.Error(1)
	}
	return nil, args.Error(1)
}

func createTestConfig() *Config {
	return &Config{Temperature: 0.2}
}

func newTestHandler(t *testing.T, cfg *Config, model genai.Client) (*Handler, *registry.KeywordRegistry) {
	reg, err := registry.Default()
	require.NoError(t, err)
	return NewHandler(cfg, model, reg, logger.NewTestLogger(t)), reg
}

func TestHandler_InternalPrompt(t *testing.T) {
	model := &mockModel{}
	h, reg := newTestHandler(t, createTestConfig(), model)

	var prompt string
	model.On("Generate", mock.Anything, mock.Anything, genai.Options{Temperature: 0.2, Purpose: "answer"}).
		Run(func(args mock.Arguments) { prompt = args.String(1) }).
		Return(&genai.Response{Text: "```\nMIDC's head office is at Udyog Sarathi, Andheri.\n```"}, nil).Once()

	out := h.Execute(context.Background(), &Input{
		Question: "Where is the MIDC head office?",
		Language: models.LanguageDefault,
		Mode:     models.ModeInternal,
		Context:  "Udyog Sarathi, Marol Industrial Area, Andheri (E), Mumbai",
	})

	model.AssertExpectations(t)
	assert.Equal(t, "MIDC's head office is at Udyog Sarathi, Andheri.", out.Text)
	assert.False(t, out.Fallback)
	assert.Empty(t, out.HTML)

	assert.True(t, strings.HasPrefix(prompt, rolePreamble))
	assert.Contains(t, prompt, "respond exactly with: "+reg.Messages.NotAvailable.Default)
	assert.Contains(t, prompt, "CONTENT:\nUdyog Sarathi, Marol Industrial Area")
	assert.Contains(t, prompt, "QUESTION:\nWhere is the MIDC head office?")
	assert.Contains(t, prompt, "- Respond in English.")
	assert.NotContains(t, prompt, "Markdown")
}

func TestHandler_InternetModeDisclaimer(t *testing.T) {
	model := &mockModel{}
	h, reg := newTestHandler(t, createTestConfig(), model)

	model.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return !strings.Contains(p, "CONTENT:") && strings.Contains(p, "verifiable public web results")
	}), genai.Options{Temperature: 0.2, WebSearch: true, Purpose: "answer"}).
		Return(&genai.Response{
			Text:      "MIDC announced a new industrial park.",
			Citations: []models.Link{{Title: "News", URL: "https://news.example/midc"}},
		}, nil).Once()

	out := h.Execute(context.Background(), &Input{Question: "latest news on MIDC parks", Language: models.LanguageDefault, Mode: models.ModeInternet})

	model.AssertExpectations(t)
	assert.True(t, strings.HasPrefix(out.Text, reg.Messages.Disclaimer.Default+"\n\n"))
	assert.Len(t, out.Citations, 1)
}

func TestHandler_DisclaimerNotDuplicated(t *testing.T) {
	model := &mockModel{}
	h, reg := newTestHandler(t, createTestConfig(), model)
	text := reg.Messages.Disclaimer.Local + "\nउत्तर"
	model.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(&genai.Response{Text: text}, nil)

	out := h.Execute(context.Background(), &Input{Question: "ताज्या बातम्या", Language: models.LanguageLocal, Mode: models.ModeInternet})
	assert.Equal(t, text, out.Text)
}

func TestHandler_FailuresYieldSentinel(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.Response
		err  error
		lang models.Language
	}{
		{"model error", nil, errors.New("503 from provider"), models.LanguageDefault},
		{"model error marathi", nil, errors.New("timeout"), models.LanguageLocal},
		{"blank text", &genai.Response{Text: "```\n  \n```"}, nil, models.LanguageDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &mockModel{}
			h, reg := newTestHandler(t, createTestConfig(), model)
			if tt.resp != nil {
				model.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(tt.resp, nil).Once()
			} else {
				model.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err).Once()
			}

			out := h.Execute(context.Background(), &Input{Question: "q", Language: tt.lang, Mode: models.ModeInternal})
			assert.Equal(t, reg.Messages.NotAvailable.For(tt.lang), out.Text)
			assert.True(t, out.Fallback)
			model.AssertNumberOfCalls(t, "Generate", 1)
		})
	}
}

func TestHandler_RichRendering(t *testing.T) {
	model := &mockModel{}
	h, _ := newTestHandler(t, &Config{Temperature: 0.2, RenderHTML: true}, model)

	var prompt string
	model.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { prompt = args.String(1) }).
		Return(&genai.Response{Text: "## **Plot allotment**\n\n- Apply on the [MIDC portal](https://land.midcindia.org)\n- __Online__ only"}, nil)

	out := h.Execute(context.Background(), &Input{Question: "plot allotment", Language: models.LanguageDefault, Mode: models.ModeInternal, Context: "ctx"})

	assert.Contains(t, prompt, "Do not use bold or italic emphasis markers.")
	assert.Equal(t, "## Plot allotment\n\n- Apply on the [MIDC portal](https://land.midcindia.org)\n- Online only", out.Text)
	assert.Contains(t, out.HTML, "<h2>Plot allotment</h2>")
	assert.Equal(t, []models.Link{{Title: "MIDC portal", URL: "https://land.midcindia.org"}}, out.AnswerLinks)
}
