package main

import (
	"context"
	"testing"

	apperrors "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/errors"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"
	composeanswer "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/compose-answer"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnswerer struct {
	input *composeanswer.Input
	err   error
}

func (a *stubAnswerer) Execute(_ context.Context, input *composeanswer.Input) (*composeanswer.Output, error) {
	a.input = input
	if a.err != nil {
		return nil, a.err
	}
	return &composeanswer.Output{ComposedAnswer: models.ComposedAnswer{
		Text:             "Udyog Sarathi, Andheri (E), Mumbai.",
		Confidence:       0.5,
		Mode:             models.ModeInternal,
		Sources:          []string{"https://www.midcindia.org/contact"},
		RecommendedPages: []models.Link{{Title: "Contact Us", URL: "https://www.midcindia.org/contact"}},
		FormsDetected:    []models.FormDescriptor{{Name: "Grievance form"}},
		ConversationState: models.ConversationState{
			ShouldFollowUp:  true,
			FollowUpMessage: "Would you like regional office details?",
		},
	}}, nil
}

type stubRepository struct {
	doc *models.DocumentRecord
}

func (r *stubRepository) ListDocuments(context.Context) ([]models.DocumentRecord, error) {
	return []models.DocumentRecord{*r.doc}, nil
}

func (r *stubRepository) GetDocument(_ context.Context, id string) (*models.DocumentRecord, error) {
	if id != r.doc.SectionID {
		return nil, apperrors.NewDocumentNotFoundError(id)
	}
	return r.doc, nil
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandleAsk(t *testing.T) {
	answerer := &stubAnswerer{}
	handler := handleAsk(answerer, logger.NewTestLogger(t))

	res, err := handler(context.Background(), callRequest(map[string]any{"question": "contact", "mode": "internet"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, &composeanswer.Input{Question: "contact", Mode: "internet"}, answerer.input)

	text := resultText(t, res)
	assert.Contains(t, text, "Udyog Sarathi")
	assert.Contains(t, text, "Confidence: 0.50")
	assert.Contains(t, text, "- [Contact Us](https://www.midcindia.org/contact)")
	assert.Contains(t, text, "- Grievance form")
	assert.Contains(t, text, "Would you like regional office details?")
}

func TestHandleAsk_Errors(t *testing.T) {
	handler := handleAsk(&stubAnswerer{}, logger.NewTestLogger(t))
	res, err := handler(context.Background(), callRequest(map[string]any{"question": "  "}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	handler = handleAsk(&stubAnswerer{err: apperrors.NewInvalidRequestError(`mode must be empty or "internet", got "x"`)}, logger.NewTestLogger(t))
	res, err = handler(context.Background(), callRequest(map[string]any{"question": "hi", "mode": "x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), `got "x"`)
}

func TestHandleGetSection(t *testing.T) {
	repo := &stubRepository{doc: &models.DocumentRecord{
		SectionID:    "about-midc",
		SourceURL:    "https://www.midcindia.org/about",
		Chunks:       []string{"MIDC was established in 1962.", "It develops industrial areas."},
		RelatedLinks: []models.Link{{URL: "https://industry.maharashtra.gov.in"}},
	}}
	handler := handleGetSection(repo, logger.NewTestLogger(t))

	res, err := handler(context.Background(), callRequest(map[string]any{"section_id": "about-midc"}))
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "# About Midc")
	assert.Contains(t, text, "[2] It develops industrial areas.")
	assert.Contains(t, text, "- https://industry.maharashtra.gov.in")

	res, err = handler(context.Background(), callRequest(map[string]any{"section_id": "missing"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Document not found")
}
