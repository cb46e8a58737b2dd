package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/api"
	apperrors "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/errors"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/knowledge"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"
	composeanswer "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/compose-answer"
)

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(msg)},
		IsError: true,
	}
}

func handleAsk(answerer api.Answerer, log logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil || strings.TrimSpace(question) == "" {
			return errorResult("Error: question parameter is required"), nil
		}

		out, err := answerer.Execute(ctx, &composeanswer.Input{
			Question: question,
			Mode:     request.GetString("mode", ""),
		})
		if err != nil {
			stdErr := apperrors.Normalize(err)
			log.Warn("ask_midc rejected", map[string]interface{}{"code": string(stdErr.Code), "details": stdErr.Details})
			return errorResult(fmt.Sprintf("Error: %s", stdErr.Details)), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(formatAnswer(&out.ComposedAnswer))},
		}, nil
	}
}

func handleGetSection(repo knowledge.Repository, log logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("section_id")
		if err != nil || id == "" {
			return errorResult("Error: section_id parameter is required"), nil
		}

		doc, err := repo.GetDocument(ctx, id)
		if err != nil {
			log.Warn("get_section failed", map[string]interface{}{"sectionId": id, "error": err.Error()})
			return errorResult(fmt.Sprintf("Section %q could not be loaded: %s", id, apperrors.Normalize(err).Message)), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(formatSection(doc))},
		}, nil
	}
}

func formatAnswer(a *models.ComposedAnswer) string {
	var sb strings.Builder
	sb.WriteString(a.Text)
	sb.WriteString(fmt.Sprintf("\n\n---\nMode: %s | Confidence: %.2f\n", a.Mode, a.Confidence))

	if len(a.Sources) > 0 {
		sb.WriteString("\nSources:\n")
		for _, s := range a.Sources {
			sb.WriteString("- " + s + "\n")
		}
	}
	writeLinks(&sb, "Recommended pages", a.RecommendedPages)
	if len(a.FormsDetected) > 0 {
		sb.WriteString("\nForms:\n")
		for _, f := range a.FormsDetected {
			if f.URL != "" {
				sb.WriteString(fmt.Sprintf("- %s (%s)\n", f.Name, f.URL))
			} else {
				sb.WriteString("- " + f.Name + "\n")
			}
		}
	}
	writeLinks(&sb, "Links", a.ExternalLinks)
	if a.ConversationState.ShouldFollowUp && a.ConversationState.FollowUpMessage != "" {
		sb.WriteString("\n" + a.ConversationState.FollowUpMessage + "\n")
	}
	return sb.String()
}

func formatSection(doc *models.DocumentRecord) string {
	var sb strings.Builder
	title := doc.Title
	if title == "" {
		title = models.TitleFromSectionID(doc.SectionID)
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	if doc.SourceURL != "" {
		sb.WriteString(fmt.Sprintf("Source: %s\n\n", doc.SourceURL))
	}
	for i, c := range doc.Chunks {
		sb.WriteString(fmt.Sprintf("[%d] %s\n\n", i+1, c))
	}
	writeLinks(&sb, "Related links", doc.RelatedLinks)
	return sb.String()
}

func writeLinks(sb *strings.Builder, heading string, links []models.Link) {
	if len(links) == 0 {
		return
	}
	sb.WriteString("\n" + heading + ":\n")
	for _, l := range links {
		if l.Title != "" {
			sb.WriteString(fmt.Sprintf("- [%s](%s)\n", l.Title, l.URL))
		} else {
			sb.WriteString("- " + l.URL + "\n")
		}
	}
}
