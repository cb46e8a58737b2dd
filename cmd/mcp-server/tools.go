package main

import "github.com/mark3labs/mcp-go/mcp"

func askTool() mcp.Tool {
	return mcp.NewTool("ask_midc",
		mcp.WithDescription("Answer a question about MIDC from the curated knowledge base, or from the public web when asked to"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question, in English or Marathi"),
		),
		mcp.WithString("mode",
			mcp.Description("Set to \"internet\" to request an open-web answer"),
		),
	)
}

func getSectionTool() mcp.Tool {
	return mcp.NewTool("get_section",
		mcp.WithDescription("Return the text chunks and links of one knowledge base section"),
		mcp.WithString("section_id",
			mcp.Required(),
			mcp.Description("Section identifier, e.g. contact or about-midc"),
		),
	)
}
