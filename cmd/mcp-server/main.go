// cmd/mcp-server/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/bootstrap"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/config"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol, so logs go to stderr only.
	zapLog := logger.New("warn", "json")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx := context.Background()

	kb, err := bootstrap.NewKnowledge(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize knowledge source: %v\n", err)
		os.Exit(1)
	}
	defer kb.Close()

	pipeline, err := bootstrap.NewPipeline(ctx, cfg, kb.Snapshot, nil, nil, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize answer pipeline: %v\n", err)
		os.Exit(1)
	}

	mcpServer := server.NewMCPServer(
		"midc-chatbot",
		cfg.App.Version,
		server.WithToolCapabilities(true),
	)
	mcpServer.AddTool(askTool(), handleAsk(pipeline, log))
	mcpServer.AddTool(getSectionTool(), handleGetSection(kb.Snapshot, log))

	if err := server.ServeStdio(mcpServer); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
