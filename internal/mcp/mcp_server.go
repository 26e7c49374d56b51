// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/devflow/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Devflow MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, provider contract.AIProvider) *server.MCPServer {
	s := server.NewMCPServer(
		"Devflow Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg:  baseCfg,
		provider: provider,
	}

	// --- 1. Tool: analyze_project ---
	s.AddTool(mcp.NewTool("analyze_project",
		mcp.WithDescription("Analyze all source files under a project root and return aggregate metrics with the most complex files."),
		mcp.WithString("root_path", mcp.Description("Path to the project root (defaults to the configured root if not specified).")),
		mcp.WithString("min_severity", mcp.Description("Minimum severity for security findings (low, medium, high, critical)."), mcp.Enum("low", "medium", "high", "critical")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of files returned in the complexity ranking.")),
	), h.handleAnalyzeProject)

	// --- 2. Tool: analyze_file ---
	s.AddTool(mcp.NewTool("analyze_file",
		mcp.WithDescription("Analyze a single file's content in memory and return its metrics, findings and optional AI insight."),
		mcp.WithString("file_path", mcp.Description("Path of the file, used for language detection and reporting."), mcp.Required()),
		mcp.WithString("content", mcp.Description("The file content to analyze."), mcp.Required()),
		mcp.WithNumber("cursor_line", mcp.Description("Cursor line forwarded by an editor front end.")),
		mcp.WithNumber("cursor_column", mcp.Description("Cursor column forwarded by an editor front end.")),
		mcp.WithNumber("visible_start", mcp.Description("First visible line forwarded by an editor front end.")),
		mcp.WithNumber("visible_end", mcp.Description("Last visible line forwarded by an editor front end.")),
	), h.handleAnalyzeFile)

	// --- 3. Tool: suggest_fixes ---
	s.AddTool(mcp.NewTool("suggest_fixes",
		mcp.WithDescription("Scan file content for security findings and ask the AI provider for fix suggestions."),
		mcp.WithString("file_path", mcp.Description("Path of the file, used for language detection."), mcp.Required()),
		mcp.WithString("content", mcp.Description("The file content to scan."), mcp.Required()),
	), h.handleSuggestFixes)

	return s
}

// StartMCPServer starts the Devflow MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, provider contract.AIProvider) error {
	s := NewMCPServer(baseCfg, provider)
	return server.ServeStdio(s)
}
