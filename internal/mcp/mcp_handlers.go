package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/devflow/core"
	"github.com/huangsam/devflow/internal/contract"
	"github.com/huangsam/devflow/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg  *contract.Config
	provider contract.AIProvider
}

func (h *toolHandler) handleAnalyzeProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("root_path", ""); p != "" {
		cfg.RootPath = p
	}
	if s := request.GetString("min_severity", ""); s != "" {
		sev := schema.Severity(s)
		if _, ok := schema.ValidSeverities[sev]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid min_severity: %s", s)), nil
		}
		cfg.MinSeverity = sev
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	calc, err := core.NewCalculator(cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid configuration: %v", err)), nil
	}

	insights, _, err := core.AnalyzeProject(ctx, cfg, calc, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	// Summary plus the ranked files keeps the payload bounded for large projects
	payload := map[string]any{
		"files_analyzed":        insights.FilesAnalyzed,
		"total_lines":           insights.TotalLines,
		"average_complexity":    insights.AverageComplexity(),
		"language_distribution": insights.LanguageDistribution,
		"security_findings":     schema.EnrichFindings(insights.SecurityFindings),
		"error_count":           insights.ErrorCount,
		"top_complex_files":     insights.TopComplexFiles(cfg.ResultLimit),
	}
	jsonData, _ := json.MarshalIndent(payload, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleAnalyzeFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("file_path", "")
	content := request.GetString("content", "")
	if path == "" {
		return mcp.NewToolResultError("file_path is required"), nil
	}

	actx := schema.AnalysisContext{
		Path:    path,
		Content: content,
	}
	if line := request.GetInt("cursor_line", 0); line > 0 {
		actx.Cursor = &schema.Position{
			Line:   line,
			Column: request.GetInt("cursor_column", 0),
		}
	}
	if start := request.GetInt("visible_start", 0); start > 0 {
		actx.VisibleRange = &schema.LineRange{
			Start: start,
			End:   request.GetInt("visible_end", 0),
		}
	}

	analyzer, err := h.newAnalyzer()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid configuration: %v", err)), nil
	}

	result, err := analyzer.Analyze(ctx, actx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	// Echo the editor context so front ends can correlate the response with
	// the cursor and viewport state they sent.
	payload := map[string]any{
		"context": actx,
		"result":  result,
	}
	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleSuggestFixes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.provider == nil {
		return mcp.NewToolResultError("ai review is not enabled; start the server with --ai"), nil
	}

	path := request.GetString("file_path", "")
	content := request.GetString("content", "")
	if path == "" {
		return mcp.NewToolResultError("file_path is required"), nil
	}

	analyzer, err := h.newAnalyzer()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid configuration: %v", err)), nil
	}

	result, err := analyzer.Analyze(ctx, schema.AnalysisContext{Path: path, Content: content})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	if len(result.Metrics.Findings) == 0 {
		return mcp.NewToolResultText("No security findings to fix."), nil
	}

	suggestions, err := analyzer.SuggestFixes(ctx, result.Metrics.Findings)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fix suggestion failed: %v", err)), nil
	}

	payload := map[string]any{
		"findings":    result.Metrics.Findings,
		"suggestions": suggestions,
	}
	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// newAnalyzer builds a single-file analyzer from the server's base config.
func (h *toolHandler) newAnalyzer() (*core.Analyzer, error) {
	cfg := h.baseCfg.Clone()
	calc, err := core.NewCalculator(cfg)
	if err != nil {
		return nil, err
	}
	return core.NewAnalyzer(cfg, calc, h.provider), nil
}
