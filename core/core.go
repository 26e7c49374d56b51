// Package core implements the concurrent analysis engine: file
// classification, metrics calculation, the worker-pool pipeline with its
// write-once result cache, and project-level aggregation.
package core

import (
	"context"
	"time"

	"github.com/huangsam/devflow/internal/contract"
	"github.com/huangsam/devflow/internal/outwriter"
	"github.com/huangsam/devflow/schema"
)

// ExecuteAnalyze runs the full project analysis and prints the insights
// report. It serves as the main entry point for the 'analyze' command.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, provider contract.AIProvider, manager contract.HistoryManager) error {
	start := time.Now()
	calc, err := NewCalculator(cfg)
	if err != nil {
		return err
	}

	insights, _, err := AnalyzeProject(ctx, cfg, calc, provider)
	if err != nil {
		return err
	}

	recordRunHistory(cfg, manager, start, insights)

	duration := time.Since(start)
	return outwriter.PrintInsights(insights, cfg, duration)
}

// ExecuteSecurity runs the same analysis snapshot and prints a findings-only
// view. It serves as the main entry point for the 'security' command.
func ExecuteSecurity(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	calc, err := NewCalculator(cfg)
	if err != nil {
		return err
	}

	insights, _, err := AnalyzeProject(ctx, cfg, calc, nil)
	if err != nil {
		return err
	}

	duration := time.Since(start)
	return outwriter.PrintFindings(insights, cfg, duration)
}

// recordRunHistory writes the run audit when a history store is configured.
// Recording failures are warnings only; the report still prints.
func recordRunHistory(cfg *contract.Config, manager contract.HistoryManager, start time.Time, insights *schema.ProjectInsights) {
	if manager == nil || cfg.HistoryBackend == schema.NoneBackend {
		return
	}
	store := manager.GetHistoryStore()
	if store == nil {
		return
	}

	runID, err := store.BeginRun(start, map[string]any{
		"root":         cfg.RootPath,
		"workers":      cfg.Workers,
		"min_severity": string(cfg.MinSeverity),
		"ai":           cfg.AIEnabled,
	})
	if err != nil {
		contract.LogWarn("begin history run", err)
		return
	}
	for _, metrics := range insights.MetricsByFile {
		if err := store.RecordFileMetrics(runID, metrics); err != nil {
			contract.LogWarn("record file metrics", err)
		}
	}
	if err := store.EndRun(runID, time.Now(), insights); err != nil {
		contract.LogWarn("end history run", err)
	}
}
