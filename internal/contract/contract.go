// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/devflow/schema"
)

// AIProvider defines the capability boundary for external AI code review.
// Callers depend only on this interface, never a concrete provider, so that
// tests can swap in deterministic mocks.
type AIProvider interface {
	// AnalyzeCode sends file content for review and returns a structured insight.
	AnalyzeCode(ctx context.Context, content string) (*schema.AIInsight, error)

	// SuggestFixes asks for remediation suggestions for a set of findings.
	SuggestFixes(ctx context.Context, findings []schema.SecurityFinding) ([]string, error)
}

// HistoryManager defines the interface for managing the run-history store.
// This allows the history layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore defines the interface for the write-only run-history audit.
// The analysis pipeline only ever writes through it; results are never read
// back into a run.
type HistoryStore interface {
	// BeginRun creates a new run row and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run row with completion data
	EndRun(runID int64, endTime time.Time, insights *schema.ProjectInsights) error

	// RecordFileMetrics stores per-file metrics for a run
	RecordFileMetrics(runID int64, metrics schema.FileMetrics) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// ListRuns returns all recorded runs, newest first
	ListRuns() ([]schema.RunRecord, error)

	// ListFileMetrics returns all recorded file metric rows
	ListFileMetrics() ([]schema.FileMetricsRecord, error)

	// Clear removes all recorded runs and file metrics
	Clear() error

	// Close closes the underlying connection
	Close() error
}
