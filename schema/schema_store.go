package schema

import "time"

// RunRecord represents a row from the devflow_runs table.
type RunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	FilesAnalyzed int32
	TotalLines    int32
	ErrorCount    int32
	ConfigParams  *string
}

// FileMetricsRecord represents a row from the devflow_file_metrics table.
type FileMetricsRecord struct {
	RunID        int64
	FilePath     string
	Language     string
	LinesOfCode  int32
	BlankLines   int32
	CommentLines int32
	Complexity   float64
	Dependencies int32
	FindingCount int32
	SizeBytes    int64
	AnalyzedAt   time.Time
}
