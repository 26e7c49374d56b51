// Package parquet provides data structures and functions for exporting
// analysis data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/huangsam/devflow/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single analysis run with metadata.
// This struct maps to the devflow_runs database table.
type Run struct {
	// RunID is the unique identifier for this analysis run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the analysis began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the analysis completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the analysis run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// FilesAnalyzed is the number of files analyzed in this run
	FilesAnalyzed int32 `parquet:"files_analyzed,snappy"`

	// TotalLines is the total lines of code across all analyzed files
	TotalLines int32 `parquet:"total_lines,snappy"`

	// ErrorCount is the number of per-file failures recorded during the run
	ErrorCount int32 `parquet:"error_count,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// FileMetricsRow represents the stored metrics for a single file in a run.
// This struct maps to the devflow_file_metrics database table.
type FileMetricsRow struct {
	// RunID references the parent analysis run
	RunID int64 `parquet:"run_id,snappy"`

	// FilePath is the relative path to the file in the project
	FilePath string `parquet:"file_path,snappy"`

	// Language is the detected source language
	Language string `parquet:"language,snappy"`

	// LinesOfCode is the count of non-blank, non-comment lines
	LinesOfCode int32 `parquet:"lines_of_code,snappy"`

	// BlankLines is the count of whitespace-only lines
	BlankLines int32 `parquet:"blank_lines,snappy"`

	// CommentLines is the count of comment lines
	CommentLines int32 `parquet:"comment_lines,snappy"`

	// Complexity is the branch-based complexity estimate
	Complexity float64 `parquet:"complexity,snappy"`

	// Dependencies is the number of distinct imported modules
	Dependencies int32 `parquet:"dependencies,snappy"`

	// FindingCount is the number of security findings at or above the configured severity
	FindingCount int32 `parquet:"finding_count,snappy"`

	// SizeBytes is the file size in bytes
	SizeBytes int64 `parquet:"size_bytes,snappy"`

	// AnalyzedAt is when this file was analyzed
	AnalyzedAt time.Time `parquet:"analyzed_at,snappy"`
}

// InsightsRow represents one analyzed file from a completed project run,
// used when `--output parquet` is selected on the analyze command.
type InsightsRow struct {
	// FilePath is the relative path to the file in the project
	FilePath string `parquet:"file_path,snappy"`

	// Language is the detected source language
	Language string `parquet:"language,snappy"`

	// LinesOfCode is the count of non-blank, non-comment lines
	LinesOfCode int32 `parquet:"lines_of_code,snappy"`

	// BlankLines is the count of whitespace-only lines
	BlankLines int32 `parquet:"blank_lines,snappy"`

	// CommentLines is the count of comment lines
	CommentLines int32 `parquet:"comment_lines,snappy"`

	// Complexity is the branch-based complexity estimate
	Complexity float64 `parquet:"complexity,snappy"`

	// Dependencies is the number of distinct imported modules
	Dependencies int32 `parquet:"dependencies,snappy"`

	// FindingCount is the number of security findings in this file
	FindingCount int32 `parquet:"finding_count,snappy"`

	// SizeBytes is the file size in bytes
	SizeBytes int64 `parquet:"size_bytes,snappy"`

	// LastModified is the file's modification time at analysis
	LastModified time.Time `parquet:"last_modified,snappy"`
}

// writeParquet writes a slice of records to a Parquet file using struct schema inference.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is automatically derived from the struct tags
	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteFileMetricsParquet writes a slice of FileMetricsRow structs to a Parquet file.
func WriteFileMetricsParquet(data []FileMetricsRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteInsightsParquet writes a slice of InsightsRow structs to a Parquet file.
func WriteInsightsParquet(data []InsightsRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// MockFetchRuns generates sample Run data for demonstration.
func MockFetchRuns() []Run {
	now := time.Now()
	startTime1 := now.Add(-2 * time.Hour)
	endTime1 := now.Add(-1*time.Hour - 30*time.Minute)
	durationMs1 := int32(endTime1.Sub(startTime1).Milliseconds())
	configParams1 := `{"root":"/srv/projects/api","workers":8,"min_severity":"low"}`

	startTime2 := now.Add(-24 * time.Hour)
	endTime2 := now.Add(-23 * time.Hour)
	durationMs2 := int32(endTime2.Sub(startTime2).Milliseconds())
	configParams2 := `{"root":"/srv/projects/web","workers":4,"min_severity":"high"}`

	startTime3 := now.Add(-10 * time.Minute)
	// Note: endTime3, durationMs3, configParams3 are nil to demonstrate nullable fields

	return []Run{
		{
			RunID:         1,
			StartTime:     startTime1,
			EndTime:       &endTime1,
			RunDurationMs: &durationMs1,
			FilesAnalyzed: 150,
			TotalLines:    48210,
			ErrorCount:    2,
			ConfigParams:  &configParams1,
		},
		{
			RunID:         2,
			StartTime:     startTime2,
			EndTime:       &endTime2,
			RunDurationMs: &durationMs2,
			FilesAnalyzed: 75,
			TotalLines:    20344,
			ErrorCount:    0,
			ConfigParams:  &configParams2,
		},
		{
			RunID:         3,
			StartTime:     startTime3,
			EndTime:       nil, // Still running - nullable field
			RunDurationMs: nil, // Not yet calculated - nullable field
			FilesAnalyzed: 0,
			TotalLines:    0,
			ErrorCount:    0,
			ConfigParams:  nil, // No config stored - nullable field
		},
	}
}

// MockFetchFileMetrics generates sample FileMetricsRow data for demonstration.
func MockFetchFileMetrics() []FileMetricsRow {
	now := time.Now()

	return []FileMetricsRow{
		{
			RunID:        1,
			FilePath:     "src/main.rs",
			Language:     "rust",
			LinesOfCode:  412,
			BlankLines:   58,
			CommentLines: 73,
			Complexity:   28.0,
			Dependencies: 9,
			FindingCount: 1,
			SizeBytes:    15820,
			AnalyzedAt:   now.Add(-1 * time.Hour),
		},
		{
			RunID:        1,
			FilePath:     "src/utils/helper.go",
			Language:     "go",
			LinesOfCode:  180,
			BlankLines:   24,
			CommentLines: 31,
			Complexity:   12.0,
			Dependencies: 5,
			FindingCount: 0,
			SizeBytes:    6270,
			AnalyzedAt:   now.Add(-1 * time.Hour),
		},
		{
			RunID:        2,
			FilePath:     "scripts/deploy.py",
			Language:     "python",
			LinesOfCode:  95,
			BlankLines:   18,
			CommentLines: 12,
			Complexity:   7.0,
			Dependencies: 4,
			FindingCount: 2,
			SizeBytes:    3480,
			AnalyzedAt:   now.Add(-23 * time.Hour),
		},
	}
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			FilesAnalyzed: record.FilesAnalyzed,
			TotalLines:    record.TotalLines,
			ErrorCount:    record.ErrorCount,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertFileMetricsRecords converts schema.FileMetricsRecord to FileMetricsRow for Parquet export.
func ConvertFileMetricsRecords(records []schema.FileMetricsRecord) []FileMetricsRow {
	result := make([]FileMetricsRow, len(records))
	for i, record := range records {
		result[i] = FileMetricsRow{
			RunID:        record.RunID,
			FilePath:     record.FilePath,
			Language:     record.Language,
			LinesOfCode:  record.LinesOfCode,
			BlankLines:   record.BlankLines,
			CommentLines: record.CommentLines,
			Complexity:   record.Complexity,
			Dependencies: record.Dependencies,
			FindingCount: record.FindingCount,
			SizeBytes:    record.SizeBytes,
			AnalyzedAt:   record.AnalyzedAt,
		}
	}
	return result
}

// ConvertInsights converts the per-file metrics of a completed run to InsightsRow
// records sorted by path for deterministic output.
func ConvertInsights(insights *schema.ProjectInsights) []InsightsRow {
	paths := make([]string, 0, len(insights.MetricsByFile))
	for path := range insights.MetricsByFile {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	result := make([]InsightsRow, len(paths))
	for i, path := range paths {
		m := insights.MetricsByFile[path]
		result[i] = InsightsRow{
			FilePath:     m.Path,
			Language:     string(m.Language),
			LinesOfCode:  int32(m.LinesOfCode),
			BlankLines:   int32(m.BlankLines),
			CommentLines: int32(m.CommentLines),
			Complexity:   m.Complexity,
			Dependencies: int32(len(m.Dependencies)),
			FindingCount: int32(len(m.Findings)),
			SizeBytes:    m.SizeBytes,
			LastModified: m.LastModified,
		}
	}
	return result
}
