// Package schema has configs, models and global variables for all parts of devflow.
package schema

import "time"

// FileMetrics represents the static metrics for a single source file.
// It includes line classification counts, a branch-derived complexity score,
// the extracted dependency list and any security findings from pattern matching.
type FileMetrics struct {
	Path         string            `json:"path"`                        // Relative path to the file in the project
	Language     Language          `json:"language"`                    // Detected language, keyed by extension
	LinesOfCode  int               `json:"lines_of_code"`               // Lines that are neither blank nor comment
	BlankLines   int               `json:"blank_lines"`                 // Lines that trim to empty
	CommentLines int               `json:"comment_lines"`               // Lines whose trimmed form starts with a comment marker
	Complexity   float64           `json:"complexity"`                  // Accumulated branch count across all functions
	Dependencies []string          `json:"dependencies,omitempty"`      // First path segment of each import, sorted and deduplicated
	Findings     []SecurityFinding `json:"security_findings,omitempty"` // Pattern matches at or above the minimum severity, in scan order
	SizeBytes    int64             `json:"size_bytes"`                  // Size of the file content in bytes
	LastModified time.Time         `json:"last_modified"`               // Modification time from the file system
}

// SecurityFinding represents one pattern match in a file.
type SecurityFinding struct {
	Severity    Severity        `json:"severity"`
	Category    FindingCategory `json:"category"`
	Description string          `json:"description"`
	Line        int             `json:"line_number,omitempty"` // 1-based; 0 means unknown
	Pattern     string          `json:"pattern,omitempty"`     // The pattern expression that matched
}

// AIInsight is the structured result of an external AI review of one file.
// A nil *AIInsight on a result means the review was skipped or failed and
// will not be retried further.
type AIInsight struct {
	Summary                 string   `json:"summary"`
	QualityScore            float64  `json:"quality_score"`    // 0-100
	ComplexityScore         float64  `json:"complexity_score"` // 0-100
	SecurityRecommendations []string `json:"security_recommendations,omitempty"`
	OptimizationSuggestions []string `json:"optimization_suggestions,omitempty"`
	Suggestions             []string `json:"suggestions,omitempty"` // Normalized from raw provider text
	Confidence              float64  `json:"confidence"`            // 0-1
}

// AnalysisResult is the unit stored in the result cache, one per file path.
// A failed analysis still produces a result with zero-valued metrics and a
// failure reason so callers can tell "not yet processed" from "failed".
type AnalysisResult struct {
	Path          string      `json:"path"`
	Metrics       FileMetrics `json:"metrics"`
	Insight       *AIInsight  `json:"ai_insight,omitempty"`
	Failed        bool        `json:"failed,omitempty"`
	FailureReason string      `json:"failure_reason,omitempty"`
	AnalyzedAt    time.Time   `json:"analyzed_at"`
}

// ProjectFinding ties a security finding to the file it was found in.
type ProjectFinding struct {
	Path string `json:"path"`
	SecurityFinding
}

// ProjectInsights is the aggregate snapshot of one analysis run.
//
// Invariants: FilesAnalyzed == len(MetricsByFile) and
// TotalLines == sum of LinesOfCode over MetricsByFile.
type ProjectInsights struct {
	FilesAnalyzed        int                    `json:"files_analyzed"`
	TotalLines           int                    `json:"total_lines"`
	TotalComplexity      float64                `json:"total_complexity"`
	LanguageDistribution map[Language]int       `json:"language_distribution"`
	MetricsByFile        map[string]FileMetrics `json:"metrics_by_file"`
	SecurityFindings     []ProjectFinding       `json:"security_findings"`
	ErrorCount           int                    `json:"error_count"`
	GeneratedAt          time.Time              `json:"generated_at"`
}

// AverageComplexity returns the mean per-file complexity, or 0 for an empty run.
func (p *ProjectInsights) AverageComplexity() float64 {
	if p.FilesAnalyzed == 0 {
		return 0
	}
	return p.TotalComplexity / float64(p.FilesAnalyzed)
}

// Position is a cursor location forwarded by an editor front end.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// LineRange is a visible line span forwarded by an editor front end.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// AnalysisContext is the single entry shape accepted from editor adapters.
// Content is analyzed as-is; the path is metadata only and is never read.
type AnalysisContext struct {
	Path         string     `json:"file_path"`
	Content      string     `json:"content"`
	Cursor       *Position  `json:"cursor,omitempty"`
	VisibleRange *LineRange `json:"visible_range,omitempty"`
}
