package schema

import "sort"

// EnrichedFileMetrics adds presentation data to a FileMetrics.
type EnrichedFileMetrics struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	FileMetrics
}

// EnrichedFinding adds presentation data to a ProjectFinding.
type EnrichedFinding struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	ProjectFinding
}

// GetPlainLabel returns a plain text label for a severity.
func GetPlainLabel(s Severity) string {
	switch s {
	case SeverityCritical:
		return "Critical"
	case SeverityHigh:
		return "High"
	case SeverityMedium:
		return "Moderate"
	default:
		return "Low"
	}
}

// GetComplexityLabel returns a plain text label indicating how much attention
// a file deserves based on its complexity score.
func GetComplexityLabel(complexity float64) string {
	switch {
	case complexity >= 30:
		return "Critical"
	case complexity >= 15:
		return "High"
	case complexity >= 5:
		return "Moderate"
	default:
		return "Low"
	}
}

// TopComplexFiles returns up to limit files ordered by descending complexity,
// ties broken by path for determinism.
func (p *ProjectInsights) TopComplexFiles(limit int) []EnrichedFileMetrics {
	files := make([]FileMetrics, 0, len(p.MetricsByFile))
	for _, m := range p.MetricsByFile {
		files = append(files, m)
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].Complexity != files[j].Complexity {
			return files[i].Complexity > files[j].Complexity
		}
		return files[i].Path < files[j].Path
	})
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	output := make([]EnrichedFileMetrics, len(files))
	for i, f := range files {
		output[i] = EnrichedFileMetrics{
			Rank:        i + 1,
			Label:       GetComplexityLabel(f.Complexity),
			FileMetrics: f,
		}
	}
	return output
}

// EnrichFindings adds rank and severity label to a list of project findings.
func EnrichFindings(findings []ProjectFinding) []EnrichedFinding {
	output := make([]EnrichedFinding, len(findings))
	for i, f := range findings {
		output[i] = EnrichedFinding{
			Rank:           i + 1,
			Label:          GetPlainLabel(f.Severity),
			ProjectFinding: f,
		}
	}
	return output
}
