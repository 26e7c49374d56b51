package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityRank(t *testing.T) {
	assert.Less(t, SeverityLow.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityHigh.Rank())
	assert.Less(t, SeverityHigh.Rank(), SeverityCritical.Rank())
	assert.Equal(t, 0, Severity("bogus").Rank(), "unknown severities rank below low")
}

func TestSeverityAtLeast(t *testing.T) {
	assert.True(t, SeverityCritical.AtLeast(SeverityLow))
	assert.True(t, SeverityHigh.AtLeast(SeverityHigh))
	assert.False(t, SeverityLow.AtLeast(SeverityMedium))
	assert.False(t, Severity("bogus").AtLeast(SeverityLow))
}

func TestAverageComplexity(t *testing.T) {
	t.Run("empty run", func(t *testing.T) {
		p := &ProjectInsights{}
		assert.Equal(t, 0.0, p.AverageComplexity())
	})

	t.Run("mean over files", func(t *testing.T) {
		p := &ProjectInsights{FilesAnalyzed: 4, TotalComplexity: 10}
		assert.Equal(t, 2.5, p.AverageComplexity())
	})
}

func TestTopComplexFiles(t *testing.T) {
	insights := &ProjectInsights{
		MetricsByFile: map[string]FileMetrics{
			"a.rs": {Path: "a.rs", Complexity: 5},
			"b.rs": {Path: "b.rs", Complexity: 40},
			"c.rs": {Path: "c.rs", Complexity: 5},
			"d.rs": {Path: "d.rs", Complexity: 17},
		},
	}

	t.Run("descending with path tiebreak", func(t *testing.T) {
		files := insights.TopComplexFiles(0)
		require.Len(t, files, 4)
		assert.Equal(t, "b.rs", files[0].Path)
		assert.Equal(t, "d.rs", files[1].Path)
		assert.Equal(t, "a.rs", files[2].Path, "ties break by path")
		assert.Equal(t, "c.rs", files[3].Path)
	})

	t.Run("ranks and labels", func(t *testing.T) {
		files := insights.TopComplexFiles(0)
		assert.Equal(t, 1, files[0].Rank)
		assert.Equal(t, "Critical", files[0].Label)
		assert.Equal(t, "High", files[1].Label)
		assert.Equal(t, "Moderate", files[2].Label)
	})

	t.Run("limit truncates", func(t *testing.T) {
		files := insights.TopComplexFiles(2)
		require.Len(t, files, 2)
		assert.Equal(t, "b.rs", files[0].Path)
	})

	t.Run("repeated calls are stable", func(t *testing.T) {
		first := insights.TopComplexFiles(0)
		for range 5 {
			assert.Equal(t, first, insights.TopComplexFiles(0))
		}
	})
}

func TestGetComplexityLabel(t *testing.T) {
	tests := []struct {
		complexity float64
		want       string
	}{
		{0, "Low"},
		{4.9, "Low"},
		{5, "Moderate"},
		{14.9, "Moderate"},
		{15, "High"},
		{29.9, "High"},
		{30, "Critical"},
		{100, "Critical"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetComplexityLabel(tt.complexity), "complexity %.1f", tt.complexity)
	}
}

func TestGetPlainLabel(t *testing.T) {
	assert.Equal(t, "Critical", GetPlainLabel(SeverityCritical))
	assert.Equal(t, "High", GetPlainLabel(SeverityHigh))
	assert.Equal(t, "Moderate", GetPlainLabel(SeverityMedium))
	assert.Equal(t, "Low", GetPlainLabel(SeverityLow))
	assert.Equal(t, "Low", GetPlainLabel(Severity("bogus")))
}

func TestEnrichFindings(t *testing.T) {
	findings := []ProjectFinding{
		{Path: "a.py", SecurityFinding: SecurityFinding{Severity: SeverityCritical, Line: 10}},
		{Path: "b.py", SecurityFinding: SecurityFinding{Severity: SeverityLow, Line: 2}},
	}

	enriched := EnrichFindings(findings)
	require.Len(t, enriched, 2)
	assert.Equal(t, 1, enriched[0].Rank)
	assert.Equal(t, "Critical", enriched[0].Label)
	assert.Equal(t, 2, enriched[1].Rank)
	assert.Equal(t, "Low", enriched[1].Label)
	assert.Equal(t, "b.py", enriched[1].Path)
}
