package aireview

import (
	"testing"
)

// FuzzNormalizeInsight fuzzes insight normalization with arbitrary provider text.
func FuzzNormalizeInsight(f *testing.F) {
	seeds := []string{
		"",
		"Code quality: 85\n- Sanitize user input\n- Cache the lookup table",
		"1. First suggestion\n2. Second suggestion",
		"You should definitely refactor this function.",
		"no actionable content here",
		"Code quality: 250",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		insight := NormalizeInsight(raw)
		if insight == nil {
			t.Fatal("NormalizeInsight returned nil")
		}
		if insight.QualityScore < 0 || insight.QualityScore > 100 {
			t.Fatalf("quality score out of range: %f", insight.QualityScore)
		}
		if insight.ComplexityScore < 0 || insight.ComplexityScore > 100 {
			t.Fatalf("complexity score out of range: %f", insight.ComplexityScore)
		}
		if insight.Confidence < 0 || insight.Confidence > 1 {
			t.Fatalf("confidence out of range: %f", insight.Confidence)
		}
	})
}

// FuzzExtractSuggestions fuzzes bullet/sentence extraction.
func FuzzExtractSuggestions(f *testing.F) {
	seeds := []string{
		"- one\n* two\n• three",
		"I suggest you rename the variable. It could be faster.",
		"",
		"plain text with no markers",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		for _, s := range ExtractSuggestions(raw) {
			if s == "" {
				t.Fatal("extracted an empty suggestion")
			}
		}
	})
}
