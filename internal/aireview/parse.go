package aireview

import (
	"regexp"
	"strings"

	"github.com/huangsam/devflow/schema"
)

// Keyword weights for confidence derivation. Confidence starts at a 0.5 base
// and each present signal adds its weight, clamped to [0,1].
var confidenceSignals = []struct {
	marker string
	weight float64
}{
	{"definitely", 0.2},
	{"likely", 0.15},
	{"possibly", 0.1},
	{"might", 0.05},
	{"```", 0.15}, // a code example is a strong signal
	{"specific", 0.1},
	{"recommend", 0.1},
	{"suggest", 0.1},
}

// hedgeKeywords mark sentences worth surfacing as suggestions when no list
// markers are present.
var hedgeKeywords = []string{"suggest", "recommend", "should", "could", "improve"}

var (
	bulletRe     = regexp.MustCompile(`^\s*[-*\x{2022}]\s+(.+)$`)
	numberedRe   = regexp.MustCompile(`^\s*\d+[.)]\s+(.+)$`)
	scoreRe      = regexp.MustCompile(`(?i)quality(?:\s+score)?\s*[:=]?\s*(\d{1,3})`)
	complexityRe = regexp.MustCompile(`(?i)complexity(?:\s+score)?\s*[:=]?\s*(\d{1,3})`)
)

// NormalizeInsight converts raw provider text into a structured insight.
func NormalizeInsight(raw string) *schema.AIInsight {
	suggestions := ExtractSuggestions(raw)
	insight := &schema.AIInsight{
		Summary:     extractSummary(raw),
		Suggestions: suggestions,
		Confidence:  DeriveConfidence(raw),
	}

	if score, ok := extractScore(scoreRe, raw); ok {
		insight.QualityScore = score
	}
	if score, ok := extractScore(complexityRe, raw); ok {
		insight.ComplexityScore = score
	}

	lower := func(s string) string { return strings.ToLower(s) }
	for _, s := range suggestions {
		ls := lower(s)
		switch {
		case strings.Contains(ls, "secur") || strings.Contains(ls, "vulnerab") ||
			strings.Contains(ls, "inject") || strings.Contains(ls, "sanitiz"):
			insight.SecurityRecommendations = append(insight.SecurityRecommendations, s)
		case strings.Contains(ls, "optim") || strings.Contains(ls, "perform") ||
			strings.Contains(ls, "alloc") || strings.Contains(ls, "cach"):
			insight.OptimizationSuggestions = append(insight.OptimizationSuggestions, s)
		}
	}
	return insight
}

// extractScore parses the first labeled 0-100 score matched by re, capped at
// 100.
func extractScore(re *regexp.Regexp, raw string) (float64, bool) {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	score := 0.0
	for _, c := range m[1] {
		score = score*10 + float64(c-'0')
	}
	if score > 100 {
		score = 100
	}
	return score, true
}

// ExtractSuggestions pulls suggestion items out of raw provider text.
// Bullet and numbered-list markers win; failing that, sentences containing a
// hedge keyword are used.
func ExtractSuggestions(raw string) []string {
	var suggestions []string
	for _, line := range strings.Split(raw, "\n") {
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			if item := strings.TrimSpace(m[1]); item != "" {
				suggestions = append(suggestions, item)
			}
			continue
		}
		if m := numberedRe.FindStringSubmatch(line); m != nil {
			if item := strings.TrimSpace(m[1]); item != "" {
				suggestions = append(suggestions, item)
			}
		}
	}
	if len(suggestions) > 0 {
		return suggestions
	}

	for _, sentence := range splitSentences(raw) {
		ls := strings.ToLower(sentence)
		for _, kw := range hedgeKeywords {
			if strings.Contains(ls, kw) {
				suggestions = append(suggestions, sentence)
				break
			}
		}
	}
	return suggestions
}

// DeriveConfidence computes the fixed weighted sum of keyword presence over
// the 0.5 base, clamped to [0,1].
func DeriveConfidence(raw string) float64 {
	confidence := 0.5
	lower := strings.ToLower(raw)
	for _, sig := range confidenceSignals {
		if strings.Contains(lower, sig.marker) {
			confidence += sig.weight
		}
	}
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

func extractSummary(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(strings.TrimLeft(line, "#*- "))
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func splitSentences(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			sentences = append(sentences, t)
		}
	}
	return sentences
}
