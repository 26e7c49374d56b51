package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/huangsam/devflow/internal/contract"
	"github.com/huangsam/devflow/schema"
)

// SecurityPattern is one compiled heuristic applied line by line.
type SecurityPattern struct {
	Pattern     *regexp.Regexp
	Severity    schema.Severity
	Category    schema.FindingCategory
	Description string
}

// DefaultSecurityPatterns returns the built-in heuristic set. The patterns are
// intentionally coarse; they flag lines for review, they do not prove a
// vulnerability.
func DefaultSecurityPatterns() []SecurityPattern {
	return []SecurityPattern{
		{
			Pattern:     regexp.MustCompile(`(?i)\b(eval|exec|system|popen|shell_exec)\s*\(`),
			Severity:    schema.SeverityCritical,
			Category:    schema.CategoryCommandInjection,
			Description: "Possible command injection via dynamic execution",
		},
		{
			Pattern:     regexp.MustCompile(`(?i)\b(password|passwd|api_key|apikey|secret|token)\b\s*[:=]\s*["'][^"']+["']`),
			Severity:    schema.SeverityHigh,
			Category:    schema.CategoryHardcodedSecret,
			Description: "Hardcoded secret assigned to a literal value",
		},
		{
			Pattern:     regexp.MustCompile(`(?i)\b(select\s+.+\s+from|insert\s+into|update\s+.+\s+set|delete\s+from)\b.*["']`),
			Severity:    schema.SeverityHigh,
			Category:    schema.CategorySQLInjection,
			Description: "SQL statement built from string literals",
		},
		{
			Pattern:     regexp.MustCompile(`(?i)\b(unserialize|pickle\.loads|yaml\.load|marshal\.loads)\s*\(`),
			Severity:    schema.SeverityMedium,
			Category:    schema.CategoryUnsafeDeserialize,
			Description: "Unsafe deserialization of untrusted data",
		},
		{
			Pattern:     regexp.MustCompile(`(?i)(innerHTML|document\.write)\s*[(=]`),
			Severity:    schema.SeverityMedium,
			Category:    schema.CategoryXSS,
			Description: "Potential XSS sink writing raw HTML",
		},
		{
			Pattern:     regexp.MustCompile(`(?i)\b(unlink|rmdir|remove_file|os\.remove|fs\.unlinkSync)\s*\(`),
			Severity:    schema.SeverityLow,
			Category:    schema.CategoryRawFileOperation,
			Description: "Raw file deletion without an abstraction layer",
		},
	}
}

// CompileSecurityPatterns layers user-supplied patterns from the config file
// on top of the built-in set. An invalid regex fails the whole compile so that
// misconfiguration surfaces at startup, not mid-run.
func CompileSecurityPatterns(raw []contract.SecurityPatternRaw) ([]SecurityPattern, error) {
	patterns := DefaultSecurityPatterns()
	for _, r := range raw {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid security pattern %q: %w", r.Pattern, err)
		}
		severity := schema.Severity(strings.ToLower(r.Severity))
		if _, ok := schema.ValidSeverities[severity]; !ok {
			severity = schema.SeverityMedium
		}
		category := schema.FindingCategory(r.Category)
		if category == "" {
			category = "custom"
		}
		description := r.Description
		if description == "" {
			description = fmt.Sprintf("Matched custom pattern %q", r.Pattern)
		}
		patterns = append(patterns, SecurityPattern{
			Pattern:     re,
			Severity:    severity,
			Category:    category,
			Description: description,
		})
	}
	return patterns, nil
}

// ScanSecurity runs every pattern over every line and returns findings at or
// above the minimum severity, in scan order.
func ScanSecurity(lines []string, patterns []SecurityPattern, minSeverity schema.Severity) []schema.SecurityFinding {
	var findings []schema.SecurityFinding
	for i, line := range lines {
		for _, p := range patterns {
			if !p.Severity.AtLeast(minSeverity) {
				continue
			}
			if p.Pattern.MatchString(line) {
				findings = append(findings, schema.SecurityFinding{
					Severity:    p.Severity,
					Category:    p.Category,
					Description: p.Description,
					Line:        i + 1,
					Pattern:     p.Pattern.String(),
				})
			}
		}
	}
	return findings
}
