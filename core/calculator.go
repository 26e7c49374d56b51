package core

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/huangsam/devflow/core/lang"
	"github.com/huangsam/devflow/internal/contract"
	"github.com/huangsam/devflow/schema"
)

// ParseError reports content that could not be parsed as valid source for its
// declared language. It never aborts a run; callers convert it to a partial
// result and bump the error counter.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Calculator derives FileMetrics from file content. It is pure with respect
// to the file system; content is always passed in.
//
// Complexity convention: +1 per branching construct (if, while, for, loop),
// with match contributing one unit per arm, recursing into nested blocks and
// closures. There is no implicit per-function floor. The same convention is
// applied by the line heuristic for languages without an AST grammar.
type Calculator struct {
	patterns    []SecurityPattern
	minSeverity schema.Severity
}

// NewCalculator compiles the configured security patterns into a calculator.
func NewCalculator(cfg *contract.Config) (*Calculator, error) {
	patterns, err := CompileSecurityPatterns(cfg.SecurityPatterns)
	if err != nil {
		return nil, err
	}
	return &Calculator{patterns: patterns, minSeverity: cfg.MinSeverity}, nil
}

// Calculate produces the metrics for one file. Returns a *ParseError when the
// content is not valid source for its language.
func (c *Calculator) Calculate(ctx context.Context, relPath string, content []byte, modTime time.Time) (schema.FileMetrics, error) {
	language := lang.Detect(filepath.Ext(relPath))
	profile := lang.ProfileFor(language)
	lines := strings.Split(string(content), "\n")

	metrics := schema.FileMetrics{
		Path:         relPath,
		Language:     language,
		SizeBytes:    int64(len(content)),
		LastModified: modTime,
	}
	metrics.LinesOfCode, metrics.BlankLines, metrics.CommentLines = classifyLines(lines, profile)
	metrics.Dependencies = extractDependencies(language, profile, lines)
	metrics.Findings = ScanSecurity(lines, c.patterns, c.minSeverity)

	if language == schema.LangRust {
		complexity, err := rustComplexity(ctx, content)
		if err != nil {
			return schema.FileMetrics{}, &ParseError{Path: relPath, Err: err}
		}
		metrics.Complexity = complexity
	} else {
		metrics.Complexity = heuristicComplexity(lines, profile)
	}

	return metrics, nil
}

// classifyLines splits lines into code, blank and comment counts. A line is
// blank if it trims to empty, comment if its trimmed form starts with a
// comment marker or sits inside a block comment, and code otherwise.
func classifyLines(lines []string, profile *lang.Profile) (loc, blank, comment int) {
	inBlock := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case inBlock:
			comment++
			if profile.BlockCommentClose != "" && strings.Contains(trimmed, profile.BlockCommentClose) {
				inBlock = false
			}
		case trimmed == "":
			blank++
		case isCommentStart(trimmed, profile):
			comment++
			if profile.BlockCommentOpen != "" && strings.HasPrefix(trimmed, profile.BlockCommentOpen) &&
				!strings.Contains(trimmed[len(profile.BlockCommentOpen):], profile.BlockCommentClose) {
				inBlock = true
			}
		default:
			loc++
		}
	}
	return loc, blank, comment
}

func isCommentStart(trimmed string, profile *lang.Profile) bool {
	for _, marker := range profile.LineComments {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return profile.BlockCommentOpen != "" && strings.HasPrefix(trimmed, profile.BlockCommentOpen)
}

// rustComplexity parses Rust content and accumulates the branch count over
// the whole tree, including nested blocks and closures.
func rustComplexity(ctx context.Context, content []byte) (float64, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(rust.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return 0, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return 0, fmt.Errorf("syntax error in source")
	}
	return countRustBranches(root), nil
}

func countRustBranches(n *sitter.Node) float64 {
	var total float64
	switch n.Type() {
	case "if_expression", "while_expression", "for_expression", "loop_expression":
		total++
	case "match_arm":
		// One unit per arm, reflecting per-path branching.
		total++
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		total += countRustBranches(n.NamedChild(i))
	}
	return total
}

// heuristicComplexity counts branch keywords on code lines for languages
// without an AST grammar.
func heuristicComplexity(lines []string, profile *lang.Profile) float64 {
	re := profile.BranchPattern()
	if re == nil {
		return 0
	}
	var total float64
	inBlock := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if inBlock {
			if profile.BlockCommentClose != "" && strings.Contains(trimmed, profile.BlockCommentClose) {
				inBlock = false
			}
			continue
		}
		if trimmed == "" || isCommentStart(trimmed, profile) {
			if profile.BlockCommentOpen != "" && strings.HasPrefix(trimmed, profile.BlockCommentOpen) &&
				!strings.Contains(trimmed[len(profile.BlockCommentOpen):], profile.BlockCommentClose) {
				inBlock = true
			}
			continue
		}
		total += float64(len(re.FindAllString(trimmed, -1)))
	}
	return total
}

// extractDependencies collects the first path segment of each import-style
// statement, deduplicated and sorted lexicographically for determinism.
func extractDependencies(language schema.Language, profile *lang.Profile, lines []string) []string {
	seen := make(map[string]struct{})
	inGoImportBlock := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isCommentStart(trimmed, profile) {
			continue
		}

		// Go import blocks list one quoted path per line.
		if language == schema.LangGo {
			if inGoImportBlock {
				if trimmed == ")" {
					inGoImportBlock = false
					continue
				}
				if name := firstSegment(unquoteModule(trimmed), profile.PathSeparators); name != "" {
					seen[name] = struct{}{}
				}
				continue
			}
			if strings.HasPrefix(trimmed, "import (") {
				inGoImportBlock = true
				continue
			}
		}

		for _, prefix := range profile.ImportPrefixes {
			if !strings.HasPrefix(trimmed, prefix) {
				continue
			}
			rest := strings.TrimSpace(trimmed[len(prefix):])
			for _, token := range splitImportTargets(language, rest) {
				if name := firstSegment(token, profile.PathSeparators); name != "" {
					seen[name] = struct{}{}
				}
			}
			break
		}

		// require('x') can appear mid-line in JS and TS.
		if language == schema.LangJavaScript || language == schema.LangTypeScript {
			for _, m := range requireRe.FindAllStringSubmatch(trimmed, -1) {
				if name := firstSegment(m[1], profile.PathSeparators); name != "" {
					seen[name] = struct{}{}
				}
			}
		}
	}

	if len(seen) == 0 {
		return nil
	}
	deps := make([]string, 0, len(seen))
	for name := range seen {
		deps = append(deps, name)
	}
	sort.Strings(deps)
	return deps
}

var requireRe = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)

// splitImportTargets isolates the module tokens from the remainder of an
// import statement.
func splitImportTargets(language schema.Language, rest string) []string {
	switch language {
	case schema.LangPython:
		// "import a, b as c" and "from a.b import c"
		rest = strings.TrimSuffix(rest, ":")
		if i := strings.Index(rest, " import "); i >= 0 {
			rest = rest[:i]
		}
		parts := strings.Split(rest, ",")
		targets := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if i := strings.Index(p, " as "); i >= 0 {
				p = p[:i]
			}
			if p != "" {
				targets = append(targets, p)
			}
		}
		return targets
	case schema.LangC, schema.LangCpp:
		// <stdio.h> or "local/header.h"
		rest = strings.Trim(rest, "<>\"")
		return []string{rest}
	case schema.LangRust:
		rest = strings.TrimSuffix(rest, ";")
		if i := strings.IndexAny(rest, " {"); i >= 0 {
			rest = rest[:i]
		}
		return []string{rest}
	default:
		// Quoted module path somewhere in the statement, or a bare token.
		if q := unquoteModule(rest); q != rest {
			return []string{q}
		}
		rest = strings.TrimSuffix(rest, ";")
		if i := strings.IndexAny(rest, " ;("); i >= 0 {
			rest = rest[:i]
		}
		return []string{rest}
	}
}

// unquoteModule extracts the first single- or double-quoted token, or returns
// the input unchanged when there is none.
func unquoteModule(s string) string {
	for _, q := range []byte{'"', '\''} {
		start := strings.IndexByte(s, q)
		if start < 0 {
			continue
		}
		end := strings.IndexByte(s[start+1:], q)
		if end < 0 {
			continue
		}
		return s[start+1 : start+1+end]
	}
	return s
}

// firstSegment returns the first path segment of a module token.
func firstSegment(token string, separators []string) string {
	token = strings.TrimSpace(strings.Trim(token, `"';`))
	if token == "" {
		return ""
	}
	for _, sep := range separators {
		if i := strings.Index(token, sep); i >= 0 {
			token = token[:i]
		}
	}
	switch token {
	case "crate", "self", "super", ".", "..":
		return ""
	}
	return token
}
