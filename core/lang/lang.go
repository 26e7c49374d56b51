// Package lang holds per-language syntax profiles used by the metrics
// calculator: comment markers, import statement forms and branch keywords.
package lang

import (
	"regexp"
	"strings"
	"sync"

	"github.com/huangsam/devflow/schema"
)

// Profile describes how one language is tokenized for line classification,
// dependency extraction and heuristic complexity counting.
type Profile struct {
	Language          schema.Language
	LineComments      []string // markers that open a line comment
	BlockCommentOpen  string   // empty when the language has no block comments
	BlockCommentClose string
	ImportPrefixes    []string // statement forms that declare a dependency
	PathSeparators    []string // separators between path segments in imports
	BranchKeywords    []string // keywords counted by the line heuristic

	branchOnce sync.Once
	branchRe   *regexp.Regexp
}

// BranchPattern returns a compiled word-boundary pattern matching any of the
// profile's branch keywords. Returns nil when the profile has none.
func (p *Profile) BranchPattern() *regexp.Regexp {
	p.branchOnce.Do(func() {
		if len(p.BranchKeywords) == 0 {
			return
		}
		p.branchRe = regexp.MustCompile(`\b(` + strings.Join(p.BranchKeywords, "|") + `)\b`)
	})
	return p.branchRe
}

var profiles = map[schema.Language]*Profile{
	schema.LangRust: {
		Language:          schema.LangRust,
		LineComments:      []string{"//"},
		BlockCommentOpen:  "/*",
		BlockCommentClose: "*/",
		ImportPrefixes:    []string{"use ", "extern crate "},
		PathSeparators:    []string{"::"},
		BranchKeywords:    []string{"if", "while", "for", "loop"},
	},
	schema.LangGo: {
		Language:          schema.LangGo,
		LineComments:      []string{"//"},
		BlockCommentOpen:  "/*",
		BlockCommentClose: "*/",
		ImportPrefixes:    []string{"import "},
		PathSeparators:    []string{"/"},
		BranchKeywords:    []string{"if", "for", "case", "select"},
	},
	schema.LangPython: {
		Language:       schema.LangPython,
		LineComments:   []string{"#"},
		ImportPrefixes: []string{"import ", "from "},
		PathSeparators: []string{"."},
		BranchKeywords: []string{"if", "elif", "for", "while", "except"},
	},
	schema.LangJavaScript: {
		Language:          schema.LangJavaScript,
		LineComments:      []string{"//"},
		BlockCommentOpen:  "/*",
		BlockCommentClose: "*/",
		ImportPrefixes:    []string{"import ", "export "},
		PathSeparators:    []string{"/"},
		BranchKeywords:    []string{"if", "for", "while", "case", "catch"},
	},
	schema.LangTypeScript: {
		Language:          schema.LangTypeScript,
		LineComments:      []string{"//"},
		BlockCommentOpen:  "/*",
		BlockCommentClose: "*/",
		ImportPrefixes:    []string{"import ", "export "},
		PathSeparators:    []string{"/"},
		BranchKeywords:    []string{"if", "for", "while", "case", "catch"},
	},
	schema.LangJava: {
		Language:          schema.LangJava,
		LineComments:      []string{"//"},
		BlockCommentOpen:  "/*",
		BlockCommentClose: "*/",
		ImportPrefixes:    []string{"import "},
		PathSeparators:    []string{"."},
		BranchKeywords:    []string{"if", "for", "while", "case", "catch"},
	},
	schema.LangC: {
		Language:          schema.LangC,
		LineComments:      []string{"//"},
		BlockCommentOpen:  "/*",
		BlockCommentClose: "*/",
		ImportPrefixes:    []string{"#include "},
		PathSeparators:    []string{"/"},
		BranchKeywords:    []string{"if", "for", "while", "case"},
	},
	schema.LangCpp: {
		Language:          schema.LangCpp,
		LineComments:      []string{"//"},
		BlockCommentOpen:  "/*",
		BlockCommentClose: "*/",
		ImportPrefixes:    []string{"#include "},
		PathSeparators:    []string{"/"},
		BranchKeywords:    []string{"if", "for", "while", "case", "catch"},
	},
	schema.LangRuby: {
		Language:       schema.LangRuby,
		LineComments:   []string{"#"},
		ImportPrefixes: []string{"require ", "require_relative "},
		PathSeparators: []string{"/"},
		BranchKeywords: []string{"if", "elsif", "unless", "while", "until", "when", "rescue"},
	},
	schema.LangPHP: {
		Language:          schema.LangPHP,
		LineComments:      []string{"//", "#"},
		BlockCommentOpen:  "/*",
		BlockCommentClose: "*/",
		ImportPrefixes:    []string{"use ", "require ", "include "},
		PathSeparators:    []string{"\\"},
		BranchKeywords:    []string{"if", "elseif", "for", "foreach", "while", "case", "catch"},
	},
	schema.LangShell: {
		Language:       schema.LangShell,
		LineComments:   []string{"#"},
		ImportPrefixes: []string{"source "},
		PathSeparators: []string{"/"},
		BranchKeywords: []string{"if", "elif", "for", "while", "until", "case"},
	},
	schema.LangUnknown: {
		Language:     schema.LangUnknown,
		LineComments: []string{"//", "#"},
	},
}

var extensions = map[string]schema.Language{
	".rs":   schema.LangRust,
	".go":   schema.LangGo,
	".py":   schema.LangPython,
	".js":   schema.LangJavaScript,
	".jsx":  schema.LangJavaScript,
	".mjs":  schema.LangJavaScript,
	".ts":   schema.LangTypeScript,
	".tsx":  schema.LangTypeScript,
	".java": schema.LangJava,
	".c":    schema.LangC,
	".h":    schema.LangC,
	".cpp":  schema.LangCpp,
	".cc":   schema.LangCpp,
	".hpp":  schema.LangCpp,
	".rb":   schema.LangRuby,
	".php":  schema.LangPHP,
	".sh":   schema.LangShell,
	".bash": schema.LangShell,
}

// binaryExtensions are never worth decoding as source text.
var binaryExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".ico": {}, ".webp": {},
	".exe": {}, ".bin": {}, ".so": {}, ".dylib": {}, ".dll": {}, ".o": {}, ".a": {},
	".zip": {}, ".gz": {}, ".tar": {}, ".bz2": {}, ".xz": {}, ".7z": {},
	".pdf": {}, ".class": {}, ".wasm": {}, ".woff": {}, ".woff2": {}, ".ttf": {},
	".mp3": {}, ".mp4": {}, ".mov": {}, ".avi": {}, ".sqlite": {}, ".db": {},
}

// Detect returns the language for a file extension (including the dot).
// Unrecognized extensions map to LangUnknown.
func Detect(ext string) schema.Language {
	if l, ok := extensions[strings.ToLower(ext)]; ok {
		return l
	}
	return schema.LangUnknown
}

// ProfileFor returns the syntax profile for a language. Unknown languages get
// a minimal profile that still classifies common comment markers.
func ProfileFor(l schema.Language) *Profile {
	if p, ok := profiles[l]; ok {
		return p
	}
	return profiles[schema.LangUnknown]
}

// IsBinaryExt reports whether the extension marks a known binary format.
func IsBinaryExt(ext string) bool {
	_, ok := binaryExtensions[strings.ToLower(ext)]
	return ok
}
