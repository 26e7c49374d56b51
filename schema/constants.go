package schema

// Custom string types for type safety.
type (
	// Severity classifies a security finding.
	Severity string

	// FindingCategory names the class of a security finding.
	FindingCategory string

	// OutputMode represents the format of the output.
	OutputMode string

	// Language represents a detected source language.
	Language string

	// SkipReason explains why a file was excluded from analysis.
	SkipReason string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string
)

// All severities supported, lowest to highest.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// All finding categories produced by the default pattern set.
const (
	CategoryCommandInjection   FindingCategory = "command_injection"
	CategoryHardcodedSecret    FindingCategory = "hardcoded_secret"
	CategorySQLInjection       FindingCategory = "sql_injection"
	CategoryUnsafeDeserialize  FindingCategory = "unsafe_deserialization"
	CategoryXSS                FindingCategory = "xss"
	CategoryRawFileOperation   FindingCategory = "raw_file_operation"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All languages supported. LangUnknown files are analyzed with line
// heuristics only.
const (
	LangRust       Language = "rust"
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangJava       Language = "java"
	LangC          Language = "c"
	LangCpp        Language = "cpp"
	LangRuby       Language = "ruby"
	LangPHP        Language = "php"
	LangShell      Language = "shell"
	LangUnknown    Language = "unknown"
)

// All skip reasons produced by the classifier.
const (
	SkipTooLarge SkipReason = "too-large"
	SkipIgnored  SkipReason = "ignored"
	SkipBinary   SkipReason = "binary-ext"
	SkipNonUTF8  SkipReason = "non-utf8"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// AllSeverities lists severities in ascending order.
var AllSeverities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidSeverities lists all valid severities.
var ValidSeverities = map[Severity]struct{}{
	SeverityLow:      {},
	SeverityMedium:   {},
	SeverityHigh:     {},
	SeverityCritical: {},
}

// ValidHistoryBackends lists all valid history backends.
var ValidHistoryBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the ordinal position of a severity. Unknown severities rank
// below SeverityLow.
func (s Severity) Rank() int {
	return severityRank[s]
}

// AtLeast reports whether s is at or above min.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}
