package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/devflow/schema"
)

// Default values for configuration.
const (
	DefaultMaxFileSize   = 1 << 20 // 1 MiB
	DefaultResultLimit   = 25
	MaxResultLimit       = 1000
	DefaultPrecision     = 1
	DefaultAIConcurrency = 3
	DefaultAIModel       = "gpt-4o-mini"
	DefaultAIMaxTokens   = 1024
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool   // Whether profiling is enabled
	Prefix  string // File prefix for profile output files
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// SecurityPatternRaw holds one user-supplied security pattern from the YAML
// config file. Severity and category fall back to defaults when omitted.
type SecurityPatternRaw struct {
	Pattern     string `mapstructure:"pattern"`
	Severity    string `mapstructure:"severity"`
	Category    string `mapstructure:"category"`
	Description string `mapstructure:"description"`
}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	RootPath    string
	MaxFileSize int64
	Excludes    []string
	MinSeverity schema.Severity
	Workers     int
	ResultLimit int
	Detail      bool
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)

	AIEnabled     bool
	AIModel       string
	AIAPIKey      string // Please use env var as this is plaintext
	AIBaseURL     string
	AIMaxTokens   int
	AIConcurrency int64

	// SecurityPatterns are user additions layered on top of the built-in set.
	SecurityPatterns []SecurityPatternRaw

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RootPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Exclude          string `mapstructure:"exclude"`
	MaxFileSize      int64  `mapstructure:"max-file-size"`
	MinSeverity      string `mapstructure:"min-severity"`
	Workers          int    `mapstructure:"workers"`
	Limit            int    `mapstructure:"limit"`
	Precision        int    `mapstructure:"precision"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Emoji            string `mapstructure:"emoji"`
	Color            string `mapstructure:"color"`

	// --- Fields from analyzeCmd.Flags() ---
	Detail        bool    `mapstructure:"detail"`
	AI            bool    `mapstructure:"ai"`
	AIModel       string  `mapstructure:"ai-model"`
	AIAPIKey      string  `mapstructure:"ai-api-key"`
	AIBaseURL     string  `mapstructure:"ai-base-url"`
	AIMaxTokens   int     `mapstructure:"ai-max-tokens"`
	AIConcurrency int64   `mapstructure:"ai-concurrency"`

	// --- Custom security patterns from config file ---
	SecurityPatterns []SecurityPatternRaw `mapstructure:"security_patterns"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Excludes != nil {
		clone.Excludes = make([]string, len(c.Excludes))
		copy(clone.Excludes, c.Excludes)
	}
	if c.SecurityPatterns != nil {
		clone.SecurityPatterns = make([]SecurityPatternRaw, len(c.SecurityPatterns))
		copy(clone.SecurityPatterns, c.SecurityPatterns)
	}
	return &clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processAIInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	if err := resolveRootPath(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection
// strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Width = input.Width
	cfg.SecurityPatterns = input.SecurityPatterns

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. MaxFileSize Validation ---
	if input.MaxFileSize <= 0 {
		return fmt.Errorf("max-file-size must be greater than 0 (received %d)", input.MaxFileSize)
	}
	cfg.MaxFileSize = input.MaxFileSize

	// --- 4. MinSeverity Validation ---
	cfg.MinSeverity = schema.Severity(strings.ToLower(input.MinSeverity))
	if _, ok := schema.ValidSeverities[cfg.MinSeverity]; !ok {
		return fmt.Errorf("invalid min severity '%s'. must be low, medium, high, critical", input.MinSeverity)
	}

	// --- 5. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}

	// --- 6. Excludes Processing ---
	defaults := []string{
		"Cargo.lock", "go.sum", "package-lock.json", "yarn.lock", "pnpm-lock.yaml", "composer.lock", "uv.lock",
		".min.js", ".min.css",
		".jpg", ".jpeg", ".png", ".gif", ".svg", ".ico", ".mp4", ".mov", ".webm", ".mp3", ".ogg", ".pdf", ".webp",
		".DS_Store", ".gitignore",
	}
	cfg.Excludes = defaults // Set defaults first

	if input.Exclude != "" {
		parts := strings.SplitSeq(input.Exclude, ",")
		for p := range parts {
			trimmedP := strings.TrimSpace(p)
			if trimmedP != "" {
				cfg.Excludes = append(cfg.Excludes, trimmedP)
			}
		}
	}

	return nil
}

// processAIInputs handles the AI reviewer settings.
func processAIInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.AIEnabled = input.AI
	cfg.AIModel = strings.TrimSpace(input.AIModel)
	cfg.AIAPIKey = strings.TrimSpace(input.AIAPIKey)
	cfg.AIBaseURL = strings.TrimSpace(input.AIBaseURL)
	cfg.AIMaxTokens = input.AIMaxTokens
	cfg.AIConcurrency = input.AIConcurrency

	if !cfg.AIEnabled {
		return nil
	}

	if cfg.AIAPIKey == "" {
		return fmt.Errorf("ai-api-key is required when --ai is enabled (set DEVFLOW_AI_API_KEY)")
	}
	if cfg.AIModel == "" {
		cfg.AIModel = DefaultAIModel
	}
	if cfg.AIMaxTokens <= 0 {
		cfg.AIMaxTokens = DefaultAIMaxTokens
	}
	if cfg.AIConcurrency <= 0 {
		return fmt.Errorf("ai-concurrency must be greater than 0 (received %d)", cfg.AIConcurrency)
	}

	return nil
}

// validateBackendConfig validates the history backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if _, ok := schema.ValidHistoryBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// resolveRootPath resolves the analysis root to an absolute, existing path.
func resolveRootPath(cfg *Config, input *ConfigRawInput) error {
	searchPath := input.RootPathStr
	if searchPath == "" {
		searchPath = "."
	}
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	if _, err := os.Stat(absSearchPath); err != nil {
		return fmt.Errorf("invalid root path %q: %w", searchPath, err)
	}

	cfg.RootPath = absSearchPath
	return nil
}
