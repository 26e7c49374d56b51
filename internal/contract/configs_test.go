package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/devflow/schema"
)

func validInput(t *testing.T) *ConfigRawInput {
	t.Helper()
	return &ConfigRawInput{
		RootPathStr:    t.TempDir(),
		Limit:          25,
		Workers:        4,
		MaxFileSize:    1 << 20,
		MinSeverity:    "low",
		Precision:      1,
		Output:         "text",
		HistoryBackend: "none",
		Emoji:          "yes",
		Color:          "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	t.Run("success minimal", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)

		err := ProcessAndValidate(cfg, input)
		require.NoError(t, err, "ProcessAndValidate() failed unexpectedly: %v", err)
		assert.Equal(t, 25, cfg.ResultLimit)
		assert.Equal(t, 4, cfg.Workers)
		assert.Equal(t, schema.SeverityLow, cfg.MinSeverity)
		assert.Equal(t, schema.TextOut, cfg.Output)
		assert.Equal(t, schema.NoneBackend, cfg.HistoryBackend)
		assert.True(t, cfg.UseEmojis)
		assert.True(t, cfg.UseColors)
		assert.NotEmpty(t, cfg.Excludes, "defaults should always be present")
		assert.NotEmpty(t, cfg.RootPath)
	})

	t.Run("failure invalid limit", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.Limit = 0

		err := ProcessAndValidate(cfg, input)
		require.Error(t, err)
	})

	t.Run("failure limit over cap", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.Limit = MaxResultLimit + 1

		err := ProcessAndValidate(cfg, input)
		require.Error(t, err)
	})

	t.Run("failure invalid workers", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.Workers = 0

		err := ProcessAndValidate(cfg, input)
		require.Error(t, err)
	})

	t.Run("failure invalid severity", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.MinSeverity = "extreme"

		err := ProcessAndValidate(cfg, input)
		require.Error(t, err)
	})

	t.Run("severity is case-insensitive", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.MinSeverity = "HIGH"

		err := ProcessAndValidate(cfg, input)
		require.NoError(t, err)
		assert.Equal(t, schema.SeverityHigh, cfg.MinSeverity)
	})

	t.Run("failure invalid output", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.Output = "xml"

		err := ProcessAndValidate(cfg, input)
		require.Error(t, err)
	})

	t.Run("failure invalid precision", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.Precision = 3

		err := ProcessAndValidate(cfg, input)
		require.Error(t, err)
	})

	t.Run("failure invalid emoji flag", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.Emoji = "maybe"

		err := ProcessAndValidate(cfg, input)
		require.Error(t, err)
	})

	t.Run("failure missing root path", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.RootPathStr = "/nonexistent/devflow/root"

		err := ProcessAndValidate(cfg, input)
		require.Error(t, err)
	})

	t.Run("excludes merge user patterns", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.Exclude = "vendor/, *.min.js , "

		err := ProcessAndValidate(cfg, input)
		require.NoError(t, err)
		assert.Contains(t, cfg.Excludes, "vendor/")
		assert.Contains(t, cfg.Excludes, "*.min.js")
	})
}

func TestProcessAIInputs(t *testing.T) {
	t.Run("disabled skips validation", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.AI = false

		err := ProcessAndValidate(cfg, input)
		require.NoError(t, err)
		assert.False(t, cfg.AIEnabled)
	})

	t.Run("enabled requires api key", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.AI = true
		input.AIAPIKey = ""

		err := ProcessAndValidate(cfg, input)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ai-api-key")
	})

	t.Run("enabled applies defaults", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.AI = true
		input.AIAPIKey = "sk-test"
		input.AIConcurrency = 3

		err := ProcessAndValidate(cfg, input)
		require.NoError(t, err)
		assert.Equal(t, DefaultAIModel, cfg.AIModel)
		assert.Equal(t, DefaultAIMaxTokens, cfg.AIMaxTokens)
	})

	t.Run("enabled rejects zero concurrency", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.AI = true
		input.AIAPIKey = "sk-test"
		input.AIConcurrency = 0

		err := ProcessAndValidate(cfg, input)
		require.Error(t, err)
	})
}

func TestValidateBackendConfig(t *testing.T) {
	t.Run("failure unknown backend", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.HistoryBackend = "oracle"

		err := ProcessAndValidate(cfg, input)
		require.Error(t, err)
	})

	t.Run("mysql requires connection string", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.HistoryBackend = "mysql"

		err := ProcessAndValidate(cfg, input)
		require.Error(t, err)
	})

	t.Run("sqlite needs no connection string", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.HistoryBackend = "sqlite"

		err := ProcessAndValidate(cfg, input)
		require.NoError(t, err)
		assert.Equal(t, schema.SQLiteBackend, cfg.HistoryBackend)
	})
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.DatabaseBackend
		connStr     string
		expectError bool
	}{
		{"none backend", schema.NoneBackend, "", false},
		{"sqlite backend", schema.SQLiteBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "root:pw@tcp(localhost:3306)/devflow", false},
		{"mysql missing tcp", schema.MySQLBackend, "root:pw@localhost/devflow", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 dbname=devflow", false},
		{"postgres missing host", schema.PostgreSQLBackend, "port=5432 dbname=devflow", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost port=5432", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.expectError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{
		RootPath:         "/tmp/proj",
		Excludes:         []string{"vendor/"},
		SecurityPatterns: []SecurityPatternRaw{{Pattern: "md5"}},
	}

	clone := cfg.Clone()
	clone.Excludes[0] = "mutated"
	clone.SecurityPatterns[0].Pattern = "mutated"
	clone.RootPath = "/elsewhere"

	assert.Equal(t, "vendor/", cfg.Excludes[0], "clone must not share slices")
	assert.Equal(t, "md5", cfg.SecurityPatterns[0].Pattern)
	assert.Equal(t, "/tmp/proj", cfg.RootPath)
}

func TestProcessProfilingConfig(t *testing.T) {
	t.Run("empty prefix leaves profiling off", func(t *testing.T) {
		profile := &ProfileConfig{}
		require.NoError(t, ProcessProfilingConfig(profile, ""))
		assert.False(t, profile.Enabled)
	})

	t.Run("prefix enables profiling", func(t *testing.T) {
		profile := &ProfileConfig{}
		require.NoError(t, ProcessProfilingConfig(profile, "perf"))
		assert.True(t, profile.Enabled)
		assert.Equal(t, "perf", profile.Prefix)
	})
}
