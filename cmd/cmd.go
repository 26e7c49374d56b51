// Package cmd defines the command-line interface for devflow.
package cmd

import (
	"github.com/huangsam/devflow/internal/contract"
	"github.com/huangsam/devflow/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(securityCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(historyCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().Bool("detail", false, "Print per-file metadata (blank lines, comments, dependencies)")
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated list of path prefixes or patterns to ignore")
	rootCmd.PersistentFlags().Int64("max-file-size", contract.DefaultMaxFileSize, "Maximum file size in bytes to analyze")
	rootCmd.PersistentFlags().String("min-severity", string(schema.SeverityLow), "Minimum severity for findings: low or medium or high or critical")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("history-backend", string(schema.NoneBackend), "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emojis in output headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")

	// AI review flags are persistent so both 'analyze' and 'mcp' accept them.
	rootCmd.PersistentFlags().Bool("ai", false, "Enable AI code review for analyzed files")
	rootCmd.PersistentFlags().String("ai-model", contract.DefaultAIModel, "Model name for the AI reviewer")
	rootCmd.PersistentFlags().String("ai-api-key", "", "API key for the AI reviewer (prefer DEVFLOW_AI_API_KEY)")
	rootCmd.PersistentFlags().String("ai-base-url", "", "Optional base URL override for OpenAI-compatible endpoints")
	rootCmd.PersistentFlags().Int("ai-max-tokens", contract.DefaultAIMaxTokens, "Token budget per AI review request")
	rootCmd.PersistentFlags().Int64("ai-concurrency", contract.DefaultAIConcurrency, "Maximum concurrent AI review requests")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
