package cmd

import (
	"github.com/huangsam/devflow/core"
	"github.com/huangsam/devflow/internal/contract"
	"github.com/spf13/cobra"
)

// analyzeCmd performs full project analysis.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [root-path]",
	Short: "Analyze all source files and rank them by complexity.",
	Long: `Scan every source file under the root concurrently and compute per-file metrics.

For each file this computes:
- Line classification (code, blank, comment)
- A branch-based complexity estimate (syntax-aware for Rust)
- The list of imported modules
- Security findings from pattern scanning

Results aggregate into a project snapshot that ranks files from most to
least complex, with an optional AI review per file.

Examples:
  # Analyze the current directory
  devflow analyze

  # Analyze another project with more detail
  devflow analyze ../myproject --detail --limit 50

  # Include AI review (needs DEVFLOW_AI_API_KEY)
  devflow analyze --ai

  # Export per-file metrics for tracking
  devflow analyze --output csv --output-file metrics.csv

  # Record the run for trend tracking
  devflow analyze --history-backend sqlite`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg, aiProvider, historyManager); err != nil {
			contract.LogFatal("Cannot run analysis", err)
		}
	},
}
