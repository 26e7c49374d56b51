package cmd

import (
	"github.com/huangsam/devflow/core"
	"github.com/huangsam/devflow/internal/contract"
	"github.com/spf13/cobra"
)

// securityCmd performs a findings-only scan.
var securityCmd = &cobra.Command{
	Use:   "security [root-path]",
	Short: "Scan source files for security anti-patterns.",
	Long: `Run the same concurrent scan as 'analyze' but report only security findings.

Detects patterns such as:
- Command injection sinks (eval, exec, system)
- Hardcoded secrets and credentials
- String-built SQL statements
- Unsafe deserialization
- DOM-based XSS sinks

Use --min-severity to cut noise, and add custom patterns through the
security_patterns section of .devflow.yaml.

Examples:
  # Show all findings
  devflow security

  # Only high and critical findings, with descriptions
  devflow security --min-severity high --detail

  # Export findings for triage
  devflow security --output csv --output-file findings.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSecurity(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run security scan", err)
		}
	},
}
