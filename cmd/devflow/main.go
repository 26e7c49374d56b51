// main is the entry point for the devflow CLI.
package main

import (
	"os"

	"github.com/huangsam/devflow/cmd"
	"github.com/huangsam/devflow/internal/contract"
	"github.com/huangsam/devflow/internal/history"
)

func main() {
	defer history.CloseHistory()

	err := cmd.Execute()

	if profErr := cmd.StopProfiling(); profErr != nil {
		contract.LogWarn("Failed to stop profiling", profErr)
	}

	if err != nil {
		contract.LogWarn("Command failed", err)
		history.CloseHistory()
		os.Exit(1)
	}
}
