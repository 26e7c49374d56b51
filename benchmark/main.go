// Package main provides a performance benchmarking tool for the Devflow CLI.
// It measures execution times across different project sizes and command types,
// running each test multiple times, treating the first successful run as cold
// and averaging the rest as warm, generating CSV output for performance
// analysis and documentation.
//
// Prerequisites:
// - devflow binary installed and available in PATH
// - Test projects cloned to the specified base directory
// - Projects: csv-parser, fd, git, kubernetes
//
// Usage: go run benchmark/main.go [project-base-dir]
//
//	project-base-dir: Directory containing test projects
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (cold run and average of warm runs).
type BenchmarkResult struct {
	Project  string
	Command  string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	ProjectBase  string
	Timeout      time.Duration
	Workers      int
	Runs         int
	TestProjects []string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [project-base-dir]\n", os.Args[0])
		os.Exit(1)
	}
	projectBase := os.Args[1]

	config := BenchmarkConfig{
		ProjectBase:  projectBase,
		Timeout:      5 * time.Minute,
		Workers:      14,
		Runs:         4,
		TestProjects: []string{"csv-parser", "fd", "git", "kubernetes"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the devflow binary and test projects exist
func checkPrerequisites(config BenchmarkConfig) error {
	// Check if devflow is available
	if _, err := exec.LookPath("devflow"); err != nil {
		return fmt.Errorf("devflow binary not found in PATH")
	}

	// Check if projects exist
	for _, project := range config.TestProjects {
		projectPath := filepath.Join(config.ProjectBase, project)
		if _, err := os.Stat(projectPath); os.IsNotExist(err) {
			return fmt.Errorf("project %s not found at %s", project, projectPath)
		}
	}

	return nil
}

// runBenchmarks executes all benchmark tests across configured projects
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d projects, %v timeout, %d workers, %d runs each\n",
		len(config.TestProjects), config.Timeout, config.Workers, config.Runs)

	for _, project := range config.TestProjects {
		fmt.Printf("Benchmarking %s\n", project)

		projectPath := filepath.Join(config.ProjectBase, project)

		// Full analysis
		result := runBenchmarkSuite(config, project, projectPath, "analyze", "full analysis")
		results = append(results, result)

		// Findings-only scan
		result = runBenchmarkSuite(config, project, projectPath, "security", "security scan")
		results = append(results, result)
	}

	return results
}

// runBenchmarkSuite runs the benchmark phases for one command
func runBenchmarkSuite(config BenchmarkConfig, project, projectPath, command, description string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, project)

	coldTime, times := runBenchmark(config, projectPath, command)

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	warmAvg := "TIMEOUT"
	if len(times) > 0 {
		var sum float64
		for _, t := range times {
			sum += t
		}
		warmAvg = fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", coldTimeStr, warmAvg)

	return BenchmarkResult{
		Project:  project,
		Command:  command,
		ColdTime: coldTimeStr,
		WarmTime: warmAvg,
	}
}

// runBenchmark executes a devflow command multiple times and returns the cold time and warm times
func runBenchmark(config BenchmarkConfig, projectPath, command string) (coldTime float64, warmTimes []float64) {
	args := []string{command, "--workers", fmt.Sprintf("%d", config.Workers)}

	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()

		cmd := exec.Command("devflow", args...)
		cmd.Dir = projectPath

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Analysis completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/devflow_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"project", "cmd", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Project, result.Command, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "analyze", "Full Analysis:")
	printCommandSummary(results, "security", "Security Scan:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-12s: Cold: %s, Warm: %s\n", result.Project, result.ColdTime, result.WarmTime)
		}
	}
}
