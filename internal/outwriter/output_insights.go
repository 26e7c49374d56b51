package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/huangsam/devflow/internal/contract"
	"github.com/huangsam/devflow/internal/parquet"
	"github.com/huangsam/devflow/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintInsights outputs the project insights report, dispatching based on the
// output format configured.
func PrintInsights(insights *schema.ProjectInsights, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeInsightsJSONResults(insights, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeInsightsCSVResults(insights, cfg, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeInsightsParquetResults(insights, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeInsightsTable(insights, cfg, fmtFloat, intFmt, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeInsightsJSONResults handles opening the file and calling the JSON writer.
func writeInsightsJSONResults(insights *schema.ProjectInsights, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, insights)
	}, "Wrote JSON")
}

// writeInsightsCSVResults handles opening the file and calling the CSV writer.
func writeInsightsCSVResults(insights *schema.ProjectInsights, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := []string{
			"rank",
			"file",
			"language",
			"lines_of_code",
			"blank_lines",
			"comment_lines",
			"complexity",
			"label",
			"dependencies",
			"finding_count",
			"size_kb",
			"last_modified",
		}
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			return writeCSVRowsForInsights(csvWriter, insights, fmtFloat, intFmt)
		})
	}, "Wrote CSV")
}

// writeInsightsParquetResults exports the per-file metrics as a Parquet file.
// Parquet is a binary format, so an explicit output file is required.
func writeInsightsParquetResults(insights *schema.ProjectInsights, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}
	rows := parquet.ConvertInsights(insights)
	if err := parquet.WriteInsightsParquet(rows, cfg.OutputFile); err != nil {
		return err
	}
	fmt.Printf("Exported %d file records to: %s\n", len(rows), cfg.OutputFile)
	return nil
}

// writeInsightsTable generates and writes the human-readable report.
func writeInsightsTable(insights *schema.ProjectInsights, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, writer io.Writer) error {
	// 1. Project summary
	headerLine(writer, "📊", "Project Summary", cfg.UseEmojis)
	fmt.Fprintf(writer, "Files analyzed: %d\n", insights.FilesAnalyzed)
	fmt.Fprintf(writer, "Total lines of code: %d\n", insights.TotalLines)
	fmt.Fprintf(writer, "Average complexity: %s\n", fmtFloat(insights.AverageComplexity()))
	fmt.Fprintf(writer, "Security findings: %d\n", len(insights.SecurityFindings))
	if insights.ErrorCount > 0 {
		fmt.Fprintf(writer, "Errors: %d\n", insights.ErrorCount)
	}
	fmt.Fprintf(writer, "Languages: %s\n\n", formatLanguageDistribution(insights.LanguageDistribution))

	// 2. Table of the most complex files
	headerLine(writer, "🧩", "Most Complex Files", cfg.UseEmojis)
	table := tablewriter.NewWriter(writer)

	headers := []string{"Rank", "Path", "Language", "LOC", "Complexity", "Label"}
	if cfg.Detail {
		headers = append(headers, "Blank", "Comment", "Deps", "Findings")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	var data [][]string
	files := insights.TopComplexFiles(cfg.ResultLimit)
	for _, f := range files {
		row := []string{
			strconv.Itoa(f.Rank),
			contract.TruncatePath(f.Path, GetMaxTablePathWidth(cfg)),
			string(f.Language),
			fmt.Sprintf(intFmt, f.LinesOfCode),
			fmtFloat(f.Complexity),
			contract.GetColorComplexityLabel(f.Complexity),
		}
		if cfg.Detail {
			row = append(
				row,
				fmt.Sprintf(intFmt, f.BlankLines),
				fmt.Sprintf(intFmt, f.CommentLines),
				fmt.Sprintf(intFmt, len(f.Dependencies)),
				fmt.Sprintf(intFmt, len(f.Findings)),
			)
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Showing top %d of %d files\n", len(files), insights.FilesAnalyzed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Analysis completed in %v with %d workers. History backend: %s\n", duration, cfg.Workers, cfg.HistoryBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVRowsForInsights writes one CSV row per analyzed file, sorted by
// descending complexity to match the table view.
func writeCSVRowsForInsights(w *csv.Writer, insights *schema.ProjectInsights, fmtFloat func(float64) string, intFmt string) error {
	files := insights.TopComplexFiles(0) // No limit for CSV exports
	for _, f := range files {
		rec := []string{
			strconv.Itoa(f.Rank),
			f.Path,
			string(f.Language),
			fmt.Sprintf(intFmt, f.LinesOfCode),
			fmt.Sprintf(intFmt, f.BlankLines),
			fmt.Sprintf(intFmt, f.CommentLines),
			fmtFloat(f.Complexity),
			f.Label,
			fmt.Sprintf(intFmt, len(f.Dependencies)),
			fmt.Sprintf(intFmt, len(f.Findings)),
			fmtFloat(float64(f.SizeBytes) / 1024.0),
			f.LastModified.Format(contract.DateTimeFormat),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// formatLanguageDistribution renders the language histogram in descending
// count order, ties broken by name.
func formatLanguageDistribution(dist map[schema.Language]int) string {
	if len(dist) == 0 {
		return "none"
	}
	type langCount struct {
		lang  schema.Language
		count int
	}
	counts := make([]langCount, 0, len(dist))
	for lang, count := range dist {
		counts = append(counts, langCount{lang, count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].lang < counts[j].lang
	})
	parts := make([]string, len(counts))
	for i, lc := range counts {
		parts[i] = fmt.Sprintf("%s (%d)", lc.lang, lc.count)
	}
	result := parts[0]
	for _, p := range parts[1:] {
		result += ", " + p
	}
	return result
}
