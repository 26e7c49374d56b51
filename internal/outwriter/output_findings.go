package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/devflow/internal/contract"
	"github.com/huangsam/devflow/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintFindings outputs the security findings report, dispatching based on
// the output format configured.
func PrintFindings(insights *schema.ProjectInsights, cfg *contract.Config, duration time.Duration) error {
	_, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeFindingsJSONResults(insights, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeFindingsCSVResults(insights, cfg, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		// Findings are nested, variable-length records; the columnar export
		// only covers per-file metrics
		return errors.New("parquet output is not supported for security findings")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFindingsTable(insights, cfg, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeFindingsJSONResults handles opening the file and calling the JSON writer.
func writeFindingsJSONResults(insights *schema.ProjectInsights, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, schema.EnrichFindings(insights.SecurityFindings))
	}, "Wrote JSON")
}

// writeFindingsCSVResults handles opening the file and calling the CSV writer.
func writeFindingsCSVResults(insights *schema.ProjectInsights, cfg *contract.Config, intFmt string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := []string{
			"rank",
			"file",
			"line",
			"severity",
			"label",
			"category",
			"description",
		}
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for _, f := range schema.EnrichFindings(insights.SecurityFindings) {
				rec := []string{
					strconv.Itoa(f.Rank),
					f.Path,
					fmt.Sprintf(intFmt, f.Line),
					string(f.Severity),
					f.Label,
					string(f.Category),
					f.Description,
				}
				if err := csvWriter.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV")
}

// writeFindingsTable generates and writes the human-readable findings report.
func writeFindingsTable(insights *schema.ProjectInsights, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	headerLine(writer, "🔒", "Security Findings", cfg.UseEmojis)

	if len(insights.SecurityFindings) == 0 {
		fmt.Fprintf(writer, "No findings at or above severity %q across %d files.\n", cfg.MinSeverity, insights.FilesAnalyzed)
		fmt.Fprintf(writer, "Analysis completed in %v with %d workers.\n", duration, cfg.Workers)
		return nil
	}

	table := tablewriter.NewWriter(writer)
	headers := []string{"Rank", "Path", "Line", "Severity", "Category"}
	if cfg.Detail {
		headers = append(headers, "Description")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	findings := schema.EnrichFindings(insights.SecurityFindings)
	if cfg.ResultLimit > 0 && len(findings) > cfg.ResultLimit {
		findings = findings[:cfg.ResultLimit]
	}
	for _, f := range findings {
		row := []string{
			strconv.Itoa(f.Rank),
			contract.TruncatePath(f.Path, GetMaxTablePathWidth(cfg)),
			strconv.Itoa(f.Line),
			contract.GetColorLabel(f.Severity),
			string(f.Category),
		}
		if cfg.Detail {
			row = append(row, f.Description)
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Per-severity counts, highest first
	counts := make(map[schema.Severity]int)
	for _, f := range insights.SecurityFindings {
		counts[f.Severity]++
	}
	for i := len(schema.AllSeverities) - 1; i >= 0; i-- {
		sev := schema.AllSeverities[i]
		if counts[sev] > 0 {
			fmt.Fprintf(writer, "%s: %d\n", schema.GetPlainLabel(sev), counts[sev])
		}
	}

	if _, err := fmt.Fprintf(writer, "Showing %d of %d findings across %d files\n", len(findings), len(insights.SecurityFindings), insights.FilesAnalyzed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Analysis completed in %v with %d workers.\n", duration, cfg.Workers); err != nil {
		return err
	}
	return nil
}
