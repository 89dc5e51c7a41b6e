// Package main is the entry point for the revise application.
// This file contains the report subcommand.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"revise/internal/fsutil"
	"revise/internal/reports"

	"github.com/spf13/cobra"
)

var (
	reportWeekly bool
	reportFormat string
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report [DATE]",
	Short: "Summarize reviews for a day or a week",
	Long: `Summarize reviews for a day (default today): what is due, what is overdue,
what is done, and a per-subject tally. With --weekly, list each day of the
week (Sunday to Saturday) containing DATE.

Reports can be output as Markdown (human-readable) or JSON (machine-readable).`,
	Example: `  revise report
  revise report 2025-03-14
  revise report --weekly --format json --output week.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	format := reportFormat
	if format == "md" {
		format = "markdown"
	}
	if format != "markdown" && format != "json" {
		return fmt.Errorf("invalid format %q: use markdown or json", reportFormat)
	}

	_, store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	arg := ""
	if len(args) == 1 {
		arg = args[0]
	}
	date, err := parseDay(arg, store.Now())
	if err != nil {
		return err
	}

	gen := reports.NewGenerator(store)

	var output string
	if reportWeekly {
		report, err := gen.GenerateWeekly(date)
		if err != nil {
			return fmt.Errorf("generating weekly report: %w", err)
		}
		if format == "json" {
			data, err := reports.FormatWeeklyJSON(report)
			if err != nil {
				return fmt.Errorf("formatting JSON: %w", err)
			}
			output = string(data) + "\n"
		} else {
			output = reports.FormatWeeklyMarkdown(report)
		}
	} else {
		report, err := gen.GenerateDaily(date)
		if err != nil {
			return fmt.Errorf("generating daily report: %w", err)
		}
		if format == "json" {
			data, err := reports.FormatDailyJSON(report)
			if err != nil {
				return fmt.Errorf("formatting JSON: %w", err)
			}
			output = string(data) + "\n"
		} else {
			output = reports.FormatDailyMarkdown(report)
		}
	}

	if reportOutput == "" {
		fmt.Print(output)
		return nil
	}
	if dir := filepath.Dir(reportOutput); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := fsutil.WriteFileAtomic(reportOutput, []byte(output), 0600); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}
	fmt.Printf("Report written to %s\n", reportOutput)
	return nil
}

func init() {
	reportCmd.Flags().BoolVarP(&reportWeekly, "weekly", "w", false, "generate weekly report")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "markdown", "output format: markdown or json")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "write to file instead of stdout")
}
