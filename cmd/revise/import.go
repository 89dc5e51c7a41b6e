// Package main is the entry point for the revise application.
// This file contains the import and export subcommands.
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"revise/internal/fsutil"
	"revise/internal/importer"
	"revise/internal/storage"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const previewRows = 20

var (
	importFormat  string
	importReplace bool
	importDryRun  bool
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import topics from a JSON export, CSV file or Excel workbook",
	Long: `Import topics from a file. The format follows the extension (.json, .csv,
.xlsx) unless --format is given.

FORMATS:
    json   An array of topics as written by 'revise export'.
    csv    A header row naming at least name and subject; notes and created
           columns are optional.
    xlsx   The first sheet, laid out like the CSV file.

By default the file is merged: topics whose name and subject already exist
are skipped. --replace discards the current list first.`,
	Example: `  revise import topics_backup.json
  revise import --dry-run biology.csv
  revise import --replace --format xlsx plan.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	if importFormat != "" && importer.GetParser(importFormat, nil) == nil {
		return fmt.Errorf("unknown format %q (supported: %s)", importFormat, strings.Join(importer.SupportedFormats(), ", "))
	}

	_, store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	loaded := <-importer.Load(ctx, args[0], importFormat, store.Now)
	if loaded.Err != nil {
		return loaded.Err
	}
	for _, note := range loaded.Notes {
		printStatus("⚠", note, color.FgYellow)
	}
	// An empty file still empties the list on replace.
	if len(loaded.Topics) == 0 && !importReplace {
		fmt.Println("No topics found to import.")
		return nil
	}

	if importDryRun {
		previewImport(loaded)
		return nil
	}

	result, err := importer.Apply(store, loaded.Topics, !importReplace)
	if err != nil {
		return fmt.Errorf("importing: %w", err)
	}

	verb := "Merged"
	if importReplace {
		verb = "Replaced with"
	}
	printStatus("✓", fmt.Sprintf("%s %d topics from %s", verb, result.Imported, loaded.Path), color.FgGreen)
	if result.Skipped > 0 {
		fmt.Printf("  Skipped:  %d already present\n", result.Skipped)
	}
	return nil
}

// previewImport lists what an import would store.
func previewImport(l importer.Loaded) {
	fmt.Printf("Preview: %d topics in %s (%s)\n", len(l.Topics), l.Path, l.Format)
	fmt.Println("────────────────────────────")

	for i, t := range l.Topics {
		if i == previewRows {
			fmt.Printf("  ... and %d more\n", len(l.Topics)-previewRows)
			break
		}
		first := "-"
		if len(t.Reviews) > 0 {
			first = t.Reviews[0].Format(dateLayout)
		}
		fmt.Printf("  %s (%s), %d/%d reviews done, first %s\n",
			t.Name, color.CyanString(t.Subject), len(t.Completed), len(t.Reviews), first)
	}

	fmt.Println()
	fmt.Println("Run without --dry-run to import.")
}

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every topic to a JSON file",
	Long: `Write every topic, with its review dates and completion state, to a JSON
file that 'revise import' reads back.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		topics, err := store.Export()
		if err != nil {
			return err
		}
		if err := fsutil.WriteJSONAtomic(exportOutput, topics, 0600); err != nil {
			return fmt.Errorf("writing %s: %w", exportOutput, err)
		}
		printStatus("✓", fmt.Sprintf("Exported %d topics to %s", len(topics), exportOutput), color.FgGreen)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "input format: json, csv or xlsx (default from extension)")
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "discard current topics instead of merging")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "preview import without making changes")

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", storage.ExportFile, "file to write")
}
