// Package main is the entry point for the revise application.
// It loads configuration, opens storage, and either starts the TUI or runs
// one of the subcommands.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"revise/internal/backup"
	"revise/internal/config"
	"revise/internal/history"
	"revise/internal/storage"
	"revise/internal/ui"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// logFile is where the TUI sends log output so it never lands on the
// alternate screen.
const logFile = "revise.log"

var rootCmd = &cobra.Command{
	Use:   "revise",
	Short: "Spaced-repetition review planner for your terminal",
	Long: `revise - Spaced-repetition review planner for your terminal

Every topic you add gets nine review dates: the day you add it, then one day,
one week, 16 days, 35 days, two months, six months, one year and two years
later. revise shows what is due today, what slipped, and what is done.

With no arguments, launches the interactive dashboard: a filterable topic list
next to a month calendar where reviews can be ticked off or moved.

DATA STORAGE:
    Topics live in ~/.revise/topics.json (or topics.db with the sqlite
    backend). Backups go to ~/.revise/backups/.

CONFIGURATION:
    Optional config file: ~/.config/revise/config.yaml
    REVISE_DATA_DIR and REVISE_BACKEND override the file.

TOPIC ARGUMENTS:
    Commands taking a TOPIC accept a full id, a unique id prefix or the
    topic's 1-based position in 'revise list'.`,
	Example: `  # Start the dashboard
  revise

  # Add a topic and mark today's review done
  revise add "Photosynthesis" Biology
  revise done 1

  # What is due this week
  revise report --weekly`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.AddCommand(
		addCmd, editCmd, deleteCmd, doneCmd, moveCmd,
		listCmd, showCmd, dayCmd, eventsCmd, statsCmd,
		importCmd, exportCmd, reportCmd,
		backupCmd, restoreCmd, versionCmd,
	)
}

// openStore loads configuration and opens the configured backend.
func openStore() (*config.Config, *storage.Storage, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	store, err := storage.Open(cfg.GetDataDir(), cfg.Storage.Backend)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing storage: %w", err)
	}
	return cfg, store, nil
}

// runTUI starts the dashboard with the file watcher and, when enabled, the
// daily backup schedule.
func runTUI() error {
	cfg, store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	dataDir := cfg.GetDataDir()
	if f, err := os.OpenFile(filepath.Join(dataDir, logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600); err == nil {
		log.SetOutput(f)
		defer f.Close()
	}
	log.Printf("[main] revise %s starting, data in %s", version, store.Location())

	// Only the JSON snapshot is a plain file other processes rewrite.
	var watcher *storage.Watcher
	if cfg.Storage.Backend != storage.BackendSQLite {
		watcher, err = storage.WatchFile(store.Location())
		if err != nil {
			log.Printf("[main] warning: file watching disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	if cfg.Backup.Auto {
		sched, err := backup.NewScheduler(backup.NewManager(store, dataDir, version), cfg.Backup.At, cfg.Backup.Keep)
		if err != nil {
			log.Printf("[main] warning: automatic backups disabled: %v", err)
		} else {
			sched.Start()
			defer sched.Stop()
			log.Printf("[main] next backup at %s", sched.NextRun().Format("2006-01-02 15:04"))
		}
	}

	styles := ui.NewStylesFromTheme(&cfg.Theme)
	appCfg := &ui.AppConfig{
		Keys:                  &cfg.Keys,
		ConfirmDeletions:      cfg.UX.ConfirmDeletions,
		ShowCompletedMarks:    cfg.UX.ShowCompletedMarks,
		NarrowLayoutThreshold: cfg.UX.NarrowLayoutThreshold,
		ExportPath:            storage.ExportFile,
	}

	hist := history.NewManager(store)
	hist.SetLimit(cfg.UX.HistoryLimit)

	if err := ui.Run(store, hist, watcher, styles, appCfg); err != nil {
		return fmt.Errorf("running app: %w", err)
	}
	return nil
}
