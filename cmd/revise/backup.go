// Package main is the entry point for the revise application.
// This file contains the backup and restore subcommands.
package main

import (
	"fmt"

	"revise/internal/backup"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	backupList  bool
	backupPrune int
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create and manage backups",
	Long: `Creates a timestamped snapshot of every topic. Backups are stored in
<data_dir>/backups/ and can be restored later with 'revise restore'.`,
	Example: `  # Create a new backup
  revise backup

  # List all available backups
  revise backup --list

  # Keep only the 5 newest backups
  revise backup --prune 5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		manager := backup.NewManager(store, cfg.GetDataDir(), version)
		switch {
		case backupList:
			return listBackups(manager)
		case cmd.Flags().Changed("prune"):
			n, err := manager.Prune(backupPrune)
			if err != nil {
				return fmt.Errorf("pruning backups: %w", err)
			}
			printStatus("✓", fmt.Sprintf("Deleted %s, kept the newest %d", plural(n, "backup"), backupPrune), color.FgGreen)
			return nil
		default:
			return createBackup(manager)
		}
	},
}

// createBackup creates a new backup and displays the result.
func createBackup(manager *backup.Manager) error {
	name, err := manager.Create()
	if err != nil {
		return fmt.Errorf("creating backup: %w", err)
	}
	info, err := manager.GetBackup(name)
	if err != nil {
		return fmt.Errorf("reading backup info: %w", err)
	}

	printStatus("✓", "Backup created: "+name, color.FgGreen)
	fmt.Printf("  Topics: %d, Reviews: %d, Completed: %d\n",
		info.Stats["topics"], info.Stats["reviews"], info.Stats["completed"])
	fmt.Printf("  Location: %s\n", info.Path)
	return nil
}

// listBackups lists all available backups.
func listBackups(manager *backup.Manager) error {
	backups, err := manager.List()
	if err != nil {
		return fmt.Errorf("listing backups: %w", err)
	}
	if len(backups) == 0 {
		fmt.Println("No backups available.")
		fmt.Println("Run 'revise backup' to create one.")
		return nil
	}

	fmt.Println("Available backups:")
	for _, b := range backups {
		fmt.Printf("  %s  (%s)   Topics: %d\n", b.Name, color.HiBlackString(formatAge(b.CreatedAt)), b.Stats["topics"])
	}
	return nil
}

var (
	restoreLatest bool
	restoreForce  bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore [BACKUP_NAME]",
	Short: "Restore topics from a backup",
	Long: `Replaces every topic with the contents of a backup. A safety backup of the
current state is created first.

BACKUP_NAME is a name shown by 'revise backup --list', for example
2025-12-15_143022_000.`,
	Example: `  revise restore 2025-12-15_143022_000
  revise restore --latest --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if restoreLatest == (len(args) == 1) {
			return fmt.Errorf("name one backup or pass --latest; run 'revise backup --list' to see them")
		}

		cfg, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		manager := backup.NewManager(store, cfg.GetDataDir(), version)

		var name string
		if restoreLatest {
			backups, err := manager.List()
			if err != nil {
				return fmt.Errorf("listing backups: %w", err)
			}
			if len(backups) == 0 {
				return fmt.Errorf("no backups available")
			}
			name = backups[0].Name
		} else {
			name = args[0]
		}

		info, err := manager.GetBackup(name)
		if err != nil {
			return err
		}
		fmt.Printf("Restoring from backup: %s\n", info.Name)
		fmt.Printf("  Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("  Topics: %d\n", info.Stats["topics"])
		fmt.Println()

		if !restoreForce {
			printStatus("⚠", "This will overwrite your current topics.", color.FgYellow)
			if !confirm("Continue?") {
				fmt.Println("Restore cancelled.")
				return nil
			}
		}

		printStatus("✓", "Creating safety backup first...", color.FgGreen)
		if err := manager.Restore(name); err != nil {
			return fmt.Errorf("restoring backup: %w", err)
		}
		printStatus("✓", "Restored successfully from "+name, color.FgGreen)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("revise version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	backupCmd.Flags().BoolVarP(&backupList, "list", "l", false, "list available backups")
	backupCmd.Flags().IntVar(&backupPrune, "prune", 0, "delete all but the N newest backups")

	restoreCmd.Flags().BoolVar(&restoreLatest, "latest", false, "restore from the most recent backup")
	restoreCmd.Flags().BoolVarP(&restoreForce, "force", "f", false, "skip the confirmation prompt")
}
