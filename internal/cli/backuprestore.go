package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kintreehq/kintree/pkg/backup"
	"github.com/kintreehq/kintree/pkg/config"
)

// newBackupCmd creates the backup command for exporting snapshots.
func newBackupCmd() *cobra.Command {
	var (
		dbPath     string
		configPath string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export a whole-database snapshot",
		Long: `Export the full database, soft-deleted records included, as a
versioned JSON snapshot. Photos are base64-encoded inside the document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			settings, err := loadSettings(configPath)
			if err != nil {
				return err
			}
			st, err := openStore(dbPath, settings)
			if err != nil {
				return err
			}
			defer st.Close()

			if output == "" {
				output = fmt.Sprintf("kintree-backup-%s.json", time.Now().Format("2006-01-02"))
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			defer f.Close()

			if err := backup.Export(st, f, backup.Options{Logger: logger}); err != nil {
				return fmt.Errorf("backup: %w", err)
			}

			// remember the backup time for the next session's reminder
			settings.LastBackupAt = time.Now().UTC()
			if path, perr := config.Path(); perr == nil {
				if serr := config.Save(path, settings); serr != nil {
					logger.Warn("could not record backup time", "err", serr)
				}
			}

			printSuccess("Backup complete")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database file (default: configured path)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: platform config dir)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: kintree-backup-<date>.json)")
	return cmd
}

// newRestoreCmd creates the restore command for importing snapshots.
func newRestoreCmd() *cobra.Command {
	var (
		dbPath     string
		configPath string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "restore <backup.json>",
		Short: "Replace the database with a snapshot",
		Long: `Replace the entire database with the contents of a backup file.

The document is validated before any write happens and applied as one
transaction: a failed restore leaves the current database untouched.
This is destructive; pass --force to skip the confirmation prompt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			if !force {
				printWarning("This replaces the entire database with %s", args[0])
				fmt.Print("Type 'yes' to continue: ")
				var answer string
				fmt.Scanln(&answer)
				if answer != "yes" {
					printInfo("Restore cancelled")
					return nil
				}
			}

			settings, err := loadSettings(configPath)
			if err != nil {
				return err
			}
			st, err := openStore(dbPath, settings)
			if err != nil {
				return err
			}
			defer st.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			if err := backup.Restore(st, f, backup.Options{Logger: logger}); err != nil {
				return err
			}
			printSuccess("Restore complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database file (default: configured path)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: platform config dir)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}
