package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kintreehq/kintree/pkg/gedcom"
)

// newImportCmd creates the import command for loading GEDCOM files.
func newImportCmd() *cobra.Command {
	var (
		dbPath     string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "import <file.ged>",
		Short: "Load a GEDCOM file into the database",
		Long: `Load a GEDCOM 5.5.1 file into the database.

Every import creates a fresh set of persons and families: importing the
same file twice doubles the entity count rather than merging. The whole
file is written as one transaction, so a failed import leaves the
database unchanged.`,
		Args: cobra.ExactArgs(1),
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

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			prog := newProgress(logger)
			spinner := newSpinnerWithContext(cmd.Context(), "Importing GEDCOM...")
			spinner.Start()

			stats, err := gedcom.Import(st, string(data), gedcom.ImportOptions{Logger: logger})
			if err != nil {
				spinner.StopWithError("Import failed")
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			spinner.Stop()

			prog.done(fmt.Sprintf("Imported %d persons, %d families", stats.Persons, stats.Families))
			printSuccess("Import complete")
			printStats(stats.Persons, stats.Families)
			printNewline()
			printNextStep("Lay out the tree", "kintree layout -o tree.json")
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database file (default: configured path)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: platform config dir)")
	return cmd
}

// newExportCmd creates the export command for writing GEDCOM files.
func newExportCmd() *cobra.Command {
	var (
		dbPath     string
		configPath string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the database as a GEDCOM file",
		Long: `Write all persons and families as a GEDCOM 5.5.1 document.

Soft-deleted records are excluded. Cross-reference pointers are minted
fresh on every export.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(configPath)
			if err != nil {
				return err
			}
			st, err := openStore(dbPath, settings)
			if err != nil {
				return err
			}
			defer st.Close()

			doc, err := gedcom.Export(st)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			if output == "" {
				fmt.Print(doc)
				return nil
			}
			if err := os.WriteFile(output, []byte(doc), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Export complete")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database file (default: configured path)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: platform config dir)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
