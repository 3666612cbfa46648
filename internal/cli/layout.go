package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kintreehq/kintree/pkg/graphio"
	"github.com/kintreehq/kintree/pkg/layout"
)

// newLayoutCmd creates the layout command for computing tree layouts.
func newLayoutCmd() *cobra.Command {
	var (
		dbPath      string
		configPath  string
		output      string
		rootID      string
		orientation string
		density     string
		couples     bool
		auto        bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute a tree layout and write it as JSON",
		Long: `Compute node positions and relationship edges for the stored tree.

The primary algorithm places descendants of the root person first, then
ancestors, then grids everyone disconnected from the root. With --auto
the result is additionally passed through the layered auto-arranger,
which reduces edge crossings and removes overlap artifacts.`,
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

			persons, err := st.Persons(false)
			if err != nil {
				return err
			}
			families, err := st.Families(false)
			if err != nil {
				return err
			}

			opts := layoutOptions(cmd, settings, rootID, orientation, density, couples)

			spinner := newSpinnerWithContext(cmd.Context(), "Computing layout...")
			spinner.Start()
			g := layout.Layout(persons, families, opts)
			if auto {
				g.Nodes = layout.AutoArrange(g.Nodes, g.Edges, opts)
			}
			spinner.Stop()

			if output == "" {
				output = "tree.layout.json"
			}
			if err := graphio.WriteGraphFile(g, output); err != nil {
				return fmt.Errorf("write output %s: %w", output, err)
			}

			printSuccess("Layout complete")
			printFile(output)
			printStats(len(persons), len(families))
			printNewline()
			printNextStep("Render", "kintree render "+output)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database file (default: configured path)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: platform config dir)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: tree.layout.json)")
	cmd.Flags().StringVarP(&rootID, "root", "r", "", "focal person ID (default: first person)")
	cmd.Flags().StringVar(&orientation, "orientation", "", "vertical or horizontal (default: configured)")
	cmd.Flags().StringVar(&density, "density", "", "desktop or compact (default: configured)")
	cmd.Flags().BoolVar(&couples, "couples", true, "compact married pairs with children into couple nodes")
	cmd.Flags().BoolVar(&auto, "auto", false, "run the layered auto-arranger on the result")
	return cmd
}
