package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kintreehq/kintree/pkg/graphio"
	"github.com/kintreehq/kintree/pkg/layout"
)

// newRenderCmd creates the render command for producing SVG output.
func newRenderCmd() *cobra.Command {
	var (
		output      string
		orientation string
	)

	cmd := &cobra.Command{
		Use:   "render <layout.json>",
		Short: "Render a layout as SVG via Graphviz",
		Long: `Render a layout file (produced by 'kintree layout') as SVG.

Couple nodes show both spouses in one box; spouse edges render dashed.
Graphviz computes the final picture coordinates.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graphio.ReadGraphFile(args[0])
			if err != nil {
				return fmt.Errorf("load layout %s: %w", args[0], err)
			}

			orient := layout.Vertical
			if orientation == string(layout.Horizontal) {
				orient = layout.Horizontal
			}

			spinner := newSpinnerWithContext(cmd.Context(), "Rendering SVG...")
			spinner.Start()
			svg, err := graphio.RenderSVG(cmd.Context(), graphio.ToDOT(g, orient))
			if err != nil {
				spinner.StopWithError("Render failed")
				return fmt.Errorf("render: %w", err)
			}
			spinner.Stop()

			if output == "" {
				base := strings.TrimSuffix(args[0], filepath.Ext(args[0]))
				output = base + ".svg"
			}
			if err := os.WriteFile(output, svg, 0o644); err != nil {
				return fmt.Errorf("write output %s: %w", output, err)
			}

			printSuccess("Render complete")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.svg)")
	cmd.Flags().StringVar(&orientation, "orientation", "", "vertical or horizontal")
	return cmd
}
