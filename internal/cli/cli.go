package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kintreehq/kintree/pkg/config"
	"github.com/kintreehq/kintree/pkg/layout"
	"github.com/kintreehq/kintree/pkg/store"
)

// loadSettings reads the user config, honoring an explicit path override.
func loadSettings(override string) (config.Settings, error) {
	path := override
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return config.Default(), err
		}
		path = p
	}
	return config.Load(path)
}

// openStore opens the SQLite database named by the --db flag, the
// KINTREE_DB environment variable, the config file, or the default
// location, in that order.
func openStore(dbFlag string, settings config.Settings) (*store.SQLite, error) {
	path := dbFlag
	if path == "" {
		path = os.Getenv("KINTREE_DB")
	}
	if path == "" {
		path = settings.DBPath
	}
	if path == "" {
		p, err := config.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	st, err := store.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	return st, nil
}

// layoutOptions assembles layout options from command flags, falling back
// to configured preferences for anything unset.
func layoutOptions(cmd *cobra.Command, settings config.Settings, rootID, orientation, density string, couples bool) layout.Options {
	if orientation == "" {
		orientation = settings.Orientation
	}
	if density == "" {
		density = settings.Density
	}
	opts := layout.Options{
		RootID:           rootID,
		Orientation:      layout.Vertical,
		Density:          layout.Desktop,
		CoupleCompaction: couples,
		Logger:           loggerFromContext(cmd.Context()),
	}
	if orientation == string(layout.Horizontal) {
		opts.Orientation = layout.Horizontal
	}
	if density == string(layout.Compact) {
		opts.Density = layout.Compact
	}
	return opts
}
