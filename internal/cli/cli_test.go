package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/kintreehq/kintree/pkg/config"
	"github.com/kintreehq/kintree/pkg/layout"
)

func TestLayoutOptionsFlagsWin(t *testing.T) {
	settings := config.Settings{Orientation: "vertical", Density: "desktop"}
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	opts := layoutOptions(cmd, settings, "root-1", "horizontal", "compact", true)
	if opts.Orientation != layout.Horizontal {
		t.Errorf("orientation = %s", opts.Orientation)
	}
	if opts.Density != layout.Compact {
		t.Errorf("density = %s", opts.Density)
	}
	if opts.RootID != "root-1" || !opts.CoupleCompaction {
		t.Errorf("opts = %+v", opts)
	}
}

func TestLayoutOptionsFallBackToSettings(t *testing.T) {
	settings := config.Settings{Orientation: "horizontal", Density: "compact"}
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	opts := layoutOptions(cmd, settings, "", "", "", false)
	if opts.Orientation != layout.Horizontal || opts.Density != layout.Compact {
		t.Errorf("configured preferences ignored: %+v", opts)
	}
}

func TestLayoutOptionsUnknownValuesDefault(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	opts := layoutOptions(cmd, config.Settings{}, "", "sideways", "dense", false)
	if opts.Orientation != layout.Vertical || opts.Density != layout.Desktop {
		t.Errorf("unknown values must fall back to defaults: %+v", opts)
	}
}

func TestLoadSettingsOverridePath(t *testing.T) {
	s, err := loadSettings(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if s != config.Default() {
		t.Errorf("settings = %+v, want defaults for missing file", s)
	}
}
