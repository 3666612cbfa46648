// Package config loads and saves user settings as a TOML file under the
// platform config directory.
//
// Settings carry user preferences only. Genealogy data lives in the
// store; nothing here is required for correctness, and a missing or
// partial config file silently falls back to defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Settings is the persisted user configuration.
type Settings struct {
	// DBPath is the SQLite database location. Empty means the default
	// path under the user data directory.
	DBPath string `toml:"db_path"`

	// Orientation is the preferred layout orientation: "vertical" or
	// "horizontal".
	Orientation string `toml:"orientation"`

	// Density is the preferred spacing profile: "desktop" or "compact".
	Density string `toml:"density"`

	// Theme selects the terminal color theme.
	Theme string `toml:"theme"`

	// LastRootID is the focal person of the most recent browse session.
	LastRootID string `toml:"last_root_id"`

	// LastBackupAt records when the user last exported a backup.
	LastBackupAt time.Time `toml:"last_backup_at"`
}

// Default returns the settings used when no config file exists.
func Default() Settings {
	return Settings{
		Orientation: "vertical",
		Density:     "desktop",
		Theme:       "auto",
	}
}

// Path returns the config file location: $XDG_CONFIG_HOME/kintree/config.toml
// or the platform equivalent.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "kintree", "config.toml"), nil
}

// DefaultDBPath returns the database location used when DBPath is unset.
func DefaultDBPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "kintree", "kintree.db"), nil
}

// Load reads settings from path. A missing file yields defaults without
// error; unknown keys are ignored so newer files open in older builds.
func Load(path string) (Settings, error) {
	s := Default()
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("load config %s: %w", path, err)
	}
	return s, nil
}

// Save writes settings to path, creating parent directories as needed.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
