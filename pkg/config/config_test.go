package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope", "config.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s != Default() {
		t.Errorf("settings = %+v, want defaults", s)
	}
	if s.Orientation != "vertical" || s.Density != "desktop" {
		t.Errorf("defaults = %+v", s)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "config.toml")
	want := Settings{
		DBPath:       "/tmp/tree.db",
		Orientation:  "horizontal",
		Density:      "compact",
		Theme:        "dark",
		LastRootID:   "abc-123",
		LastBackupAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.LastBackupAt.Equal(want.LastBackupAt) {
		t.Errorf("lastBackupAt = %v", got.LastBackupAt)
	}
	got.LastBackupAt = want.LastBackupAt
	if got != want {
		t.Errorf("round trip changed settings:\n%+v\n%+v", got, want)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("orientation = \"horizontal\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Orientation != "horizontal" {
		t.Errorf("orientation = %q", s.Orientation)
	}
	if s.Density != "desktop" || s.Theme != "auto" {
		t.Errorf("unset keys lost defaults: %+v", s)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("orientation = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed config must fail")
	}
}
