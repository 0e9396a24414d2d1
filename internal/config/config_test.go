package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PLANNER_CONFIG_DIR", dir)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Dir != filepath.Join(dir, "data") || cfg.Store.Backend != "sqlite" {
		t.Fatalf("unexpected store defaults: %+v", cfg.Store)
	}
	if cfg.Backup.Dir != filepath.Join(dir, "data", "backups") || cfg.Backup.Keep != 20 {
		t.Fatalf("unexpected backup defaults: %+v", cfg.Backup)
	}
	if cfg.SaveDebounce().Milliseconds() != 120 || cfg.Locale != "de" || !cfg.MondayFirst() {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PLANNER_CONFIG_DIR", dir)
	t.Chdir(t.TempDir())

	yml := "store:\n  backend: file\nlocale: en\nweek_start: sunday\nholidays:\n  public:\n    - /tmp/de.ics\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PLANNER_LOCALE", "de")
	t.Setenv("PLANNER_SAVE_DEBOUNCE", "500ms")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != "file" || cfg.MondayFirst() {
		t.Fatalf("expected file values; got %+v", cfg)
	}
	if cfg.Locale != "de" || cfg.SaveDebounce().Milliseconds() != 500 {
		t.Fatalf("expected env to override file; got locale=%s debounce=%s", cfg.Locale, cfg.Save.Debounce)
	}
	if diff := cmp.Diff([]string{"/tmp/de.ics"}, cfg.Holidays.Public); diff != "" {
		t.Fatalf("holiday sources (-want +got):\n%s", diff)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	t.Setenv("PLANNER_CONFIG_DIR", t.TempDir())
	t.Chdir(t.TempDir())
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for explicit missing config file")
	}
}

func TestNormalize_CoercesInvalid(t *testing.T) {
	t.Setenv("PLANNER_CONFIG_DIR", t.TempDir())
	c := &Config{
		Store:  StoreConfig{Backend: "postgres"},
		Save:   SaveConfig{Debounce: "soon"},
		Locale: "fr",
		Backup: BackupConfig{Keep: -1},
		Log:    LogConfig{Level: "LOUD"},
	}
	c.Normalize()
	if c.Store.Backend != "sqlite" || c.Save.Debounce != "120ms" || c.Locale != "de" || c.Backup.Keep != 20 || c.Log.Level != "info" {
		t.Fatalf("unexpected normalization: %+v", c)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PLANNER_CONFIG_DIR", dir)
	t.Chdir(t.TempDir())

	want := Default()
	want.Locale = "en"
	want.Normalize()
	path := filepath.Join(dir, "config.yaml")
	if err := Write(path, want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}
}
