// Package config resolves planner settings from defaults, an optional YAML
// file, PLANNER_* environment variables and an optional .env file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/natefinch/atomic"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix      = "PLANNER"
	configFileName = "config.yaml"
)

type Config struct {
	Store     StoreConfig    `mapstructure:"store" yaml:"store"`
	Save      SaveConfig     `mapstructure:"save" yaml:"save"`
	Locale    string         `mapstructure:"locale" yaml:"locale"`
	WeekStart string         `mapstructure:"week_start" yaml:"week_start"`
	Holidays  HolidaysConfig `mapstructure:"holidays" yaml:"holidays"`
	Backup    BackupConfig   `mapstructure:"backup" yaml:"backup"`
	Log       LogConfig      `mapstructure:"log" yaml:"log"`
}

type StoreConfig struct {
	Dir     string `mapstructure:"dir" yaml:"dir"`
	Backend string `mapstructure:"backend" yaml:"backend"`
}

type SaveConfig struct {
	Debounce string `mapstructure:"debounce" yaml:"debounce"`
}

type HolidaysConfig struct {
	// Public and School list ICS sources: file paths or http(s) URLs.
	Public  []string `mapstructure:"public" yaml:"public"`
	School  []string `mapstructure:"school" yaml:"school"`
	Timeout string   `mapstructure:"timeout" yaml:"timeout"`
}

type BackupConfig struct {
	Dir      string `mapstructure:"dir" yaml:"dir"`
	Schedule string `mapstructure:"schedule" yaml:"schedule"`
	Keep     int    `mapstructure:"keep" yaml:"keep"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// Dir is the planner config directory (~/.planner unless PLANNER_CONFIG_DIR is set).
func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.planner).
	if v := strings.TrimSpace(os.Getenv("PLANNER_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".planner"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Default returns the built-in settings.
func Default() *Config {
	dir, err := Dir()
	if err != nil {
		dir = ".planner"
	}
	data := filepath.Join(dir, "data")
	return &Config{
		Store:     StoreConfig{Dir: data, Backend: "sqlite"},
		Save:      SaveConfig{Debounce: "120ms"},
		Locale:    "de",
		WeekStart: "monday",
		Holidays:  HolidaysConfig{Public: []string{}, School: []string{}, Timeout: "10s"},
		Backup:    BackupConfig{Dir: "", Schedule: "0 * * * *", Keep: 20},
		Log:       LogConfig{Level: "info", MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 28},
	}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("store.dir", d.Store.Dir)
	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("save.debounce", d.Save.Debounce)
	v.SetDefault("locale", d.Locale)
	v.SetDefault("week_start", d.WeekStart)
	v.SetDefault("holidays.public", d.Holidays.Public)
	v.SetDefault("holidays.school", d.Holidays.School)
	v.SetDefault("holidays.timeout", d.Holidays.Timeout)
	v.SetDefault("backup.dir", d.Backup.Dir)
	v.SetDefault("backup.schedule", d.Backup.Schedule)
	v.SetDefault("backup.keep", d.Backup.Keep)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
}

// Load resolves the effective config. path may be empty to use the default
// location; a missing file is not an error. A .env file in the working
// directory is applied to the environment first without overriding variables
// that are already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize fills empty values and coerces unknown enum values to defaults.
func (c *Config) Normalize() {
	d := Default()
	c.Store.Dir = expandHome(strings.TrimSpace(c.Store.Dir))
	if c.Store.Dir == "" {
		c.Store.Dir = d.Store.Dir
	}
	switch strings.ToLower(strings.TrimSpace(c.Store.Backend)) {
	case "file":
		c.Store.Backend = "file"
	default:
		c.Store.Backend = "sqlite"
	}
	if _, err := time.ParseDuration(c.Save.Debounce); err != nil {
		c.Save.Debounce = d.Save.Debounce
	}
	switch strings.ToLower(strings.TrimSpace(c.Locale)) {
	case "en":
		c.Locale = "en"
	default:
		c.Locale = "de"
	}
	switch strings.ToLower(strings.TrimSpace(c.WeekStart)) {
	case "sunday":
		c.WeekStart = "sunday"
	default:
		c.WeekStart = "monday"
	}
	if c.Holidays.Public == nil {
		c.Holidays.Public = []string{}
	}
	if c.Holidays.School == nil {
		c.Holidays.School = []string{}
	}
	if _, err := time.ParseDuration(c.Holidays.Timeout); err != nil {
		c.Holidays.Timeout = d.Holidays.Timeout
	}
	c.Backup.Dir = expandHome(strings.TrimSpace(c.Backup.Dir))
	if c.Backup.Dir == "" {
		c.Backup.Dir = filepath.Join(c.Store.Dir, "backups")
	}
	if strings.TrimSpace(c.Backup.Schedule) == "" {
		c.Backup.Schedule = d.Backup.Schedule
	}
	if c.Backup.Keep < 0 {
		c.Backup.Keep = d.Backup.Keep
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "error":
		c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	default:
		c.Log.Level = d.Log.Level
	}
	c.Log.File = expandHome(strings.TrimSpace(c.Log.File))
}

func (c *Config) SaveDebounce() time.Duration {
	d, err := time.ParseDuration(c.Save.Debounce)
	if err != nil {
		return 120 * time.Millisecond
	}
	return d
}

func (c *Config) HolidayTimeout() time.Duration {
	d, err := time.ParseDuration(c.Holidays.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

func (c *Config) MondayFirst() bool { return c.WeekStart != "sunday" }

// YAML renders the config as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write stores c at path, creating the directory as needed.
func Write(path string, c *Config) error {
	b, err := c.YAML()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(b))
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
