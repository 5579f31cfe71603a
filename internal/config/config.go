package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the config file written by `tally init`.
const FileName = "tally.yaml"

// EnvPrefix prefixes environment overrides, e.g. TALLY_DATABASE_PATH.
const EnvPrefix = "TALLY"

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Audit    AuditConfig    `yaml:"audit" mapstructure:"audit"`
	Import   ImportConfig   `yaml:"import" mapstructure:"import"`
	User     UserConfig     `yaml:"user" mapstructure:"user"`
}

// DatabaseConfig locates the SQLite ledger.
type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // relative paths are resolved against the config dir
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
}

// AuditConfig controls the import audit log.
type AuditConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ImportConfig bounds bulk uploads.
type ImportConfig struct {
	MaxBytes int64 `yaml:"max_bytes" mapstructure:"max_bytes"`
}

// UserConfig holds the default principal for CLI commands.
type UserConfig struct {
	ID string `yaml:"id" mapstructure:"id"`
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: filepath.Join("data", "tally.db")},
		Log:      LogConfig{Level: "info"},
		Audit:    AuditConfig{Dir: "logs"},
		Import:   ImportConfig{MaxBytes: 10 << 20},
	}
}

// Load reads a tally.yaml file from disk. Any key can be overridden by an
// environment variable, e.g. TALLY_LOG_LEVEL=debug. Relative paths are
// resolved against the directory holding the file.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.resolve(filepath.Dir(path))
	return &cfg, nil
}

// FromEnv returns the defaults with environment overrides applied, for use
// when no config file exists. Relative paths are resolved against baseDir.
func FromEnv(baseDir string) (*Config, error) {
	v := newViper()
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	cfg.resolve(baseDir)
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func newViper() *viper.Viper {
	d := Default()
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("audit.dir", d.Audit.Dir)
	v.SetDefault("import.max_bytes", d.Import.MaxBytes)
	v.SetDefault("user.id", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func (c *Config) resolve(baseDir string) {
	if c.Database.Path != "" && !filepath.IsAbs(c.Database.Path) {
		c.Database.Path = filepath.Join(baseDir, c.Database.Path)
	}
	if c.Audit.Dir != "" && !filepath.IsAbs(c.Audit.Dir) {
		c.Audit.Dir = filepath.Join(baseDir, c.Audit.Dir)
	}
}
