package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/sadopc/daybook/internal/store"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "daybook.db"
	DefaultLogName        = "daybook.log"
	DefaultUpcomingDays   = 7
)

type Auth struct {
	// Enabled turns on sign-up and sign-in against the local accounts table.
	// When off, accounts live on this device only.
	Enabled bool `toml:"enabled"`
}

type Config struct {
	DBPath       string `toml:"db_path"`
	LogFile      string `toml:"log_file"`
	LogLevel     string `toml:"log_level"`
	UpcomingDays int    `toml:"upcoming_days"`
	SeedSamples  bool   `toml:"seed_samples"`
	Auth         Auth   `toml:"auth"`
}

// LoadOrCreate reads the config at path, writing the defaults there first if
// the file does not exist. Relative paths in the file are resolved against
// its directory.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(filepath.Dir(path)), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if cfg.LogFile == "" {
		cfg.LogFile = DefaultLogName
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.UpcomingDays <= 0 {
		cfg.UpcomingDays = DefaultUpcomingDays
	}
	return cfg.resolve(filepath.Dir(path)), nil
}

// DefaultPath returns ~/.config/daybook/config.toml
func DefaultPath() (string, error) {
	dir, err := store.DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFileName), nil
}

func Default() Config {
	return Config{
		DBPath:       DefaultDBName,
		LogFile:      DefaultLogName,
		LogLevel:     "info",
		UpcomingDays: DefaultUpcomingDays,
		SeedSamples:  true,
		Auth:         Auth{Enabled: true},
	}
}

func (c Config) resolve(dir string) Config {
	if c.DBPath != ":memory:" && !filepath.IsAbs(c.DBPath) {
		c.DBPath = filepath.Join(dir, c.DBPath)
	}
	if !filepath.IsAbs(c.LogFile) {
		c.LogFile = filepath.Join(dir, c.LogFile)
	}
	return c
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
