package logger

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds logging configuration
type Config struct {
	Level   string        `yaml:"level"`
	Console ConsoleConfig `yaml:"console"`
	File    FileConfig    `yaml:"file"`
}

// ConsoleConfig controls the stdout handler.
type ConsoleConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // text or json
}

// FileConfig controls the rotating file handler.
type FileConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	Format     string `yaml:"format"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type fileLayout struct {
	Logging Config `yaml:"logging"`
}

// DefaultConfig logs INFO and above as text on stdout only.
func DefaultConfig() Config {
	return Config{
		Level: "INFO",
		Console: ConsoleConfig{
			Enabled: true,
			Format:  "text",
		},
		File: FileConfig{
			Enabled:    false,
			Path:       "logs/planetmap.log",
			Format:     "json",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// LoadConfig reads the logging section of a YAML file and applies
// environment overrides. A missing file yields the defaults without error;
// an unparsable one yields the defaults and the parse error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	var loadErr error
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			layout := fileLayout{Logging: DefaultConfig()}
			if err := yaml.Unmarshal(data, &layout); err != nil {
				loadErr = fmt.Errorf("parse logging config %s: %w", path, err)
			} else {
				cfg = layout.Logging
				fillZeroes(&cfg)
			}
		case !os.IsNotExist(err):
			loadErr = fmt.Errorf("read logging config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, loadErr
}

// fillZeroes restores defaults for numeric and string fields a YAML file
// explicitly blanked out.
func fillZeroes(cfg *Config) {
	def := DefaultConfig()
	if cfg.Level == "" {
		cfg.Level = def.Level
	}
	if cfg.Console.Format == "" {
		cfg.Console.Format = def.Console.Format
	}
	if cfg.File.Path == "" {
		cfg.File.Path = def.File.Path
	}
	if cfg.File.Format == "" {
		cfg.File.Format = def.File.Format
	}
	if cfg.File.MaxSizeMB <= 0 {
		cfg.File.MaxSizeMB = def.File.MaxSizeMB
	}
	if cfg.File.MaxBackups <= 0 {
		cfg.File.MaxBackups = def.File.MaxBackups
	}
	if cfg.File.MaxAgeDays <= 0 {
		cfg.File.MaxAgeDays = def.File.MaxAgeDays
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv("LOG_CONSOLE_FORMAT"); v != "" {
		cfg.Console.Format = v
	}
	if v := os.Getenv("LOG_FILE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.File.Enabled = enabled
		}
	}
	if v := os.Getenv("LOG_FILE_PATH"); v != "" {
		cfg.File.Path = v
	}
}
