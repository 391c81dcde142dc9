package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides,
// e.g. DIFFWATCH_WATCH_INTERVAL for watch.interval.
const EnvPrefix = "DIFFWATCH"

// Invalid UTF-8 handling modes
const (
	// InvalidUTF8Drop shows undecodable output as empty.
	InvalidUTF8Drop = "drop"
	// InvalidUTF8Preserve replaces undecodable bytes with U+FFFD.
	InvalidUTF8Preserve = "preserve"
)

// Config represents the complete diffwatch configuration
type Config struct {
	Watch   WatchConfig   `mapstructure:"watch"`
	Display DisplayConfig `mapstructure:"display"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// WatchConfig controls how the command is run
type WatchConfig struct {
	// Interval is the number of seconds between runs (default: 2)
	Interval float64 `mapstructure:"interval"`
	// Shell is the program invoked as `<shell> -c <command>` (default: "bash")
	Shell string `mapstructure:"shell"`
}

// DisplayConfig controls what is drawn on each refresh
type DisplayConfig struct {
	// Differences highlights bytes that changed since the previous run
	Differences bool `mapstructure:"differences"`
	// NoTitle hides the "Every Ns: command" header
	NoTitle bool `mapstructure:"no_title"`
	// TruncateTitle cuts a header wider than the terminal to fit (default: false)
	TruncateTitle bool `mapstructure:"truncate_title"`
	// InvalidUTF8 is "drop" or "preserve" (default: "drop")
	InvalidUTF8 string `mapstructure:"invalid_utf8"`
}

// LoggingConfig controls diagnostic logging
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "warn")
	Level string `mapstructure:"level"`
	// File is the log file path. Empty logs to stderr.
	File string `mapstructure:"file"`
	// MaxSizeMB is the log file size that triggers rotation, 0 disables (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
	// Compress gzips rotated files (default: false)
	Compress bool `mapstructure:"compress"`
}

// PreserveInvalidUTF8 reports whether undecodable output is kept with replacement characters.
func (d *DisplayConfig) PreserveInvalidUTF8() bool {
	return d.InvalidUTF8 == InvalidUTF8Preserve
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Watch: WatchConfig{
			Interval: 2.0,
			Shell:    "bash",
		},
		Display: DisplayConfig{
			Differences:   false,
			NoTitle:       false,
			TruncateTitle: false,
			InvalidUTF8:   InvalidUTF8Drop,
		},
		Logging: LoggingConfig{
			Level:      "warn",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
	}
}

// SetDefaults registers default values with v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	// Watch defaults
	v.SetDefault("watch.interval", defaults.Watch.Interval)
	v.SetDefault("watch.shell", defaults.Watch.Shell)

	// Display defaults
	v.SetDefault("display.differences", defaults.Display.Differences)
	v.SetDefault("display.no_title", defaults.Display.NoTitle)
	v.SetDefault("display.truncate_title", defaults.Display.TruncateTitle)
	v.SetDefault("display.invalid_utf8", defaults.Display.InvalidUTF8)

	// Logging defaults
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.file", defaults.Logging.File)
	v.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	v.SetDefault("logging.compress", defaults.Logging.Compress)
}

// Init registers defaults, wires environment overrides and reads the config
// file into v. An explicit cfgFile must exist; the default location may be
// absent.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// Load reads the configuration from v into a Config struct and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "diffwatch")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".diffwatch"
	}
	return filepath.Join(home, ".config", "diffwatch")
}

// ConfigFile returns the path to the default config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
