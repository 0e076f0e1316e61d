package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// EnvAPIURL is the only environment variable the client reads. It
// overrides api.base_url.
const EnvAPIURL = "MAILTRIAGE_API_URL"

// DefaultAPIURL is used when neither the environment nor the config file
// names a backend.
const DefaultAPIURL = "http://localhost:3001/api"

// APIConfig holds the backend connection settings.
type APIConfig struct {
	// BaseURL is the root of the triage REST API (e.g. http://host/api).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds a single HTTP request. Zero disables the timeout.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// HealthConfig holds backend liveness polling settings.
type HealthConfig struct {
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API    APIConfig    `mapstructure:"api" yaml:"api"`
	Health HealthConfig `mapstructure:"health" yaml:"health"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailtriage/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mailtriage", "config.yaml")
}

// defaultLogPath returns ~/.local/state/mailtriage/mailtriage.log.
func defaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "mailtriage.log")
	}
	return filepath.Join(home, ".local", "state", "mailtriage", "mailtriage.log")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    DefaultAPIURL,
			TimeoutSec: 30,
		},
		Health: HealthConfig{
			PollIntervalSec: 30,
		},
		Log: LogConfig{
			Level: "info",
			File:  defaultLogPath(),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults are used. MAILTRIAGE_API_URL wins
// over the file in both cases.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	defaults := defaultAppConfig()
	v.SetDefault("api.base_url", defaults.API.BaseURL)
	v.SetDefault("api.timeout_sec", defaults.API.TimeoutSec)
	v.SetDefault("health.poll_interval_sec", defaults.Health.PollIntervalSec)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.file", defaults.Log.File)

	if err := v.BindEnv("api.base_url", EnvAPIURL); err != nil {
		return nil, fmt.Errorf("binding %s: %w", EnvAPIURL, err)
	}

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultAPIURL
	}
	if cfg.Health.PollIntervalSec <= 0 {
		cfg.Health.PollIntervalSec = defaults.Health.PollIntervalSec
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("health", cfg.Health)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
