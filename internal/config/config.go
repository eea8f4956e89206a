// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.gamesage/config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Security: API keys are only read from the environment and are never
// logged. Validation is fail-fast in Load() with sentinel errors for
// Go-idiomatic checking via errors.Is().
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidModelName indicates the model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidSearchProvider indicates an unsupported search provider.
	ErrInvalidSearchProvider = errors.New("invalid search provider")

	// ErrInvalidSearchResults indicates the search result count is out of range.
	ErrInvalidSearchResults = errors.New("invalid search result count")

	// ErrInvalidMemoryPath indicates the chat memory path is empty.
	ErrInvalidMemoryPath = errors.New("invalid memory path")
)

const (
	// DefaultModelName is the default Gemini chat model.
	DefaultModelName = "gemini-2.5-flash"

	// DefaultMemoryPath is where the conversation is persisted, relative
	// to the working directory.
	DefaultMemoryPath = "data/chat_memory.json"

	// MaxAllowedTokens is the Gemini 2.5 output ceiling.
	MaxAllowedTokens = 65536

	// MaxSearchResults caps the per-query web search result count.
	MaxSearchResults = 20
)

// Search provider identifiers used in Config.SearchProvider.
const (
	ProviderSerper = "serper"
	ProviderTavily = "tavily"
	ProviderSteam  = "steam"
)

// Config stores application configuration.
// API key fields are sensitive: never log them.
type Config struct {
	// Inference configuration
	GeminiAPIKey string  `mapstructure:"gemini_api_key"`
	ModelName    string  `mapstructure:"model_name"`
	Temperature  float32 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"`

	// Search configuration
	SerperAPIKey   string `mapstructure:"serper_api_key"`
	TavilyAPIKey   string `mapstructure:"tavily_api_key"`
	SearchProvider string `mapstructure:"search_provider"`
	SearchResults  int    `mapstructure:"search_results"`

	// Persistence configuration
	MemoryPath string `mapstructure:"memory_path"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".gamesage")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("model_name", DefaultModelName)
	v.SetDefault("temperature", 0.7)
	v.SetDefault("max_tokens", 1000)
	v.SetDefault("search_provider", ProviderSerper)
	v.SetDefault("search_results", 5)
	v.SetDefault("memory_path", DefaultMemoryPath)
	v.SetDefault("log_level", "info")
}

// bindEnvVariables binds the secret environment variables explicitly.
// Only API keys come from the environment; everything else may live in
// the config file.
func bindEnvVariables(v *viper.Viper) {
	// Errors only occur for empty keys, which cannot happen here.
	_ = v.BindEnv("gemini_api_key", "GAMESAGE_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("serper_api_key", "SERPER_API_KEY")
	_ = v.BindEnv("tavily_api_key", "TAVILY_API_KEY")
	_ = v.BindEnv("search_provider", "GAMESAGE_SEARCH_PROVIDER")
	_ = v.BindEnv("log_level", "GAMESAGE_LOG_LEVEL")
}

// Validate checks configuration ranges. Called by Load; exported so a
// hand-built Config can be checked the same way.
func (c *Config) Validate() error {
	if c.ModelName == "" {
		return fmt.Errorf("%w: model name must not be empty", ErrInvalidModelName)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: %.2f (must be between 0.0 and 2.0)", ErrInvalidTemperature, c.Temperature)
	}
	if c.MaxTokens < 1 || c.MaxTokens > MaxAllowedTokens {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidMaxTokens, c.MaxTokens, MaxAllowedTokens)
	}
	switch c.SearchProvider {
	case ProviderSerper, ProviderTavily, ProviderSteam:
	default:
		return fmt.Errorf("%w: %q (supported: serper, tavily, steam)", ErrInvalidSearchProvider, c.SearchProvider)
	}
	if c.SearchResults < 1 || c.SearchResults > MaxSearchResults {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidSearchResults, c.SearchResults, MaxSearchResults)
	}
	if c.MemoryPath == "" {
		return fmt.Errorf("%w: memory path must not be empty", ErrInvalidMemoryPath)
	}
	return nil
}

// HasModel reports whether an inference collaborator can be configured.
func (c *Config) HasModel() bool {
	return c.GeminiAPIKey != ""
}
