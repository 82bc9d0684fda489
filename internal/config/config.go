// Package config provides configuration loading and management for Lorekeep.
//
// Configuration lives in config.yaml at the root of the data directory and
// is entirely optional: every field has a default, and a missing file means
// the defaults apply. The data directory itself is resolved outside the
// file (environment variable, then home directory) since the file lives
// inside it.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvDataDir overrides the data directory location when set.
const EnvDataDir = "LOREKEEP_DATA_DIR"

// FileName is the config file name inside the data directory.
const FileName = "config.yaml"

// Config represents the complete Lorekeep configuration.
type Config struct {
	Budget  BudgetConfig  `yaml:"budget"`
	History HistoryConfig `yaml:"history"`
}

// BudgetConfig sizes the context payloads handed to models.
type BudgetConfig struct {
	// DefaultChars is the character budget used when a request names no
	// budget and no model entry matches (default: 8000).
	DefaultChars int `yaml:"default_chars"`
	// ModelTokens maps a model identifier to its token budget. Tokens are
	// converted to characters at roughly four characters per token.
	ModelTokens map[string]int `yaml:"model_tokens"`
}

// HistoryConfig bounds conversation retrieval.
type HistoryConfig struct {
	// MaxTurns is the default number of recent turns a new project
	// retrieves when the caller asks for no specific amount (default: 50).
	MaxTurns int `yaml:"max_turns"`
}

// DataDir resolves where Lorekeep keeps its state: the LOREKEEP_DATA_DIR
// environment variable when set, otherwise ~/.lorekeep.
func DataDir() string {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lorekeep")
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Budget: BudgetConfig{
			DefaultChars: 8000,
			ModelTokens:  map[string]int{},
		},
		History: HistoryConfig{
			MaxTurns: 50,
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Budget.DefaultChars <= 0 {
		return fmt.Errorf("budget.default_chars must be positive")
	}
	for model, tokens := range c.Budget.ModelTokens {
		if tokens <= 0 {
			return fmt.Errorf("budget.model_tokens[%q] must be positive", model)
		}
	}
	if c.History.MaxTurns <= 0 {
		return fmt.Errorf("history.max_turns must be positive")
	}
	return nil
}

// Load reads the config file from the data directory. A missing file is not
// an error: the defaults apply until the user writes one.
func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config at %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file. Fields absent from the
// file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
