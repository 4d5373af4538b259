package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Confirmation modes for command execution.
const (
	ConfirmAlways = "always"
	ConfirmSmart  = "smart"
	ConfirmNever  = "never"
)

// Config represents the application configuration.
type Config struct {
	BackendURL       string   `yaml:"backend_url"`
	Model            string   `yaml:"model"`
	Temperature      float64  `yaml:"temperature"`
	MaxTokens        int      `yaml:"max_tokens"`
	ObsidianVault    string   `yaml:"obsidian_vault"`
	ConfirmCommands  string   `yaml:"confirm_commands"` // always | smart | never
	ContextInjection bool     `yaml:"context_injection"`
	ToolUse          bool     `yaml:"tool_use"`
	AutoSave         bool     `yaml:"auto_save"`
	EnabledTools     []string `yaml:"enabled_tools"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		BackendURL:       "http://localhost:8090",
		Model:            "hivecoder-7b",
		Temperature:      0.7,
		MaxTokens:        1024,
		ConfirmCommands:  ConfirmAlways,
		ContextInjection: true,
		ToolUse:          true,
		AutoSave:         true,
		EnabledTools: []string{
			"shell_exec", "file_read", "file_write", "file_list", "file_search",
			"clipboard_read", "clipboard_write", "notify", "web_fetch",
			"fact_store", "fact_get", "vault_search",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "talos", "config.yaml")
}

// Load reads the configuration from path, or from the default location when
// path is empty. A missing file yields the defaults, not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path, or to the default location when path
// is empty.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// DataDir returns the directory for mutable state (history, conversations,
// learning queue), creating it if needed.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".talos"
	}
	dir := filepath.Join(home, ".local", "share", "talos")
	_ = os.MkdirAll(dir, 0o755)
	return dir
}
