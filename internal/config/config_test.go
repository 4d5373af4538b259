package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.BackendURL != "http://localhost:8090" {
		t.Errorf("BackendURL = %q", cfg.BackendURL)
	}
	if cfg.ConfirmCommands != ConfirmAlways {
		t.Errorf("ConfirmCommands = %q", cfg.ConfirmCommands)
	}
	if !cfg.ToolUse || !cfg.ContextInjection || !cfg.AutoSave {
		t.Error("tool use, context injection, and auto save should default on")
	}
	if len(cfg.EnabledTools) == 0 {
		t.Error("EnabledTools should not be empty")
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != Default().Model {
		t.Errorf("Model = %q", cfg.Model)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "backend_url: http://192.168.1.50:8090\nmodel: custom-model\nconfirm_commands: smart\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BackendURL != "http://192.168.1.50:8090" {
		t.Errorf("BackendURL = %q", cfg.BackendURL)
	}
	if cfg.Model != "custom-model" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.ConfirmCommands != ConfirmSmart {
		t.Errorf("ConfirmCommands = %q", cfg.ConfirmCommands)
	}
	// Untouched fields keep their defaults.
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature = %v", cfg.Temperature)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("model: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Model = "round-trip"
	cfg.ToolUse = false
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Model != "round-trip" {
		t.Errorf("Model = %q", loaded.Model)
	}
	if loaded.ToolUse {
		t.Error("ToolUse should stay false")
	}
}
