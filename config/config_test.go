package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Addr != ":8420" {
		t.Errorf("expected default addr :8420, got %s", cfg.Server.Addr)
	}
	if cfg.Analysis.DefaultModel != "gpt-3.5-turbo" {
		t.Errorf("expected default model gpt-3.5-turbo, got %s", cfg.Analysis.DefaultModel)
	}
	if cfg.Report.OutputDir != "reports" {
		t.Errorf("expected default report dir reports, got %s", cfg.Report.OutputDir)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("expected default debounce 2s, got %v", cfg.Watch.Debounce)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing server addr",
			modify:  func(c *Config) { c.Server.Addr = "" },
			wantErr: true,
		},
		{
			name:    "missing default model",
			modify:  func(c *Config) { c.Analysis.DefaultModel = "" },
			wantErr: true,
		},
		{
			name:    "negative debounce",
			modify:  func(c *Config) { c.Watch.Debounce = -time.Second },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
server:
  addr: ":9000"
  shutdown_timeout: 30s
github:
  token: "abc123"
  api_base_url: "https://github.example.com/api/v3"
analysis:
  default_model: "claude-3-haiku"
report:
  output_dir: "/var/reports"
store:
  path: "/var/lib/signalbox/runs.db"
watch:
  debounce: 5s
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("expected addr :9000, got %s", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("expected shutdown timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.GitHub.Token != "abc123" {
		t.Errorf("expected token abc123, got %s", cfg.GitHub.Token)
	}
	if cfg.GitHub.APIBaseURL != "https://github.example.com/api/v3" {
		t.Errorf("unexpected api base url %s", cfg.GitHub.APIBaseURL)
	}
	if cfg.Analysis.DefaultModel != "claude-3-haiku" {
		t.Errorf("expected model claude-3-haiku, got %s", cfg.Analysis.DefaultModel)
	}
	if cfg.Report.OutputDir != "/var/reports" {
		t.Errorf("expected report dir /var/reports, got %s", cfg.Report.OutputDir)
	}
	if cfg.Store.Path != "/var/lib/signalbox/runs.db" {
		t.Errorf("expected store path /var/lib/signalbox/runs.db, got %s", cfg.Store.Path)
	}
	if cfg.Watch.Debounce != 5*time.Second {
		t.Errorf("expected debounce 5s, got %v", cfg.Watch.Debounce)
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Server: ServerConfig{
			Addr: ":7777",
		},
		GitHub: GitHubConfig{
			Token: "override-token",
		},
	}

	base.Merge(override)

	if base.Server.Addr != ":7777" {
		t.Errorf("expected addr :7777, got %s", base.Server.Addr)
	}
	if base.GitHub.Token != "override-token" {
		t.Errorf("expected token override-token, got %s", base.GitHub.Token)
	}
	// Fields the override didn't set keep their base values
	if base.Analysis.DefaultModel != "gpt-3.5-turbo" {
		t.Errorf("expected default model to remain, got %s", base.Analysis.DefaultModel)
	}
	if base.Watch.Debounce != 2*time.Second {
		t.Errorf("expected debounce to remain, got %v", base.Watch.Debounce)
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Analysis.DefaultModel = "saved-model"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Analysis.DefaultModel != "saved-model" {
		t.Errorf("expected model saved-model, got %s", loaded.Analysis.DefaultModel)
	}
}
