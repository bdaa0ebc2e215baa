package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
monitor:
  dirs:
    - /data/1
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Monitor.GetCheckInterval() != 2*time.Minute {
		t.Errorf("check interval = %v, want 2m", cfg.Monitor.GetCheckInterval())
	}
	if cfg.Monitor.GetDirPermissions() != 0755 {
		t.Errorf("dir permissions = %o, want 0755", cfg.Monitor.GetDirPermissions())
	}
	if cfg.Monitor.DiskValidator != "basic" {
		t.Errorf("disk validator = %s, want basic", cfg.Monitor.DiskValidator)
	}
	if !cfg.Monitor.UtilizationThresholdEnabled {
		t.Error("utilization threshold disabled by default")
	}
	if cfg.Monitor.MaxDiskUtilizationPct != 90.0 || cfg.Monitor.LowDiskUtilizationPct != 80.0 {
		t.Errorf("utilization cutoffs = %v/%v, want 90/80",
			cfg.Monitor.MaxDiskUtilizationPct, cfg.Monitor.LowDiskUtilizationPct)
	}
	if cfg.HTTP.BindAddr != "0.0.0.0:8080" {
		t.Errorf("bind addr = %s", cfg.HTTP.BindAddr)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %s/%s, want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.Database.Path != "" {
		t.Errorf("database path = %s, want empty", cfg.Database.Path)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
monitor:
  dirs:
    - /data/1
    - /data/2
  check_interval: 30s
  dir_permissions: "0750"
  disk_validator: read-write
  sub_accessibility_validation_enabled: true
  max_disk_utilization_pct: 95
  low_disk_utilization_pct: 85
  min_free_space_mb: 512
  min_free_space_high_mb: 1024
http:
  bind_addr: 127.0.0.1:9090
logging:
  level: debug
  format: text
database:
  path: /var/lib/disk-monitor/history.db
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Monitor.Dirs) != 2 {
		t.Errorf("dirs = %v, want 2 entries", cfg.Monitor.Dirs)
	}
	if cfg.Monitor.GetCheckInterval() != 30*time.Second {
		t.Errorf("check interval = %v, want 30s", cfg.Monitor.GetCheckInterval())
	}
	if cfg.Monitor.GetDirPermissions() != 0750 {
		t.Errorf("dir permissions = %o, want 0750", cfg.Monitor.GetDirPermissions())
	}
	if cfg.Monitor.DiskValidator != "read-write" {
		t.Errorf("disk validator = %s", cfg.Monitor.DiskValidator)
	}
	if !cfg.Monitor.SubAccessibilityValidationEnabled {
		t.Error("sub accessibility validation not enabled")
	}
	if cfg.Monitor.MinFreeSpaceMB != 512 || cfg.Monitor.MinFreeSpaceHighMB != 1024 {
		t.Errorf("free space cutoffs = %d/%d, want 512/1024",
			cfg.Monitor.MinFreeSpaceMB, cfg.Monitor.MinFreeSpaceHighMB)
	}
	if cfg.Database.Path != "/var/lib/disk-monitor/history.db" {
		t.Errorf("database path = %s", cfg.Database.Path)
	}
}

func TestLoad_InvalidConfigs(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "no dirs",
			content: "monitor: {}\n",
		},
		{
			name: "relative dir",
			content: `
monitor:
  dirs:
    - data/relative
`,
		},
		{
			name: "bad check interval",
			content: `
monitor:
  dirs: [/data/1]
  check_interval: often
`,
		},
		{
			name: "bad permissions",
			content: `
monitor:
  dirs: [/data/1]
  dir_permissions: "0999"
`,
		},
		{
			name: "unknown validator",
			content: `
monitor:
  dirs: [/data/1]
  disk_validator: thorough
`,
		},
		{
			name: "utilization out of range",
			content: `
monitor:
  dirs: [/data/1]
  max_disk_utilization_pct: 150
`,
		},
		{
			name: "bad log level",
			content: `
monitor:
  dirs: [/data/1]
logging:
  level: verbose
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("Load() succeeded, want error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() succeeded for missing file, want error")
	}
}
