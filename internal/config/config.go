package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/vertextoedge/node-disk-monitor/internal/validator"
)

// Config represents the entire application configuration
type Config struct {
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
}

// MonitorConfig contains the directory health check settings
type MonitorConfig struct {
	Dirs           []string `mapstructure:"dirs"`
	CheckInterval  string   `mapstructure:"check_interval"`
	DirPermissions string   `mapstructure:"dir_permissions"`
	DiskValidator  string   `mapstructure:"disk_validator"`

	UtilizationThresholdEnabled       bool `mapstructure:"utilization_threshold_enabled"`
	FreeSpaceThresholdEnabled         bool `mapstructure:"free_space_threshold_enabled"`
	SubAccessibilityValidationEnabled bool `mapstructure:"sub_accessibility_validation_enabled"`

	MaxDiskUtilizationPct float64 `mapstructure:"max_disk_utilization_pct"`
	LowDiskUtilizationPct float64 `mapstructure:"low_disk_utilization_pct"`
	MinFreeSpaceMB        uint64  `mapstructure:"min_free_space_mb"`
	MinFreeSpaceHighMB    uint64  `mapstructure:"min_free_space_high_mb"`
}

// HTTPConfig contains HTTP server configuration
type HTTPConfig struct {
	BindAddr     string `mapstructure:"bind_addr"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
	IdleTimeout  string `mapstructure:"idle_timeout"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig contains transition history database settings.
// An empty path disables history persistence.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// Load loads configuration from the specified file path
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("monitor.check_interval", "2m")
	viper.SetDefault("monitor.dir_permissions", "0755")
	viper.SetDefault("monitor.disk_validator", validator.NameBasic)
	viper.SetDefault("monitor.utilization_threshold_enabled", true)
	viper.SetDefault("monitor.free_space_threshold_enabled", true)
	viper.SetDefault("monitor.sub_accessibility_validation_enabled", false)
	viper.SetDefault("monitor.max_disk_utilization_pct", 90.0)
	viper.SetDefault("monitor.low_disk_utilization_pct", 80.0)
	viper.SetDefault("monitor.min_free_space_mb", 0)
	viper.SetDefault("monitor.min_free_space_high_mb", 0)
	viper.SetDefault("http.bind_addr", "0.0.0.0:8080")
	viper.SetDefault("http.read_timeout", "30s")
	viper.SetDefault("http.write_timeout", "30s")
	viper.SetDefault("http.idle_timeout", "60s")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("database.path", "")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Monitor.Dirs) == 0 {
		return fmt.Errorf("monitor.dirs must list at least one directory")
	}
	for _, dir := range c.Monitor.Dirs {
		if !filepath.IsAbs(dir) {
			return fmt.Errorf("monitor.dirs entries must be absolute paths, got %s", dir)
		}
	}

	if _, err := time.ParseDuration(c.Monitor.CheckInterval); err != nil {
		return fmt.Errorf("invalid monitor.check_interval: %w", err)
	}
	if _, err := strconv.ParseUint(c.Monitor.DirPermissions, 8, 32); err != nil {
		return fmt.Errorf("invalid monitor.dir_permissions: %w", err)
	}

	switch c.Monitor.DiskValidator {
	case validator.NameBasic, validator.NameReadWrite:
	default:
		return fmt.Errorf("invalid monitor.disk_validator: %s", c.Monitor.DiskValidator)
	}

	if c.Monitor.MaxDiskUtilizationPct < 0 || c.Monitor.MaxDiskUtilizationPct > 100 {
		return fmt.Errorf("monitor.max_disk_utilization_pct must be between 0 and 100")
	}
	if c.Monitor.LowDiskUtilizationPct < 0 || c.Monitor.LowDiskUtilizationPct > 100 {
		return fmt.Errorf("monitor.low_disk_utilization_pct must be between 0 and 100")
	}

	for _, d := range []string{c.HTTP.ReadTimeout, c.HTTP.WriteTimeout, c.HTTP.IdleTimeout} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid http timeout %q: %w", d, err)
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	return nil
}

// GetCheckInterval returns the check interval as time.Duration
func (c *MonitorConfig) GetCheckInterval() time.Duration {
	d, _ := time.ParseDuration(c.CheckInterval)
	if d == 0 {
		return 2 * time.Minute
	}
	return d
}

// GetDirPermissions returns the directory permission bits
func (c *MonitorConfig) GetDirPermissions() os.FileMode {
	bits, err := strconv.ParseUint(c.DirPermissions, 8, 32)
	if err != nil || bits == 0 {
		return 0755
	}
	return os.FileMode(bits)
}

// GetReadTimeout returns the read timeout as time.Duration
func (c *HTTPConfig) GetReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.ReadTimeout)
	if d == 0 {
		return 30 * time.Second
	}
	return d
}

// GetWriteTimeout returns the write timeout as time.Duration
func (c *HTTPConfig) GetWriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	if d == 0 {
		return 30 * time.Second
	}
	return d
}

// GetIdleTimeout returns the idle timeout as time.Duration
func (c *HTTPConfig) GetIdleTimeout() time.Duration {
	d, _ := time.ParseDuration(c.IdleTimeout)
	if d == 0 {
		return 60 * time.Second
	}
	return d
}
