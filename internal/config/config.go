package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rewired-gh/assocmine/internal/rank"
)

// Config represents the complete application configuration
type Config struct {
	Mining     MiningConfig     `mapstructure:"mining"`
	Constraint ConstraintConfig `mapstructure:"constraint"`
	Source     SourceConfig     `mapstructure:"source"`
	Discretize DiscretizeConfig `mapstructure:"discretize"`
	Report     ReportConfig     `mapstructure:"report"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// MiningConfig holds the mining thresholds
type MiningConfig struct {
	MinSupport    float64 `mapstructure:"min_support"`
	MinConfidence float64 `mapstructure:"min_confidence"`
	MaxLength     int     `mapstructure:"max_length"`
	Workers       int     `mapstructure:"workers"`
}

// ConstraintConfig restricts which labels may appear on each side of a rule
type ConstraintConfig struct {
	LHS  []string `mapstructure:"lhs"`
	RHS  []string `mapstructure:"rhs"`
	None []string `mapstructure:"none"`
}

// SourceConfig holds input table configuration
type SourceConfig struct {
	Path           string        `mapstructure:"path"`
	URL            string        `mapstructure:"url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
	EntityColumn   string        `mapstructure:"entity_column"`
	Columns        []string      `mapstructure:"columns"`
}

// Location returns the configured URL, or the path when no URL is set.
func (s SourceConfig) Location() string {
	if s.URL != "" {
		return s.URL
	}
	return s.Path
}

// DiscretizeConfig holds quartile binning configuration
type DiscretizeConfig struct {
	Columns []string `mapstructure:"columns"`
	Labels  []string `mapstructure:"labels"`
}

// ReportConfig holds ranking and presentation configuration
type ReportConfig struct {
	TopK    int     `mapstructure:"top_k"`
	SortBy  string  `mapstructure:"sort_by"`
	Filter  string  `mapstructure:"filter"`
	Side    string  `mapstructure:"side"`
	MinLift float64 `mapstructure:"min_lift"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// StorageConfig holds report archive configuration
type StorageConfig struct {
	FilePath        string `mapstructure:"file_path"`
	MaxReports      int    `mapstructure:"max_reports"`
	FilePermissions uint32 `mapstructure:"file_permissions"`
	DirPermissions  uint32 `mapstructure:"dir_permissions"`
}

// FileMode returns the archive file permissions.
func (s StorageConfig) FileMode() os.FileMode {
	return os.FileMode(s.FilePermissions)
}

// DirMode returns the archive directory permissions.
func (s StorageConfig) DirMode() os.FileMode {
	return os.FileMode(s.DirPermissions)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables. An empty
// path uses defaults and the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// ASSOCMINE_MINING_MIN_SUPPORT overrides mining.min_support
	v.SetEnvPrefix("ASSOCMINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Mining defaults
	v.SetDefault("mining.min_support", 0.1)
	v.SetDefault("mining.min_confidence", 0.8)
	v.SetDefault("mining.max_length", 0)
	v.SetDefault("mining.workers", 1)

	// List keys need a default so AutomaticEnv can override them.
	// Env values are comma separated.
	v.SetDefault("constraint.lhs", []string{})
	v.SetDefault("constraint.rhs", []string{})
	v.SetDefault("constraint.none", []string{})
	v.SetDefault("source.columns", []string{})
	v.SetDefault("discretize.columns", []string{})
	v.SetDefault("discretize.labels", []string{})

	// Source defaults
	v.SetDefault("source.path", "")
	v.SetDefault("source.url", "")
	v.SetDefault("source.timeout", "30s")
	v.SetDefault("source.max_retries", 3)
	v.SetDefault("source.retry_delay_base", "1s")
	v.SetDefault("source.entity_column", "")

	// Report defaults
	v.SetDefault("report.top_k", 20)
	v.SetDefault("report.sort_by", rank.ByLift)
	v.SetDefault("report.filter", "")
	v.SetDefault("report.side", rank.SideAny)
	v.SetDefault("report.min_lift", 0.0)

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "2s")

	// Storage defaults
	v.SetDefault("storage.file_path", "./data/assocmine.json")
	v.SetDefault("storage.max_reports", 20)
	v.SetDefault("storage.file_permissions", 0o644)
	v.SetDefault("storage.dir_permissions", 0o755)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Mining config
	if c.Mining.MinSupport <= 0.0 || c.Mining.MinSupport > 1.0 {
		return fmt.Errorf("mining.min_support must be in (0, 1]")
	}
	if c.Mining.MinConfidence <= 0.0 || c.Mining.MinConfidence > 1.0 {
		return fmt.Errorf("mining.min_confidence must be in (0, 1]")
	}
	if c.Mining.MaxLength < 0 {
		return fmt.Errorf("mining.max_length must not be negative")
	}
	if c.Mining.Workers < 1 {
		return fmt.Errorf("mining.workers must be at least 1")
	}

	// Validate Source config
	if c.Source.Path != "" && c.Source.URL != "" {
		return fmt.Errorf("source.path and source.url are mutually exclusive")
	}
	if c.Source.URL != "" && c.Source.Timeout < time.Second {
		return fmt.Errorf("source.timeout must be at least 1 second")
	}

	// Validate Discretize config
	if n := len(c.Discretize.Labels); n != 0 && n != 4 {
		return fmt.Errorf("discretize.labels must contain exactly 4 labels, got %d", n)
	}

	// Validate Report config
	if c.Report.TopK < 0 {
		return fmt.Errorf("report.top_k must not be negative")
	}
	if !rank.ValidMetric(c.Report.SortBy) {
		return fmt.Errorf("report.sort_by must be one of: lift, confidence, support, count")
	}
	validSides := map[string]bool{rank.SideAny: true, rank.SideLHS: true, rank.SideRHS: true}
	if !validSides[c.Report.Side] {
		return fmt.Errorf("report.side must be one of: any, lhs, rhs")
	}
	if c.Report.MinLift < 0 {
		return fmt.Errorf("report.min_lift must not be negative")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	// Validate Storage config
	if c.Storage.FilePath == "" {
		return fmt.Errorf("storage.file_path is required")
	}
	if c.Storage.MaxReports < 1 {
		return fmt.Errorf("storage.max_reports must be at least 1")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// ValidateSource checks that an input table is configured. Commands that only
// read the archive skip it.
func (c *Config) ValidateSource() error {
	if c.Source.Location() == "" {
		return fmt.Errorf("one of source.path or source.url is required")
	}
	return nil
}
