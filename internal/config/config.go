package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/lesson-condenser/internal/planner"
)

const (
	defaultPort           = "8080"
	defaultDataFile       = "data/lessons.json"
	defaultLogLevel       = "info"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50

	// FormatText renders one line per day.
	FormatText = "text"
	// FormatJSON renders the schedule as JSON.
	FormatJSON = "json"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	DataFile             string
	AlreadyComplete      int
	TotalDays            int
	LogLevel             string
	Output               OutputConfig
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// OutputConfig controls how the CLI presents a schedule.
type OutputConfig struct {
	Format     string
	ShowHours  bool
	ShowTitles bool
	Color      bool
	Summary    bool
}

// Request returns the planning request described by the configuration.
func (c Config) Request() planner.Request {
	return planner.Request{
		AlreadyComplete: c.AlreadyComplete,
		TotalDays:       c.TotalDays,
	}
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	DataFile             string        `yaml:"data_file"`
	AlreadyComplete      *int          `yaml:"already_complete"`
	TotalDays            *int          `yaml:"total_days"`
	LogLevel             string        `yaml:"log_level"`
	Output               yamlOutput    `yaml:"output"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlOutput represents the output section in YAML.
type yamlOutput struct {
	Format     string `yaml:"format"`
	ShowHours  *bool  `yaml:"hours"`
	ShowTitles *bool  `yaml:"titles"`
	Color      *bool  `yaml:"color"`
	Summary    *bool  `yaml:"summary"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides. Nil fields were not set.
type CLIOverrides struct {
	ConfigFile      string
	Port            *string
	DataFile        *string
	AlreadyComplete *int
	TotalDays       *int
	LogLevel        *string
	Format          *string
	ShowHours       *bool
	ShowTitles      *bool
	Color           *bool
	Summary         *bool
	RateLimitRPS    *float64
	RateLimitBurst  *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Apply environment variables
	applyEnvConfig(&cfg)

	// Load from YAML file if specified (overrides env)
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	// Validate final configuration
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		DataFile:             defaultDataFile,
		AlreadyComplete:      planner.DefaultAlreadyComplete,
		TotalDays:            planner.DefaultTotalDays,
		LogLevel:             defaultLogLevel,
		Output:               OutputConfig{Format: FormatText},
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}
	if yamlCfg.DataFile != "" {
		cfg.DataFile = yamlCfg.DataFile
	}
	if yamlCfg.AlreadyComplete != nil {
		cfg.AlreadyComplete = *yamlCfg.AlreadyComplete
	}
	if yamlCfg.TotalDays != nil {
		cfg.TotalDays = *yamlCfg.TotalDays
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	if yamlCfg.Output.Format != "" {
		cfg.Output.Format = yamlCfg.Output.Format
	}
	setBool(&cfg.Output.ShowHours, yamlCfg.Output.ShowHours)
	setBool(&cfg.Output.ShowTitles, yamlCfg.Output.ShowTitles)
	setBool(&cfg.Output.Color, yamlCfg.Output.Color)
	setBool(&cfg.Output.Summary, yamlCfg.Output.Summary)

	durations := []struct {
		raw    string
		target *time.Duration
		name   string
	}{
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod, "shutdown_grace_period"},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout, "read_header_timeout"},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout, "write_timeout"},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout, "idle_timeout"},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.target = parsed
	}

	setBool(&cfg.EnableRequestLogging, yamlCfg.EnableRequestLogging)

	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if file := strings.TrimSpace(os.Getenv("LESSONS_FILE")); file != "" {
		cfg.DataFile = file
	}

	if raw := strings.TrimSpace(os.Getenv("ALREADY_COMPLETE")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.AlreadyComplete = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("TOTAL_DAYS")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.TotalDays = value
		}
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}
	if overrides.DataFile != nil && *overrides.DataFile != "" {
		cfg.DataFile = *overrides.DataFile
	}
	if overrides.AlreadyComplete != nil {
		cfg.AlreadyComplete = *overrides.AlreadyComplete
	}
	if overrides.TotalDays != nil {
		cfg.TotalDays = *overrides.TotalDays
	}
	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}
	if overrides.Format != nil && *overrides.Format != "" {
		cfg.Output.Format = *overrides.Format
	}
	setBool(&cfg.Output.ShowHours, overrides.ShowHours)
	setBool(&cfg.Output.ShowTitles, overrides.ShowTitles)
	setBool(&cfg.Output.Color, overrides.Color)
	setBool(&cfg.Output.Summary, overrides.Summary)

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}
	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.AlreadyComplete < 0 {
		return fmt.Errorf("already complete must be >= 0, got %d", cfg.AlreadyComplete)
	}
	if cfg.TotalDays < 1 {
		return fmt.Errorf("total days must be >= 1, got %d", cfg.TotalDays)
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	switch cfg.Output.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown output format %q", cfg.Output.Format)
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
