package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/quorail/turnstile/pkg/account"
	"github.com/quorail/turnstile/pkg/registry"
)

// Config holds all application configuration
type Config struct {
	// Engine configuration
	Engine EngineConfig `yaml:"engine"`

	// Observability configuration
	Observability ObservabilityConfig `yaml:"observability"`
}

// EngineConfig holds the subscription engine settings
type EngineConfig struct {
	// Owner is the identity bootstrapped with the owner role.
	Owner string `yaml:"owner"`

	// PremiumFeeUSD and PlusFeeUSD are whole-USD prices.
	PremiumFeeUSD uint64 `yaml:"premium_fee_usd"`
	PlusFeeUSD    uint64 `yaml:"plus_fee_usd"`

	// PlusPeriod is the duration added per renewal period.
	PlusPeriod Duration `yaml:"plus_period"`

	// MaxPeriods bounds the periods payable in one subscribe call.
	MaxPeriods uint32 `yaml:"max_periods"`

	// OracleMaxStale bounds the accepted price round age. Zero keeps the
	// engine default.
	OracleMaxStale Duration `yaml:"oracle_max_stale"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel string `yaml:"log_level"`

	// Metrics
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// Event journal depth; zero keeps the recorder default.
	EventJournalSize int `yaml:"event_journal_size"`
}

// Duration wraps time.Duration so YAML values can be written in
// time.ParseDuration notation ("720h", "90s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Engine:        loadEngineConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFile loads configuration from a YAML file, then applies environment
// overrides on top.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			PremiumFeeUSD:  10,
			PlusFeeUSD:     5,
			PlusPeriod:     Duration(30 * 24 * time.Hour),
			MaxPeriods:     12,
			OracleMaxStale: Duration(time.Hour),
		},
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			MetricsEnabled: true,
		},
	}
}

// loadEngineConfig loads engine configuration from environment
func loadEngineConfig() EngineConfig {
	defaults := defaultConfig().Engine
	return EngineConfig{
		Owner:          getEnv("TURNSTILE_OWNER", ""),
		PremiumFeeUSD:  getEnvUint64("TURNSTILE_PREMIUM_FEE_USD", defaults.PremiumFeeUSD),
		PlusFeeUSD:     getEnvUint64("TURNSTILE_PLUS_FEE_USD", defaults.PlusFeeUSD),
		PlusPeriod:     Duration(getEnvDuration("TURNSTILE_PLUS_PERIOD", time.Duration(defaults.PlusPeriod))),
		MaxPeriods:     uint32(getEnvUint64("TURNSTILE_MAX_PERIODS", uint64(defaults.MaxPeriods))),
		OracleMaxStale: Duration(getEnvDuration("TURNSTILE_ORACLE_MAX_STALE", time.Duration(defaults.OracleMaxStale))),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	defaults := defaultConfig().Observability
	return ObservabilityConfig{
		LogLevel:         getEnv("TURNSTILE_LOG_LEVEL", defaults.LogLevel),
		MetricsEnabled:   getEnvBool("TURNSTILE_METRICS_ENABLED", defaults.MetricsEnabled),
		EventJournalSize: getEnvInt("TURNSTILE_EVENT_JOURNAL_SIZE", defaults.EventJournalSize),
	}
}

// applyEnvOverrides layers set environment variables over file values.
func applyEnvOverrides(cfg *Config) {
	if owner := getEnv("TURNSTILE_OWNER", ""); owner != "" {
		cfg.Engine.Owner = owner
	}
	if v := os.Getenv("TURNSTILE_PREMIUM_FEE_USD"); v != "" {
		cfg.Engine.PremiumFeeUSD = getEnvUint64("TURNSTILE_PREMIUM_FEE_USD", cfg.Engine.PremiumFeeUSD)
	}
	if v := os.Getenv("TURNSTILE_PLUS_FEE_USD"); v != "" {
		cfg.Engine.PlusFeeUSD = getEnvUint64("TURNSTILE_PLUS_FEE_USD", cfg.Engine.PlusFeeUSD)
	}
	if v := os.Getenv("TURNSTILE_PLUS_PERIOD"); v != "" {
		cfg.Engine.PlusPeriod = Duration(getEnvDuration("TURNSTILE_PLUS_PERIOD", time.Duration(cfg.Engine.PlusPeriod)))
	}
	if v := os.Getenv("TURNSTILE_MAX_PERIODS"); v != "" {
		cfg.Engine.MaxPeriods = uint32(getEnvUint64("TURNSTILE_MAX_PERIODS", uint64(cfg.Engine.MaxPeriods)))
	}
	if v := os.Getenv("TURNSTILE_ORACLE_MAX_STALE"); v != "" {
		cfg.Engine.OracleMaxStale = Duration(getEnvDuration("TURNSTILE_ORACLE_MAX_STALE", time.Duration(cfg.Engine.OracleMaxStale)))
	}
	if v := os.Getenv("TURNSTILE_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("TURNSTILE_METRICS_ENABLED"); v != "" {
		cfg.Observability.MetricsEnabled = getEnvBool("TURNSTILE_METRICS_ENABLED", cfg.Observability.MetricsEnabled)
	}
	if v := os.Getenv("TURNSTILE_EVENT_JOURNAL_SIZE"); v != "" {
		cfg.Observability.EventJournalSize = getEnvInt("TURNSTILE_EVENT_JOURNAL_SIZE", cfg.Observability.EventJournalSize)
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Engine.Owner == "" {
		return fmt.Errorf("engine owner is required")
	}
	if c.Engine.PremiumFeeUSD == 0 {
		return fmt.Errorf("premium fee must be positive")
	}
	if c.Engine.PlusFeeUSD == 0 {
		return fmt.Errorf("plus fee must be positive")
	}
	if time.Duration(c.Engine.PlusPeriod) <= 0 {
		return fmt.Errorf("plus period must be positive")
	}
	if c.Engine.MaxPeriods == 0 {
		return fmt.Errorf("max periods must be at least 1")
	}
	if time.Duration(c.Engine.OracleMaxStale) < 0 {
		return fmt.Errorf("oracle max stale must not be negative")
	}
	if c.Observability.EventJournalSize < 0 {
		return fmt.Errorf("event journal size must not be negative")
	}
	if _, err := logrus.ParseLevel(c.Observability.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Observability.LogLevel)
	}
	return nil
}

// Owner returns the configured owner identity.
func (c *Config) Owner() account.ID {
	return account.ID(c.Engine.Owner)
}

// Registry converts the engine section into the service's configuration
// record.
func (c *Config) Registry() registry.Config {
	return registry.Config{
		PremiumFeeUSD: c.Engine.PremiumFeeUSD,
		PlusFeeUSD:    c.Engine.PlusFeeUSD,
		PlusPeriod:    time.Duration(c.Engine.PlusPeriod),
		MaxPeriods:    c.Engine.MaxPeriods,
		MaxStale:      time.Duration(c.Engine.OracleMaxStale),
	}
}

// LogLevel parses the configured log level, defaulting to info on any
// value Validate would have rejected.
func (c *Config) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.Observability.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvUint64 returns an unsigned integer environment variable or a default
func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseUint(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
