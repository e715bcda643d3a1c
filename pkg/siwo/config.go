package siwo

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config manages search configuration using Viper
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()

	// Search parameters
	v.SetDefault("search.strength_variant", string(VariantA))
	v.SetDefault("search.timeout_seconds", 10.0)
	v.SetDefault("search.amend", true)
	v.SetDefault("search.max_common_policy", string(MaxCommonLazy))

	// Input parameters
	v.SetDefault("input.weighted", false)
	v.SetDefault("input.delimiter", "")

	// Output parameters
	v.SetDefault("output.format", "text")

	// Logging parameters
	v.SetDefault("logging.level", "info")

	// Server parameters
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("jobs.result_ttl", time.Hour)
	v.SetDefault("jobs.cleanup_interval", 5*time.Minute)

	v.SetEnvPrefix("SIWO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	if err := c.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return c.Validate()
}

// Validate checks that enumerated settings hold known values
func (c *Config) Validate() error {
	if _, err := ParseStrengthVariant(c.v.GetString("search.strength_variant")); err != nil {
		return err
	}
	if _, err := ParseMaxCommonPolicy(c.v.GetString("search.max_common_policy")); err != nil {
		return err
	}
	if c.v.GetFloat64("search.timeout_seconds") < 0 {
		return fmt.Errorf("search.timeout_seconds must not be negative")
	}
	return nil
}

// Getters for search parameters
func (c *Config) StrengthVariant() StrengthVariant {
	variant, err := ParseStrengthVariant(c.v.GetString("search.strength_variant"))
	if err != nil {
		return VariantA
	}
	return variant
}
func (c *Config) TimeoutSeconds() float64 { return c.v.GetFloat64("search.timeout_seconds") }
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds() * float64(time.Second))
}
func (c *Config) Amend() bool { return c.v.GetBool("search.amend") }
func (c *Config) MaxCommonPolicy() MaxCommonPolicy {
	policy, err := ParseMaxCommonPolicy(c.v.GetString("search.max_common_policy"))
	if err != nil {
		return MaxCommonLazy
	}
	return policy
}

func (c *Config) Weighted() bool { return c.v.GetBool("input.weighted") }
func (c *Config) Delimiter() string { return c.v.GetString("input.delimiter") }
func (c *Config) OutputFormat() string { return c.v.GetString("output.format") }
func (c *Config) LogLevel() string { return c.v.GetString("logging.level") }

func (c *Config) ServerAddress() string { return c.v.GetString("server.address") }
func (c *Config) AllowedOrigins() []string { return c.v.GetStringSlice("server.allowed_origins") }
func (c *Config) ResultTTL() time.Duration { return c.v.GetDuration("jobs.result_ttl") }
func (c *Config) JobCleanupInterval() time.Duration { return c.v.GetDuration("jobs.cleanup_interval") }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// Viper exposes the underlying store for flag binding
func (c *Config) Viper() *viper.Viper {
	return c.v
}

// Clone returns an independent copy of the current settings
func (c *Config) Clone() *Config {
	clone := NewConfig()
	for _, key := range c.v.AllKeys() {
		clone.v.Set(key, c.v.Get(key))
	}
	return clone
}

// CreateLogger creates a zerolog logger based on config
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "siwo").Logger()
}
