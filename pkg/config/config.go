// Package config provides configuration loading and validation for rbarena.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidCapacity     = errors.New("tree capacity must not be negative")
	ErrInvalidLogLevel     = errors.New("unknown log level")
	ErrInvalidLogFormat    = errors.New("unknown log format")
	ErrInvalidOutputFormat = errors.New("unknown output format")
	ErrInvalidSampleRatio  = errors.New("sample ratio must be within [0, 1]")
	ErrInvalidOperations   = errors.New("soak operations must be positive")
	ErrInvalidValueRange   = errors.New("soak value range must be positive")
)

// Output formats.
const (
	OutputTable = "table"
	OutputPlain = "plain"
	OutputJSON  = "json"
)

// EnvPrefix is the prefix of environment variables that override config keys.
const EnvPrefix = "RBARENA"

var (
	logLevels     = []string{"debug", "info", "warn", "error"}
	logFormats    = []string{"text", "json"}
	outputFormats = []string{OutputTable, OutputPlain, OutputJSON}
)

// Config holds all configuration for rbarena.
type Config struct {
	Tree      TreeConfig      `mapstructure:"tree"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Output    OutputConfig    `mapstructure:"output"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Soak      SoakConfig      `mapstructure:"soak"`
}

// TreeConfig controls how trees are created.
type TreeConfig struct {
	// Capacity pre-sizes the arena of trees built without an explicit capacity.
	Capacity int `mapstructure:"capacity"`
	// Hibernate compresses the arena between script runs and soak rounds.
	Hibernate bool `mapstructure:"hibernate"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig controls result rendering.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
}

// SoakConfig drives the randomized soak command.
type SoakConfig struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
	Operations  int    `mapstructure:"operations"`
	ValueRange  int    `mapstructure:"value_range"`
	Seed        int64  `mapstructure:"seed"`
}

// LoadConfig loads configuration from file and environment variables. An empty
// configPath searches for rbarena.yaml in the usual places and falls back to
// defaults when none exists.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("rbarena")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("$HOME/.config/rbarena")
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when no file or environment overrides exist.
func Default() *Config {
	return &Config{
		Tree:      TreeConfig{Capacity: DefaultTreeCapacity, Hibernate: DefaultTreeHibernate},
		Logging:   LoggingConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Output:    OutputConfig{Format: DefaultOutputFormat, Color: DefaultOutputColor},
		Telemetry: TelemetryConfig{SampleRatio: DefaultSampleRatio, Environment: DefaultEnvironment},
		Soak: SoakConfig{
			Operations: DefaultSoakOperations,
			ValueRange: DefaultSoakValueRange,
			Seed:       DefaultSoakSeed,
		},
	}
}

func setDefaults(viperCfg *viper.Viper) {
	def := Default()

	viperCfg.SetDefault("tree.capacity", def.Tree.Capacity)
	viperCfg.SetDefault("tree.hibernate", def.Tree.Hibernate)

	viperCfg.SetDefault("logging.level", def.Logging.Level)
	viperCfg.SetDefault("logging.format", def.Logging.Format)

	viperCfg.SetDefault("output.format", def.Output.Format)
	viperCfg.SetDefault("output.color", def.Output.Color)

	viperCfg.SetDefault("telemetry.otlp_endpoint", def.Telemetry.OTLPEndpoint)
	viperCfg.SetDefault("telemetry.otlp_insecure", def.Telemetry.OTLPInsecure)
	viperCfg.SetDefault("telemetry.sample_ratio", def.Telemetry.SampleRatio)
	viperCfg.SetDefault("telemetry.environment", def.Telemetry.Environment)

	viperCfg.SetDefault("soak.operations", def.Soak.Operations)
	viperCfg.SetDefault("soak.value_range", def.Soak.ValueRange)
	viperCfg.SetDefault("soak.seed", def.Soak.Seed)
	viperCfg.SetDefault("soak.metrics_addr", def.Soak.MetricsAddr)
}

// Validate checks the configuration values. Call it again after overriding
// loaded values, e.g. from command-line flags.
func (config *Config) Validate() error {
	return validateConfig(config)
}

func validateConfig(config *Config) error {
	if config.Tree.Capacity < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, config.Tree.Capacity)
	}

	if !slices.Contains(logLevels, strings.ToLower(config.Logging.Level)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	if !slices.Contains(logFormats, strings.ToLower(config.Logging.Format)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	if !slices.Contains(outputFormats, config.Output.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, config.Output.Format)
	}

	if config.Telemetry.SampleRatio < 0 || config.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, config.Telemetry.SampleRatio)
	}

	if config.Soak.Operations <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidOperations, config.Soak.Operations)
	}

	if config.Soak.ValueRange <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidValueRange, config.Soak.ValueRange)
	}

	return nil
}
