// Package observability provides OpenTelemetry-based tracing, metrics, and
// structured logging for the rbarena commands.
package observability

import (
	"log/slog"
	"strings"
)

// AppMode identifies the command the binary runs.
type AppMode string

const (
	// ModeRun executes a script against a tree.
	ModeRun AppMode = "run"
	// ModeSoak drives a tree with random operations.
	ModeSoak AppMode = "soak"
	// ModeValidate checks script files only.
	ModeValidate AppMode = "validate"
)

const (
	defaultServiceName        = "rbarena"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Mode           AppMode

	// OTLPEndpoint is the OTLP gRPC collector address. Empty disables export
	// and every provider becomes a no-op.
	OTLPEndpoint string
	OTLPInsecure bool

	// SampleRatio is the root span sampling ratio. Zero samples everything.
	SampleRatio float64

	LogLevel slog.Level
	LogJSON  bool

	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeRun,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// ParseLevel maps a level name (debug, info, warn, error) to an slog level.
// Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
