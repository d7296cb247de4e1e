package observe

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "MEDIAPROXY_"

// Config holds all configuration for the Observer.
//
// Environment (see LoadConfig):
//
//	MEDIAPROXY_SERVICE_NAME        default mediaproxy
//	MEDIAPROXY_SERVICE_VERSION
//	MEDIAPROXY_TRACING_ENABLED     MEDIAPROXY_TRACING_EXPORTER  MEDIAPROXY_TRACING_SAMPLE_PCT
//	MEDIAPROXY_METRICS_ENABLED     MEDIAPROXY_METRICS_EXPORTER
//	MEDIAPROXY_LOG_ENABLED         MEDIAPROXY_LOG_LEVEL
type Config struct {
	ServiceName string        `env:"SERVICE_NAME" envDefault:"mediaproxy"`
	Version     string        `env:"SERVICE_VERSION"`
	Tracing     TracingConfig `envPrefix:"TRACING_"`
	Metrics     MetricsConfig `envPrefix:"METRICS_"`
	Logging     LoggingConfig `envPrefix:"LOG_"`
}

// TracingConfig configures the tracing subsystem.
type TracingConfig struct {
	Enabled   bool    `env:"ENABLED"`
	Exporter  string  `env:"EXPORTER" envDefault:"otlp"` // otlp|jaeger|stdout|none
	SamplePct float64 `env:"SAMPLE_PCT" envDefault:"1.0"`
}

// MetricsConfig configures the metrics subsystem.
type MetricsConfig struct {
	Enabled  bool   `env:"ENABLED"`
	Exporter string `env:"EXPORTER" envDefault:"otlp"` // otlp|prometheus|stdout|none
}

// LoggingConfig configures the logging subsystem.
type LoggingConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Level   string `env:"LEVEL" envDefault:"info"` // debug|info|warn|error
}

// LoadConfig reads and validates the configuration from the process
// environment.
func LoadConfig() (Config, error) {
	return loadConfig(env.Options{Prefix: EnvPrefix})
}

// LoadConfigFrom reads the configuration from vars. Keys carry the
// MEDIAPROXY_ prefix.
func LoadConfigFrom(vars map[string]string) (Config, error) {
	return loadConfig(env.Options{Prefix: EnvPrefix, Environment: vars})
}

func loadConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("observe: parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks only the subsystems that are enabled. An empty exporter
// name or log level selects the default.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}

	if t := c.Tracing; t.Enabled {
		switch t.Exporter {
		case "", "none", "otlp", "jaeger", "stdout":
		default:
			return fmt.Errorf("%w: %q", ErrInvalidTracingExporter, t.Exporter)
		}
		if t.SamplePct < MinSamplePct || t.SamplePct > MaxSamplePct {
			return fmt.Errorf("%w, got: %f", ErrInvalidSamplePct, t.SamplePct)
		}
	}

	if m := c.Metrics; m.Enabled {
		switch m.Exporter {
		case "", "none", "otlp", "prometheus", "stdout":
		default:
			return fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, m.Exporter)
		}
	}

	if l := c.Logging; l.Enabled {
		switch l.Level {
		case "", "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
		}
	}

	return nil
}
