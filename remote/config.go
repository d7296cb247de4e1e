package remote

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "MEDIAPROXY_"

// Defaults applied by LoadConfig and NewClient.
const (
	DefaultTimeout          = 30 * time.Second
	DefaultMaxResponseBytes = 256 << 20
	DefaultIssuer           = "mediaproxy"
	DefaultTokenTTL         = 5 * time.Minute
)

// Config configures the remote video service client.
type Config struct {
	BaseURL          string        `env:"BASE_URL"`
	Timeout          time.Duration `env:"TIMEOUT" envDefault:"30s"`
	MaxResponseBytes int64         `env:"MAX_RESPONSE_BYTES" envDefault:"268435456"`

	// ProbePath is requested once during construction when set.
	ProbePath string `env:"PROBE_PATH"`

	APIKey     string        `env:"API_KEY"`
	SigningKey string        `env:"SIGNING_KEY"`
	KeyID      string        `env:"KEY_ID"`
	Issuer     string        `env:"ISSUER" envDefault:"mediaproxy"`
	Audience   string        `env:"AUDIENCE"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"5m"`
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() (Config, error) {
	return load(env.Options{Prefix: EnvPrefix})
}

// LoadConfigFrom reads the configuration from vars instead of the process
// environment. Keys carry the MEDIAPROXY_ prefix.
func LoadConfigFrom(vars map[string]string) (Config, error) {
	return load(env.Options{Prefix: EnvPrefix, Environment: vars})
}

func load(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if c.Issuer == "" {
		c.Issuer = DefaultIssuer
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = DefaultTokenTTL
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: base URL: %w", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: base URL scheme must be http or https, got %q", ErrInvalidConfig, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: base URL has no host", ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	if c.MaxResponseBytes < 0 {
		return fmt.Errorf("%w: max response bytes must not be negative", ErrInvalidConfig)
	}
	return nil
}
