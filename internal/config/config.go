package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/fundboard/fundboard/internal/core"
	"github.com/fundboard/fundboard/internal/relay"
	"github.com/spf13/viper"
)

// Relay modes
const (
	RelayModeDirect = "direct"
	RelayModeRemote = "remote"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Relay    RelayConfig    `mapstructure:"relay"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// UpstreamConfig describes the third-party site the relay talks to.
type UpstreamConfig struct {
	Domain      string        `mapstructure:"domain"`       // registered domain for the allow-list
	BaseURL     string        `mapstructure:"base_url"`     // prefix for endpoint templates
	Timeout     time.Duration `mapstructure:"timeout"`      // per call
	LoadTimeout time.Duration `mapstructure:"load_timeout"` // whole snapshot, must fit in server.write_timeout
	RateLimit   float64       `mapstructure:"rate_limit"`   // requests per second, 0 disables
	Burst       int           `mapstructure:"burst"`
}

// RelayConfig selects how the pipeline reaches the upstream and how the
// relay endpoint answers.
type RelayConfig struct {
	Mode                      string        `mapstructure:"mode"`     // "direct" or "remote"
	BaseURL                   string        `mapstructure:"base_url"` // deployed relay, remote mode only
	MaxBodyBytes              int64         `mapstructure:"max_body_bytes"`
	CacheMaxAge               time.Duration `mapstructure:"cache_max_age"`
	CacheStaleWhileRevalidate time.Duration `mapstructure:"cache_stale_while_revalidate"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.SetEnvPrefix("FUNDBOARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			Mode:         "release",
			WriteTimeout: 30 * time.Second,
		},
		Upstream: UpstreamConfig{
			Domain:      "investidor10.com.br",
			BaseURL:     "https://investidor10.com.br",
			Timeout:     15 * time.Second,
			LoadTimeout: 25 * time.Second,
			RateLimit:   10,
			Burst:       6,
		},
		Relay: RelayConfig{
			Mode:                      RelayModeDirect,
			MaxBodyBytes:              5 << 20,
			CacheMaxAge:               5 * time.Minute,
			CacheStaleWhileRevalidate: 10 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	// Upstream validation
	if c.Upstream.Domain == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("upstream domain is required"))
	}
	base, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || !base.IsAbs() || base.Hostname() == "" {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("upstream base_url must be an absolute URL, got %q", c.Upstream.BaseURL))
	}
	if !relay.HostAllowed(base.Hostname(), c.Upstream.Domain) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("upstream base_url host %s is outside domain %s", base.Hostname(), c.Upstream.Domain))
	}
	if c.Upstream.Timeout <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("upstream timeout must be positive, got %s", c.Upstream.Timeout))
	}
	if c.Server.WriteTimeout <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("server write_timeout must be positive, got %s", c.Server.WriteTimeout))
	}
	if c.Upstream.LoadTimeout <= 0 || c.Upstream.LoadTimeout >= c.Server.WriteTimeout {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("upstream load_timeout must be positive and below server write_timeout %s, got %s",
				c.Server.WriteTimeout, c.Upstream.LoadTimeout))
	}
	if c.Upstream.RateLimit < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("upstream rate_limit cannot be negative, got %f", c.Upstream.RateLimit))
	}
	if c.Upstream.RateLimit > 0 && c.Upstream.Burst < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("upstream burst must be at least 1 when rate limiting, got %d", c.Upstream.Burst))
	}

	// Relay validation
	switch c.Relay.Mode {
	case RelayModeDirect:
	case RelayModeRemote:
		if c.Relay.BaseURL == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("relay base_url required when mode is remote"))
		}
		if u, err := url.Parse(c.Relay.BaseURL); err != nil || !u.IsAbs() {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("relay base_url must be an absolute URL, got %q", c.Relay.BaseURL))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("relay mode must be %q or %q, got %q", RelayModeDirect, RelayModeRemote, c.Relay.Mode))
	}
	if c.Relay.MaxBodyBytes <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("relay max_body_bytes must be positive, got %d", c.Relay.MaxBodyBytes))
	}
	if c.Relay.CacheMaxAge < 0 || c.Relay.CacheStaleWhileRevalidate < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("relay cache durations cannot be negative"))
	}

	return nil
}
