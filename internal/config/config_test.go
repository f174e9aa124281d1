package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fundboard/fundboard/internal/core"
)

func TestLoad_FromFile(t *testing.T) {
	content := []byte(`
server:
  host: "127.0.0.1"
  port: 9090

upstream:
  timeout: 20s
  rate_limit: 4

relay:
  mode: remote
  base_url: "https://fundboard.example.app"
`)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Upstream.Timeout != 20*time.Second {
		t.Errorf("expected timeout 20s, got %s", cfg.Upstream.Timeout)
	}
	if cfg.Upstream.RateLimit != 4 {
		t.Errorf("expected rate_limit 4, got %f", cfg.Upstream.RateLimit)
	}
	if cfg.Relay.Mode != RelayModeRemote {
		t.Errorf("expected remote mode, got %s", cfg.Relay.Mode)
	}
	// untouched keys keep defaults
	if cfg.Upstream.Domain != "investidor10.com.br" {
		t.Errorf("expected default domain, got %s", cfg.Upstream.Domain)
	}
	if cfg.Relay.CacheMaxAge != 5*time.Minute {
		t.Errorf("expected default cache max age, got %s", cfg.Relay.CacheMaxAge)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected loaded config to be valid: %v", err)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_RELAY_URL", "https://relay.example.app")
	content := []byte(`
relay:
  mode: remote
  base_url: "${TEST_RELAY_URL}"
`)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Relay.BaseURL != "https://relay.example.app" {
		t.Errorf("expected expanded base_url, got %s", cfg.Relay.BaseURL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Upstream.Timeout != 15*time.Second {
		t.Errorf("expected default timeout 15s, got %s", cfg.Upstream.Timeout)
	}
	if cfg.Relay.Mode != RelayModeDirect {
		t.Errorf("expected direct relay mode, got %s", cfg.Relay.Mode)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr *core.Error
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid port - zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "invalid port - too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "missing domain",
			mutate:  func(c *Config) { c.Upstream.Domain = "" },
			wantErr: core.ErrConfigMissing,
		},
		{
			name:    "base url outside domain",
			mutate:  func(c *Config) { c.Upstream.BaseURL = "https://evil.example.com" },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:   "base url host with trailing dot",
			mutate: func(c *Config) { c.Upstream.BaseURL = "https://Investidor10.com.br./" },
		},
		{
			name:   "domain with trailing dot",
			mutate: func(c *Config) { c.Upstream.Domain = "investidor10.com.br." },
		},
		{
			name:    "base url on lookalike domain",
			mutate:  func(c *Config) { c.Upstream.BaseURL = "https://eviltarget-investidor10.com.br" },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "load timeout not below write timeout",
			mutate:  func(c *Config) { c.Upstream.LoadTimeout = 30 * time.Second },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "zero load timeout",
			mutate:  func(c *Config) { c.Upstream.LoadTimeout = 0 },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "zero write timeout",
			mutate:  func(c *Config) { c.Server.WriteTimeout = 0 },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "relative base url",
			mutate:  func(c *Config) { c.Upstream.BaseURL = "/api" },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Upstream.Timeout = 0 },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "rate limit without burst",
			mutate:  func(c *Config) { c.Upstream.Burst = 0 },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:   "rate limit disabled without burst",
			mutate: func(c *Config) { c.Upstream.RateLimit = 0; c.Upstream.Burst = 0 },
		},
		{
			name:    "remote mode without base url",
			mutate:  func(c *Config) { c.Relay.Mode = RelayModeRemote },
			wantErr: core.ErrConfigMissing,
		},
		{
			name:    "unknown relay mode",
			mutate:  func(c *Config) { c.Relay.Mode = "proxy" },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "negative cache age",
			mutate:  func(c *Config) { c.Relay.CacheMaxAge = -time.Second },
			wantErr: core.ErrConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Timeouts(t *testing.T) {
	content := []byte(`
server:
  write_timeout: 60s
upstream:
  timeout: 20s
  load_timeout: 45s
`)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.WriteTimeout != 60*time.Second {
		t.Errorf("expected write_timeout 60s, got %s", cfg.Server.WriteTimeout)
	}
	if cfg.Upstream.LoadTimeout != 45*time.Second {
		t.Errorf("expected load_timeout 45s, got %s", cfg.Upstream.LoadTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected loaded config to be valid: %v", err)
	}
}
