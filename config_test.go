package goAuthClient

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults valid",
			mutate:    func(c *Config) {},
			wantValid: true,
		},
		{
			name: "home route relative path invalid",
			mutate: func(c *Config) {
				c.Routes.Home = "home"
			},
			wantValid: false,
		},
		{
			name: "confirm route absolute url valid",
			mutate: func(c *Config) {
				c.Routes.Confirm = "https://app.example.com/confirm"
			},
			wantValid: true,
		},
		{
			name: "confirm route empty invalid",
			mutate: func(c *Config) {
				c.Routes.Confirm = ""
			},
			wantValid: false,
		},
		{
			name: "oauth api server invalid scheme",
			mutate: func(c *Config) {
				c.OAuth.APIServer = "ftp://auth.example.com"
			},
			wantValid: false,
		},
		{
			name: "oauth providers valid",
			mutate: func(c *Config) {
				c.OAuth.Providers = []string{"github", " google"}
			},
			wantValid: true,
		},
		{
			name: "oauth provider password invalid",
			mutate: func(c *Config) {
				c.OAuth.Providers = []string{"password"}
			},
			wantValid: false,
		},
		{
			name: "leeway too large",
			mutate: func(c *Config) {
				c.Session.ExpiryLeeway = 10 * time.Minute
			},
			wantValid: false,
		},
		{
			name: "leeway negative",
			mutate: func(c *Config) {
				c.Session.ExpiryLeeway = -time.Second
			},
			wantValid: false,
		},
		{
			name: "session ttl negative",
			mutate: func(c *Config) {
				c.Session.TTL = -time.Minute
			},
			wantValid: false,
		},
		{
			name: "redis prefix whitespace",
			mutate: func(c *Config) {
				c.Session.RedisPrefix = "g ac"
			},
			wantValid: false,
		},
		{
			name: "transport base url valid",
			mutate: func(c *Config) {
				c.Transport.BaseURL = "http://localhost:3030"
			},
			wantValid: true,
		},
		{
			name: "transport base url missing host",
			mutate: func(c *Config) {
				c.Transport.BaseURL = "http://"
			},
			wantValid: false,
		},
		{
			name: "transport timeout negative",
			mutate: func(c *Config) {
				c.Transport.Timeout = -time.Second
			},
			wantValid: false,
		},
		{
			name: "observer enabled zero buffer",
			mutate: func(c *Config) {
				c.Observer.Enabled = true
				c.Observer.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name: "observer disabled zero buffer",
			mutate: func(c *Config) {
				c.Observer.BufferSize = 0
			},
			wantValid: true,
		},
		{
			name: "latency without metrics",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.EnableLatencyHistograms = true
			},
			wantValid: false,
		},
		{
			name: "log format text",
			mutate: func(c *Config) {
				c.Logging.Format = "text"
			},
			wantValid: true,
		},
		{
			name: "log format xml",
			mutate: func(c *Config) {
				c.Logging.Format = "xml"
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tt.wantValid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("GOAUTH_CLIENT_TRANSPORT_BASE_URL", "http://auth.example.com")
	t.Setenv("GOAUTH_CLIENT_TRANSPORT_TIMEOUT", "3s")
	t.Setenv("GOAUTH_CLIENT_MAGIC_LINK_SMS_ENABLED", "true")
	t.Setenv("GOAUTH_CLIENT_OAUTH_PROVIDERS", "github,facebook")
	t.Setenv("GOAUTH_CLIENT_SESSION_PROFILE", "work")
	t.Setenv("GOAUTH_CLIENT_ROUTE_CONFIRM", "/verify")
	t.Setenv("GOAUTH_CLIENT_LOCALE", "fr")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.Transport.BaseURL != "http://auth.example.com" {
		t.Fatalf("unexpected base url %q", cfg.Transport.BaseURL)
	}
	if cfg.Transport.Timeout != 3*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.Transport.Timeout)
	}
	if !cfg.MagicLink.SMSEnabled || !cfg.MagicLink.EmailEnabled {
		t.Fatalf("unexpected magic link config %+v", cfg.MagicLink)
	}
	if len(cfg.OAuth.Providers) != 2 || cfg.OAuth.Providers[1] != "facebook" {
		t.Fatalf("unexpected providers %v", cfg.OAuth.Providers)
	}
	if cfg.Session.Profile != "work" || cfg.Routes.Confirm != "/verify" || cfg.Locale != "fr" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Routes.Home != "/" {
		t.Fatalf("expected default home route, got %q", cfg.Routes.Home)
	}
	if cfg.apiServer() != "http://auth.example.com" {
		t.Fatalf("expected api server to fall back to base url, got %q", cfg.apiServer())
	}
}

func TestLoadConfigFromEnvRejectsInvalid(t *testing.T) {
	t.Setenv("GOAUTH_CLIENT_SESSION_EXPIRY_LEEWAY", "1h")
	if _, err := LoadConfigFromEnv(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadConfigFromEnvParseError(t *testing.T) {
	t.Setenv("GOAUTH_CLIENT_TRANSPORT_TIMEOUT", "soon")
	if _, err := LoadConfigFromEnv(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCloneConfigCopiesProviders(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OAuth.Providers = []string{"github"}
	out := cloneConfig(cfg)
	out.OAuth.Providers[0] = "google"
	if cfg.OAuth.Providers[0] != "github" {
		t.Fatal("clone shares provider slice")
	}
}
