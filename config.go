package goAuthClient

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/MrEthical07/goAuthClient/model"
)

// EnvPrefix prefixes every variable read by [LoadConfigFromEnv].
const EnvPrefix = "GOAUTH_CLIENT_"

// Config holds every tunable of a [Client].
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Routes    RoutesConfig    `envPrefix:"ROUTE_"`
	MagicLink MagicLinkConfig `envPrefix:"MAGIC_LINK_"`
	OAuth     OAuthConfig     `envPrefix:"OAUTH_"`
	Session   SessionConfig   `envPrefix:"SESSION_"`
	Transport TransportConfig `envPrefix:"TRANSPORT_"`
	Observer  ObserverConfig  `envPrefix:"OBSERVER_"`
	Metrics   MetricsConfig   `envPrefix:"METRICS_"`
	Logging   LoggingConfig   `envPrefix:"LOG_"`
	// Locale selects the alert text translation, e.g. "en-US" or "fr".
	Locale string `env:"LOCALE"`
}

/*
====================================
ROUTES CONFIG
====================================
*/

// RoutesConfig holds the navigation targets flows return.
type RoutesConfig struct {
	Home    string `env:"HOME"`
	Confirm string `env:"CONFIRM"`
}

/*
====================================
MAGIC LINK CONFIG
====================================
*/

// MagicLinkConfig enables magic-link delivery channels.
type MagicLinkConfig struct {
	EmailEnabled bool `env:"EMAIL_ENABLED"`
	SMSEnabled   bool `env:"SMS_ENABLED"`
}

/*
====================================
OAUTH CONFIG
====================================
*/

// OAuthConfig controls OAuth redirects. APIServer defaults to
// Transport.BaseURL; an empty Providers list allows github, google and
// facebook.
type OAuthConfig struct {
	APIServer string   `env:"API_SERVER"`
	Providers []string `env:"PROVIDERS" envSeparator:","`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls persisted auth state.
type SessionConfig struct {
	// SkipExpiredTokens makes the bootstrapper drop stored JWTs whose exp
	// claim has passed without a network call.
	SkipExpiredTokens bool          `env:"SKIP_EXPIRED_TOKENS"`
	ExpiryLeeway      time.Duration `env:"EXPIRY_LEEWAY"`
	RedisPrefix       string        `env:"REDIS_PREFIX"`
	Profile           string        `env:"PROFILE"`
	TTL               time.Duration `env:"TTL"`
}

/*
====================================
TRANSPORT CONFIG
====================================
*/

// TransportConfig configures the HTTP remote service built when no
// remote.Service is supplied to the [Builder].
type TransportConfig struct {
	BaseURL   string        `env:"BASE_URL"`
	Timeout   time.Duration `env:"TIMEOUT"`
	UserAgent string        `env:"USER_AGENT"`
}

/*
====================================
OBSERVER CONFIG
====================================
*/

// ObserverConfig controls asynchronous delivery of dispatched actions to an
// [ActionSink].
type ObserverConfig struct {
	Enabled    bool `env:"ENABLED"`
	BufferSize int  `env:"BUFFER_SIZE"`
	DropIfFull bool `env:"DROP_IF_FULL"`
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls in-process flow metrics.
type MetricsConfig struct {
	Enabled                 bool `env:"ENABLED"`
	EnableLatencyHistograms bool `env:"LATENCY_HISTOGRAMS"`
}

/*
====================================
LOGGING CONFIG
====================================
*/

// LoggingConfig configures the slog logger built when no logger is supplied.
// An empty Level disables logging.
type LoggingConfig struct {
	Level  string `env:"LEVEL"`
	Format string `env:"FORMAT"`
}

// DefaultConfig returns the configuration a client starts from.
func DefaultConfig() Config {
	return Config{
		Routes: RoutesConfig{
			Home:    "/",
			Confirm: "/auth/confirm",
		},
		MagicLink: MagicLinkConfig{
			EmailEnabled: true,
			SMSEnabled:   false,
		},
		Session: SessionConfig{
			SkipExpiredTokens: true,
			ExpiryLeeway:      30 * time.Second,
			RedisPrefix:       "gac",
			Profile:           "default",
		},
		Transport: TransportConfig{
			Timeout:   15 * time.Second,
			UserAgent: "goauth-client",
		},
		Observer: ObserverConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
		Logging: LoggingConfig{
			Format: "json",
		},
		Locale: "en-US",
	}
}

// LoadConfigFromEnv returns [DefaultConfig] overridden by GOAUTH_CLIENT_*
// environment variables, e.g. GOAUTH_CLIENT_TRANSPORT_BASE_URL or
// GOAUTH_CLIENT_MAGIC_LINK_SMS_ENABLED. The result is validated.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.OAuth.Providers = cloneStrings(cfg.OAuth.Providers)
	return out
}

func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration error, or nil.
func (c *Config) Validate() error {
	// Routes
	if !validRoute(c.Routes.Home) {
		return errors.New("Routes Home must be an absolute path or URL")
	}
	if !validRoute(c.Routes.Confirm) {
		return errors.New("Routes Confirm must be an absolute path or URL")
	}

	// OAuth
	if c.OAuth.APIServer != "" && !validBaseURL(c.OAuth.APIServer) {
		return errors.New("OAuth APIServer must be an http(s) URL")
	}
	for _, p := range c.OAuth.Providers {
		if !model.ProviderType(strings.TrimSpace(p)).IsOAuth() {
			return fmt.Errorf("OAuth provider %q is not supported", p)
		}
	}

	// Session
	if c.Session.ExpiryLeeway < 0 || c.Session.ExpiryLeeway > 5*time.Minute {
		return errors.New("Session ExpiryLeeway must be between 0 and 5m")
	}
	if c.Session.TTL < 0 {
		return errors.New("Session TTL must be >= 0")
	}
	if strings.ContainsAny(c.Session.RedisPrefix, " \t\n") {
		return errors.New("Session RedisPrefix must not contain whitespace")
	}

	// Transport
	if c.Transport.BaseURL != "" && !validBaseURL(c.Transport.BaseURL) {
		return errors.New("Transport BaseURL must be an http(s) URL")
	}
	if c.Transport.Timeout < 0 {
		return errors.New("Transport Timeout must be >= 0")
	}

	// Observer
	if c.Observer.Enabled && c.Observer.BufferSize <= 0 {
		return errors.New("Observer BufferSize must be > 0 when enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	// Logging
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return errors.New("Logging Format must be json or text")
	}

	return nil
}

func validRoute(r string) bool {
	if strings.HasPrefix(r, "/") {
		return true
	}
	return validBaseURL(r)
}

func validBaseURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (c *Config) apiServer() string {
	if c.OAuth.APIServer != "" {
		return c.OAuth.APIServer
	}
	return c.Transport.BaseURL
}

func (c *Config) oauthProviders() []model.ProviderType {
	if len(c.OAuth.Providers) == 0 {
		return nil
	}
	out := make([]model.ProviderType, 0, len(c.OAuth.Providers))
	for _, p := range c.OAuth.Providers {
		out = append(out, model.ProviderType(strings.TrimSpace(p)))
	}
	return out
}
