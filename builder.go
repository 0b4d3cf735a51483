package goAuthClient

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goAuthClient/action"
	"github.com/MrEthical07/goAuthClient/internal/flows"
	"github.com/MrEthical07/goAuthClient/internal/observe"
	"github.com/MrEthical07/goAuthClient/logging"
	"github.com/MrEthical07/goAuthClient/messages"
	"github.com/MrEthical07/goAuthClient/remote"
	"github.com/MrEthical07/goAuthClient/session"
	"github.com/MrEthical07/goAuthClient/store"
)

// Builder assembles a [Client]. A Builder can be built once.
type Builder struct {
	config Config

	remote     remote.Service
	httpClient *http.Client
	sessions   session.Store
	redis      redis.UniversalClient
	dispatcher action.Dispatcher
	sink       ActionSink
	logger     logging.Logger

	historyLimit int

	built bool
}

// New returns a Builder starting from [DefaultConfig].
func New() *Builder {
	return &Builder{
		config:       DefaultConfig(),
		historyLimit: store.DefaultHistoryLimit,
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRemote supplies the remote service. When unset, Build creates a
// [remote.HTTPClient] from Config.Transport.
func (b *Builder) WithRemote(svc remote.Service) *Builder {
	b.remote = svc
	return b
}

// WithHTTPClient overrides the http.Client of the built-in transport.
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

// WithSessionStore sets where the verified session is persisted.
func (b *Builder) WithSessionStore(s session.Store) *Builder {
	b.sessions = s
	return b
}

// WithRedis persists the session in Redis under Config.Session.RedisPrefix
// and Profile. It is ignored when a session store is set.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithDispatcher forwards every dispatched action synchronously to d after
// the client state has been updated.
func (b *Builder) WithDispatcher(d action.Dispatcher) *Builder {
	b.dispatcher = d
	return b
}

// WithActionSink enables the asynchronous observer and delivers dispatched
// actions to sink.
func (b *Builder) WithActionSink(sink ActionSink) *Builder {
	b.sink = sink
	b.config.Observer.Enabled = sink != nil
	return b
}

// WithLogger sets the logger. It takes precedence over Config.Logging.
func (b *Builder) WithLogger(l logging.Logger) *Builder {
	b.logger = l
	return b
}

// WithMetricsEnabled toggles the client counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the remote latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithLocale sets the locale alerts are translated to.
func (b *Builder) WithLocale(locale string) *Builder {
	b.config.Locale = locale
	return b
}

// WithHistoryLimit sets how many recent actions History retains. A limit
// <= 0 keeps every action.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build validates the configuration and wires the client.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	metrics := NewMetrics(cfg.Metrics)

	logger := b.logger
	if logger == nil && cfg.Logging.Level != "" {
		logger = logging.NewSlogLogger(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format, nil)
	}
	logger = logging.OrNoOp(logger)

	// -------- REMOTE --------
	svc := b.remote
	if svc == nil {
		if cfg.Transport.BaseURL == "" {
			return nil, ErrRemoteRequired
		}
		hc, err := remote.NewHTTPClient(remote.HTTPConfig{
			BaseURL:   cfg.Transport.BaseURL,
			Timeout:   cfg.Transport.Timeout,
			UserAgent: cfg.Transport.UserAgent,
			Client:    b.httpClient,
			Observer:  observeRemote(metrics, logger),
		})
		if err != nil {
			return nil, err
		}
		svc = hc
	}

	// -------- SESSION STORE --------
	sessions := b.sessions
	if sessions == nil {
		if b.redis != nil {
			sessions = session.NewRedisStore(b.redis, cfg.Session.RedisPrefix, cfg.Session.Profile, cfg.Session.TTL)
		} else {
			sessions = session.NewMemoryStore()
		}
	}

	printer := messages.New().Printer(cfg.Locale)

	c := &Client{
		config:   cfg,
		remote:   svc,
		state:    store.NewWithHistoryLimit(b.historyLimit),
		external: b.dispatcher,
		metrics:  metrics,
		logger:   logger,
		printer:  printer,
		observer: observe.NewDispatcher(observe.Config{
			Enabled:    cfg.Observer.Enabled,
			BufferSize: cfg.Observer.BufferSize,
			DropIfFull: cfg.Observer.DropIfFull,
		}, b.sink),
	}

	c.flows = flows.New(flows.Deps{
		Remote:     svc,
		Dispatcher: c,
		Sessions:   sessions,
		Routes: flows.Routes{
			Home:    cfg.Routes.Home,
			Confirm: cfg.Routes.Confirm,
		},
		MagicLink: flows.MagicLinkPolicy{
			EmailEnabled: cfg.MagicLink.EmailEnabled,
			SMSEnabled:   cfg.MagicLink.SMSEnabled,
		},
		OAuth: flows.OAuthPolicy{
			APIServer: cfg.apiServer(),
			Providers: cfg.oauthProviders(),
		},
		SkipExpiredTokens: cfg.Session.SkipExpiredTokens,
		ExpiryLeeway:      cfg.Session.ExpiryLeeway,
		Now:               time.Now,
		Text:              printer.Text,
		MetricInc:         func(id int) { metrics.Inc(MetricID(id)) },
		Debug:             logger.Debug,
		Warn:              logger.Warn,
		Metrics:           flowMetrics,
	})

	b.built = true
	return c, nil
}

func observeRemote(m *Metrics, logger logging.Logger) remote.CallObserver {
	return func(op string, elapsed time.Duration, err error) {
		m.Observe(MetricRemoteLatency, elapsed)
		if err != nil {
			m.Inc(MetricRemoteCallFailure)
			logger.Debug("remote call failed", "op", op, "elapsed", elapsed, "error", err)
			return
		}
		logger.Debug("remote call", "op", op, "elapsed", elapsed)
	}
}
