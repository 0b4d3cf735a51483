package flows

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goAuthClient/action"
	"github.com/MrEthical07/goAuthClient/messages"
	"github.com/MrEthical07/goAuthClient/model"
	"github.com/MrEthical07/goAuthClient/remote"
	"github.com/MrEthical07/goAuthClient/session"
)

// Routes are the post-flow navigation targets.
type Routes struct {
	Home    string
	Confirm string
}

// MagicLinkPolicy enables magic-link delivery channels.
type MagicLinkPolicy struct {
	EmailEnabled bool
	SMSEnabled   bool
}

// OAuthPolicy builds provider redirect URLs. An empty Providers list allows
// every OAuth provider type.
type OAuthPolicy struct {
	APIServer string
	Providers []model.ProviderType
}

func (p OAuthPolicy) allows(provider model.ProviderType) bool {
	if !provider.IsOAuth() {
		return false
	}
	if len(p.Providers) == 0 {
		return true
	}
	for _, allowed := range p.Providers {
		if allowed == provider {
			return true
		}
	}
	return false
}

func (p OAuthPolicy) redirectURL(provider model.ProviderType, userID string) string {
	target := strings.TrimRight(p.APIServer, "/") + "/oauth/" + string(provider)
	if userID != "" {
		target += "?" + url.Values{"userId": {userID}}.Encode()
	}
	return target
}

// Metrics carries metric IDs incremented by flows.
type Metrics struct {
	LoginSuccess      int
	LoginFailure      int
	LoginUnverified   int
	AutoLoginSuccess  int
	AutoLoginFailure  int
	AutoLoginSkipped  int
	OAuthRedirect     int
	Logout            int
	RegisterSuccess   int
	RegisterFailure   int
	VerifySuccess     int
	VerifyFailure     int
	RecoveryRequest   int
	RecoveryFailure   int
	MagicLinkSuccess  int
	MagicLinkFailure  int
	ValidationFailure int
	ConnectionAdded   int
	ConnectionRemoved int
	ConnectionFailure int
	UserLoadSuccess   int
	UserLoadFailure   int
	SettingsUpdated   int
	SettingsFailure   int
}

// Deps captures the collaborators and policy shared by every client flow.
type Deps struct {
	Remote     remote.Service
	Dispatcher action.Dispatcher
	// Sessions persists the verified session. Nil disables persistence and
	// makes the bootstrapper a no-op.
	Sessions session.Store

	Routes            Routes
	MagicLink         MagicLinkPolicy
	OAuth             OAuthPolicy
	SkipExpiredTokens bool
	ExpiryLeeway      time.Duration

	Now       func() time.Time
	Text      func(messages.Key) string
	MetricInc func(int)
	Debug     func(string, ...any)
	Warn      func(string, ...any)

	Metrics Metrics
}

func (d Deps) withDefaults() Deps {
	if d.Dispatcher == nil {
		d.Dispatcher = action.DispatcherFunc(func(action.Action) {})
	}
	if d.Routes.Home == "" {
		d.Routes.Home = "/"
	}
	if d.Routes.Confirm == "" {
		d.Routes.Confirm = "/auth/confirm"
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Text == nil {
		d.Text = func(k messages.Key) string { return string(k) }
	}
	if d.MetricInc == nil {
		d.MetricInc = func(int) {}
	}
	if d.Debug == nil {
		d.Debug = func(string, ...any) {}
	}
	if d.Warn == nil {
		d.Warn = func(string, ...any) {}
	}
	return d
}

func (d Deps) dispatch(a action.Action) {
	d.Dispatcher.Dispatch(a)
}

// process brackets body with Processing(true) and a deferred
// Processing(false), so the flag is reset exactly once even when body panics.
// The continuation body returns runs after Processing(false).
func (d Deps) process(body func() (Result, func())) Result {
	var (
		res  Result
		next func()
	)
	func() {
		d.dispatch(action.Processing{Processing: true})
		defer d.dispatch(action.Processing{Processing: false})
		res, next = body()
	}()
	if next != nil {
		next()
	}
	return res
}

func (d Deps) alertError(msg string) {
	d.dispatch(action.Alert{Level: action.AlertError, Message: msg})
}

func (d Deps) alertSuccess(msg string) {
	d.dispatch(action.Alert{Level: action.AlertSuccess, Message: msg})
}

func (d Deps) validationFailed(op string, key messages.Key, sentinel error) Result {
	d.MetricInc(d.Metrics.ValidationFailure)
	msg := d.Text(key)
	d.alertError(msg)
	return failed("", &Error{Kind: KindValidation, Op: op, Message: msg, Err: sentinel})
}

// remoteFailed logs err, raises an alert carrying the service message and
// returns the failed result.
func (d Deps) remoteFailed(op, location string, err error) Result {
	d.Debug("remote call failed", "op", op, "error", err)
	e := remoteError(op, err)
	d.alertError(e.Message)
	return failed(location, e)
}

func (d Deps) persist(ctx context.Context, s *model.Session) {
	if d.Sessions == nil {
		return
	}
	state := session.FromSession(s, d.Now())
	if err := d.Sessions.Save(ctx, &state); err != nil {
		d.Warn("persist session failed", "error", err)
	}
}

func (d Deps) clearPersisted(ctx context.Context) {
	if d.Sessions == nil {
		return
	}
	if err := d.Sessions.Clear(ctx); err != nil {
		d.Warn("clear persisted session failed", "error", err)
	}
}

func (d Deps) ready() bool {
	return d.Remote != nil
}

func notReady(op string) Result {
	return failed("", &Error{Kind: KindRemote, Op: op, Err: ErrNotConfigured})
}
