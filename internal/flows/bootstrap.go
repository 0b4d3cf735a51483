package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/goAuthClient/action"
	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/MrEthical07/goAuthClient/model"
	"github.com/MrEthical07/goAuthClient/remote"
	"github.com/MrEthical07/goAuthClient/session"
)

const opLoginAuto = "login_auto"

// RunLoginAuto restores a persisted session by re-authenticating its access
// token. Failures are silent: nothing is dispatched, the error is logged at
// debug level and returned in the result.
//
// Flow:
//   - unreadable stored record: clear it and skip.
//   - no stored token (or an expired JWT when SkipExpiredTokens): clear local
//     state and skip.
//   - set the token and re-authenticate.
//   - unverified identity: remote logout, clear local state.
//   - verified identity: LoginUserSuccess, persist, load user data.
func RunLoginAuto(ctx context.Context, deps Deps) Result {
	deps = deps.withDefaults()
	if !deps.ready() {
		return notReady(opLoginAuto)
	}
	if deps.Sessions == nil {
		return skipped(nil)
	}

	state, err := deps.Sessions.Load(ctx)
	if errors.Is(err, session.ErrCorrupt) {
		deps.Debug("discarding unreadable persisted session", "error", err)
		deps.forget(ctx, true)
		deps.MetricInc(deps.Metrics.AutoLoginFailure)
		return skipped(err)
	}
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		deps.Debug("load persisted session failed", "error", err)
		deps.MetricInc(deps.Metrics.AutoLoginFailure)
		return skipped(err)
	}

	token := ""
	if state != nil {
		token = state.AccessToken
	}
	if token != "" && deps.SkipExpiredTokens && jwt.ExpiredAt(token, deps.Now(), deps.ExpiryLeeway) {
		deps.Debug("persisted access token expired")
		token = ""
	}
	if token == "" {
		deps.forget(ctx, state != nil)
		deps.MetricInc(deps.Metrics.AutoLoginSkipped)
		return skipped(nil)
	}

	if err := deps.Remote.SetAccessToken(ctx, token); err != nil {
		return deps.autoLoginFailed(ctx, err)
	}
	raw, err := deps.Remote.ReAuthenticate(ctx)
	if err != nil {
		return deps.autoLoginFailed(ctx, err)
	}
	s, err := model.ResolveSession(raw)
	if err != nil {
		return deps.autoLoginFailed(ctx, err)
	}

	if !s.Verified() {
		if err := deps.Remote.Logout(ctx); err != nil {
			deps.Debug("logout of unverified session failed", "error", err)
		}
		deps.clearPersisted(ctx)
		deps.MetricInc(deps.Metrics.LoginUnverified)
		return failed("", &Error{Kind: KindVerification, Op: opLoginAuto, Err: ErrUnverifiedIdentity})
	}

	deps.dispatch(action.LoginUserSuccess{Session: *s})
	deps.persist(ctx, s)
	deps.MetricInc(deps.Metrics.AutoLoginSuccess)
	deps.loadUser(ctx, s.UserID())
	return succeeded("")
}

func (d Deps) autoLoginFailed(ctx context.Context, err error) Result {
	d.Debug("silent re-authentication failed", "error", err)
	d.MetricInc(d.Metrics.AutoLoginFailure)
	if remote.IsNotAuthenticated(err) {
		d.forget(ctx, true)
	}
	return failed("", &Error{Kind: KindRemote, Op: opLoginAuto, Err: err})
}

// forget drops the remote token and, when persisted is set, the stored state.
func (d Deps) forget(ctx context.Context, persisted bool) {
	if err := d.Remote.SetAccessToken(ctx, ""); err != nil {
		d.Debug("reset access token failed", "error", err)
	}
	if persisted {
		d.clearPersisted(ctx)
	}
}
