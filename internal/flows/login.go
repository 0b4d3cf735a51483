package flows

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/MrEthical07/goAuthClient/action"
	"github.com/MrEthical07/goAuthClient/internal/validate"
	"github.com/MrEthical07/goAuthClient/messages"
	"github.com/MrEthical07/goAuthClient/model"
	"github.com/MrEthical07/goAuthClient/remote"
)

const (
	opLoginPassword = "login_password"
	opLoginJWT      = "login_jwt"
	opLoginOAuth    = "login_oauth"
)

// RunLoginUserByPassword validates the email, authenticates with the local
// strategy and establishes the session when the identity is verified.
func RunLoginUserByPassword(ctx context.Context, form model.EmailLoginForm, deps Deps) Result {
	deps = deps.withDefaults()
	if !deps.ready() {
		return notReady(opLoginPassword)
	}
	email := strings.TrimSpace(form.Email)
	if !validate.Email(email) {
		return deps.validationFailed(opLoginPassword, messages.InvalidEmail, ErrInvalidEmail)
	}

	return deps.process(func() (Result, func()) {
		raw, err := deps.Remote.Authenticate(ctx, remote.Credentials{
			Strategy: remote.StrategyLocal,
			Email:    email,
			Password: form.Password,
		})
		if err != nil {
			return deps.loginFailed(opLoginPassword, "", err), nil
		}
		return deps.establish(ctx, opLoginPassword, raw, deps.Routes.Home, "")
	})
}

// RunLoginUserByJWT authenticates with an existing access token. Success
// navigates to redirectSuccess, failure to redirectError.
func RunLoginUserByJWT(ctx context.Context, accessToken, redirectSuccess, redirectError string, deps Deps) Result {
	deps = deps.withDefaults()
	if !deps.ready() {
		return notReady(opLoginJWT)
	}

	return deps.process(func() (Result, func()) {
		raw, err := deps.Remote.Authenticate(ctx, remote.Credentials{
			Strategy:    remote.StrategyJWT,
			AccessToken: strings.TrimSpace(accessToken),
		})
		if err != nil {
			return deps.loginFailed(opLoginJWT, redirectError, err), nil
		}
		return deps.establish(ctx, opLoginJWT, raw, redirectSuccess, redirectError)
	})
}

// RunLoginUserByOAuth marks the client as processing and returns the provider
// redirect. Processing is left set: the flow completes outside the client.
func RunLoginUserByOAuth(ctx context.Context, provider model.ProviderType, deps Deps) Result {
	deps = deps.withDefaults()
	if !deps.OAuth.allows(provider) {
		return deps.validationFailed(opLoginOAuth, messages.UnsupportedProvider, ErrUnsupportedProvider)
	}
	deps.dispatch(action.Processing{Processing: true})
	deps.MetricInc(deps.Metrics.OAuthRedirect)
	return redirect(deps.OAuth.redirectURL(provider, ""))
}

func (d Deps) loginFailed(op, location string, err error) Result {
	d.MetricInc(d.Metrics.LoginFailure)
	d.dispatch(action.LoginUserError{Message: d.Text(messages.FailedToLogin)})
	return d.remoteFailed(op, location, err)
}

// establish resolves an authenticate response. Verified sessions are
// dispatched, persisted and followed by a user load; unverified sessions are
// logged out and routed to the confirm page.
func (d Deps) establish(ctx context.Context, op string, raw json.RawMessage, successLocation, errorLocation string) (Result, func()) {
	s, err := model.ResolveSession(raw)
	if err != nil {
		return d.loginFailed(op, errorLocation, err), nil
	}

	if !s.Verified() {
		if err := d.Remote.Logout(ctx); err != nil {
			d.Debug("logout of unverified session failed", "op", op, "error", err)
		}
		d.clearPersisted(ctx)
		d.MetricInc(d.Metrics.LoginUnverified)

		msg := d.Text(messages.UnverifiedUser)
		d.dispatch(action.LoginUserError{Message: msg})
		d.alertError(msg)
		return failed(d.Routes.Confirm, &Error{
			Kind:    KindVerification,
			Op:      op,
			Message: msg,
			Err:     ErrUnverifiedIdentity,
		}), nil
	}

	d.dispatch(action.LoginUserSuccess{Session: *s})
	d.persist(ctx, s)
	d.MetricInc(d.Metrics.LoginSuccess)

	userID := s.UserID()
	return succeeded(successLocation), func() {
		d.loadUser(ctx, userID)
	}
}
