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
	opRegister       = "register"
	opVerifyEmail    = "verify_email"
	opResendVerify   = "resend_verification"
	opForgotPassword = "forgot_password"
	opResetPassword  = "reset_password"
)

// RunRegisterUserByEmail creates a password identity provider and routes to
// the confirm page.
func RunRegisterUserByEmail(ctx context.Context, form model.EmailRegistrationForm, deps Deps) Result {
	deps = deps.withDefaults()
	if !deps.ready() {
		return notReady(opRegister)
	}
	email := strings.TrimSpace(form.Email)
	if !validate.Email(email) {
		return deps.validationFailed(opRegister, messages.InvalidEmail, ErrInvalidEmail)
	}

	return deps.process(func() (Result, func()) {
		raw, err := deps.Remote.Resource(remote.ResourceIdentityProvider).Create(ctx, identityProviderCreate{
			Token:    email,
			Password: form.Password,
			Type:     model.ProviderPassword,
		})
		if err != nil {
			deps.MetricInc(deps.Metrics.RegisterFailure)
			deps.dispatch(action.RegisterUserByEmailError{Message: err.Error()})
			return deps.remoteFailed(opRegister, "", err), nil
		}

		var ip model.IdentityProvider
		if resolved, err := model.ResolveIdentityProvider(raw); err == nil {
			ip = *resolved
		} else {
			deps.Debug("decode identity provider failed", "error", err)
		}
		deps.dispatch(action.RegisterUserByEmailSuccess{IdentityProvider: ip})
		deps.MetricInc(deps.Metrics.RegisterSuccess)
		return succeeded(deps.Routes.Confirm), nil
	})
}

// RunVerifyEmail confirms a signup token. On success it chains a JWT login
// with the token from the response; both of its routes are Home.
func RunVerifyEmail(ctx context.Context, token string, deps Deps) Result {
	deps = deps.withDefaults()
	if !deps.ready() {
		return notReady(opVerifyEmail)
	}

	var chained *Result
	res := deps.process(func() (Result, func()) {
		raw, err := deps.Remote.Resource(remote.ResourceAuthManagement).Create(ctx, authManagementRequest{
			Action: amVerifySignupLong,
			Value:  strings.TrimSpace(token),
		})
		if err != nil {
			deps.MetricInc(deps.Metrics.VerifyFailure)
			deps.dispatch(action.DidVerifyEmail{OK: false})
			return deps.remoteFailed(opVerifyEmail, "", err), nil
		}

		deps.dispatch(action.DidVerifyEmail{OK: true})
		deps.MetricInc(deps.Metrics.VerifySuccess)

		accessToken := accessTokenOf(raw)
		if accessToken == "" {
			deps.Debug("verification response carried no access token")
			return succeeded(deps.Routes.Home), nil
		}
		return succeeded(deps.Routes.Home), func() {
			r := RunLoginUserByJWT(ctx, accessToken, deps.Routes.Home, deps.Routes.Home, deps)
			chained = &r
		}
	})
	if chained != nil {
		return *chained
	}
	return res
}

func accessTokenOf(raw json.RawMessage) string {
	var body struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.AccessToken
}

// RunResendVerificationEmail asks the service to resend the signup email.
// The outcome is reported only through DidResendVerificationEmail.
func RunResendVerificationEmail(ctx context.Context, email string, deps Deps) Result {
	deps = deps.withDefaults()
	if !deps.ready() {
		return notReady(opResendVerify)
	}
	return deps.process(func() (Result, func()) {
		err := deps.recovery(ctx, amResendVerifySignup, identityRef{Token: strings.TrimSpace(email), Type: model.ProviderPassword})
		deps.dispatch(action.DidResendVerificationEmail{OK: err == nil})
		return quietResult(opResendVerify, "", err), nil
	})
}

// RunForgotPassword asks the service to send a password reset email.
// The outcome is reported only through DidForgotPassword.
func RunForgotPassword(ctx context.Context, email string, deps Deps) Result {
	deps = deps.withDefaults()
	if !deps.ready() {
		return notReady(opForgotPassword)
	}
	return deps.process(func() (Result, func()) {
		err := deps.recovery(ctx, amSendResetPwd, identityRef{Token: strings.TrimSpace(email), Type: model.ProviderPassword})
		deps.dispatch(action.DidForgotPassword{OK: err == nil})
		return quietResult(opForgotPassword, "", err), nil
	})
}

// RunResetPassword sets a new password with a reset token. It routes Home
// whatever the outcome.
func RunResetPassword(ctx context.Context, token, password string, deps Deps) Result {
	deps = deps.withDefaults()
	if !deps.ready() {
		return notReady(opResetPassword)
	}
	return deps.process(func() (Result, func()) {
		err := deps.recovery(ctx, amResetPwdLong, passwordReset{Token: strings.TrimSpace(token), Password: password})
		deps.dispatch(action.DidResetPassword{OK: err == nil})
		return quietResult(opResetPassword, deps.Routes.Home, err), nil
	})
}

func (d Deps) recovery(ctx context.Context, amAction string, value any) error {
	d.MetricInc(d.Metrics.RecoveryRequest)
	_, err := d.Remote.Resource(remote.ResourceAuthManagement).Create(ctx, authManagementRequest{
		Action: amAction,
		Value:  value,
	})
	if err != nil {
		d.Debug("auth management request failed", "action", amAction, "error", err)
		d.MetricInc(d.Metrics.RecoveryFailure)
	}
	return err
}

// quietResult maps err to a result without raising an alert.
func quietResult(op, location string, err error) Result {
	if err != nil {
		return failed(location, remoteError(op, err))
	}
	return succeeded(location)
}
