package flows

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/MrEthical07/goAuthClient/internal/validate"
	"github.com/MrEthical07/goAuthClient/messages"
	"github.com/MrEthical07/goAuthClient/model"
	"github.com/MrEthical07/goAuthClient/remote"
)

const (
	opAddConnection    = "add_connection"
	opAddOAuth         = "add_connection_oauth"
	opRemoveConnection = "remove_connection"
)

// RunAddConnectionByPassword links a password identity to userID.
func RunAddConnectionByPassword(ctx context.Context, form model.EmailLoginForm, userID string, deps Deps) Result {
	deps = deps.withDefaults()
	if !deps.ready() {
		return notReady(opAddConnection)
	}
	email := strings.TrimSpace(form.Email)
	if !validate.Email(email) {
		return deps.validationFailed(opAddConnection, messages.InvalidEmail, ErrInvalidEmail)
	}

	return deps.addConnection(ctx, remote.ResourceIdentityProvider, identityProviderCreate{
		Token:    email,
		Password: form.Password,
		Type:     model.ProviderPassword,
		UserID:   userID,
	}, userID)
}

// RunAddConnectionByEmail links an email identity to userID through a magic
// link.
func RunAddConnectionByEmail(ctx context.Context, email, userID string, deps Deps) Result {
	deps = deps.withDefaults()
	if !deps.ready() {
		return notReady(opAddConnection)
	}
	email = strings.TrimSpace(email)
	if !validate.Email(email) {
		return deps.validationFailed(opAddConnection, messages.InvalidEmail, ErrInvalidEmail)
	}

	target := MagicLinkTarget{Channel: ChannelEmail, Value: email}
	return deps.addConnection(ctx, remote.ResourceMagicLink, target.payload(userID), userID)
}

// RunAddConnectionBySMS links a phone identity to userID through a magic
// link.
func RunAddConnectionBySMS(ctx context.Context, phone, userID string, deps Deps) Result {
	deps = deps.withDefaults()
	if !deps.ready() {
		return notReady(opAddConnection)
	}
	phone = strings.TrimSpace(phone)
	if !validate.Phone(phone) {
		return deps.validationFailed(opAddConnection, messages.InvalidPhone, ErrInvalidPhone)
	}

	target := MagicLinkTarget{Channel: ChannelSMS, Value: phone}
	return deps.addConnection(ctx, remote.ResourceMagicLink, target.payload(userID), userID)
}

// RunAddConnectionByOAuth returns the provider redirect that links an OAuth
// identity to userID. Processing is not toggled.
func RunAddConnectionByOAuth(ctx context.Context, provider model.ProviderType, userID string, deps Deps) Result {
	deps = deps.withDefaults()
	if !deps.OAuth.allows(provider) {
		return deps.validationFailed(opAddOAuth, messages.UnsupportedProvider, ErrUnsupportedProvider)
	}
	deps.MetricInc(deps.Metrics.OAuthRedirect)
	return redirect(deps.OAuth.redirectURL(provider, strings.TrimSpace(userID)))
}

// RunRemoveConnection deletes an identity provider and reloads userID.
func RunRemoveConnection(ctx context.Context, identityProviderID, userID string, deps Deps) Result {
	deps = deps.withDefaults()
	if !deps.ready() {
		return notReady(opRemoveConnection)
	}

	return deps.process(func() (Result, func()) {
		if _, err := deps.Remote.Resource(remote.ResourceIdentityProvider).Remove(ctx, strings.TrimSpace(identityProviderID)); err != nil {
			deps.MetricInc(deps.Metrics.ConnectionFailure)
			return deps.remoteFailed(opRemoveConnection, "", err), nil
		}
		deps.MetricInc(deps.Metrics.ConnectionRemoved)
		return succeeded(""), func() {
			deps.loadUser(ctx, userID)
		}
	})
}

// RunRefreshConnections reloads the user so the connection list matches the
// server.
func RunRefreshConnections(ctx context.Context, userID string, deps Deps) Result {
	return RunLoadUserData(ctx, userID, deps)
}

// addConnection creates the identity record and always follows with a full
// user reload; the partial response is only used for its userId.
func (d Deps) addConnection(ctx context.Context, resource string, body any, userID string) Result {
	return d.process(func() (Result, func()) {
		raw, err := d.Remote.Resource(resource).Create(ctx, body)
		if err != nil {
			d.MetricInc(d.Metrics.ConnectionFailure)
			return d.remoteFailed(opAddConnection, "", err), nil
		}
		d.MetricInc(d.Metrics.ConnectionAdded)

		reload := ownerOf(raw, userID)
		return succeeded(""), func() {
			d.loadUser(ctx, reload)
		}
	})
}

func ownerOf(raw json.RawMessage, fallback string) string {
	if ip, err := model.ResolveIdentityProvider(raw); err == nil && ip.UserID != "" {
		return ip.UserID.String()
	}
	return fallback
}
