package goAuthClient

import (
	"context"

	"github.com/MrEthical07/goAuthClient/action"
	"github.com/MrEthical07/goAuthClient/internal/flows"
	"github.com/MrEthical07/goAuthClient/internal/observe"
	"github.com/MrEthical07/goAuthClient/logging"
	"github.com/MrEthical07/goAuthClient/messages"
	"github.com/MrEthical07/goAuthClient/model"
	"github.com/MrEthical07/goAuthClient/remote"
	"github.com/MrEthical07/goAuthClient/store"
)

// Client runs authentication flows against a remote service and reduces the
// actions they dispatch into a [State].
//
// Client methods are safe to call from multiple goroutines after
// [Builder.Build]. Flows do not coordinate with each other.
type Client struct {
	config   Config
	flows    flows.Service
	remote   remote.Service
	state    *store.Store
	external action.Dispatcher
	observer *observe.Dispatcher
	metrics  *Metrics
	logger   logging.Logger
	printer  *messages.Printer
}

var _ action.Dispatcher = (*Client)(nil)

// Dispatch applies a to the client state, then forwards it to the dispatcher
// set with [Builder.WithDispatcher] and to the action sink. Flows dispatch
// through this method; callers may use it to inject their own actions.
func (c *Client) Dispatch(a action.Action) {
	if c == nil || a == nil {
		return
	}
	c.state.Dispatch(a)
	if c.external != nil {
		c.external.Dispatch(a)
	}
	c.observer.Observe(context.Background(), a)
}

/*
====================================
SESSION
====================================
*/

// LoginAuto restores the persisted session, if any, through silent
// re-authentication. Failures raise no alert.
func (c *Client) LoginAuto(ctx context.Context) Result {
	return c.flows.LoginAuto(ctx)
}

// LoadUserData fetches user userID and dispatches LoadedUserData.
func (c *Client) LoadUserData(ctx context.Context, userID string) Result {
	return c.flows.LoadUserData(ctx, userID)
}

// LogoutUser ends the remote session and clears persisted state. DidLogout is
// dispatched whatever the remote outcome.
func (c *Client) LogoutUser(ctx context.Context) Result {
	return c.flows.LogoutUser(ctx)
}

/*
====================================
CREDENTIAL FLOWS
====================================
*/

// LoginUserByPassword authenticates with the local strategy.
func (c *Client) LoginUserByPassword(ctx context.Context, form model.EmailLoginForm) Result {
	return c.flows.LoginUserByPassword(ctx, form)
}

// LoginUserByJWT authenticates with an access token and navigates to
// redirectSuccess or redirectError.
func (c *Client) LoginUserByJWT(ctx context.Context, accessToken, redirectSuccess, redirectError string) Result {
	return c.flows.LoginUserByJWT(ctx, accessToken, redirectSuccess, redirectError)
}

// LoginUserByOAuth returns a [StatusRedirectRequired] result pointing at the
// provider's OAuth endpoint. Processing stays set; the flow completes in a
// later LoginUserByJWT.
func (c *Client) LoginUserByOAuth(ctx context.Context, provider model.ProviderType) Result {
	return c.flows.LoginUserByOAuth(ctx, provider)
}

// CreateMagicLink sends a login link by email or SMS.
func (c *Client) CreateMagicLink(ctx context.Context, input string, channel Channel) Result {
	return c.flows.CreateMagicLink(ctx, input, channel)
}

/*
====================================
REGISTRATION & RECOVERY
====================================
*/

// RegisterUserByEmail creates a password identity and routes to the confirm page.
func (c *Client) RegisterUserByEmail(ctx context.Context, form model.EmailRegistrationForm) Result {
	return c.flows.RegisterUserByEmail(ctx, form)
}

// VerifyEmail confirms a signup token and logs in with the returned access
// token.
func (c *Client) VerifyEmail(ctx context.Context, token string) Result {
	return c.flows.VerifyEmail(ctx, token)
}

// ResendVerificationEmail asks the service to send a new signup token to email.
func (c *Client) ResendVerificationEmail(ctx context.Context, email string) Result {
	return c.flows.ResendVerificationEmail(ctx, email)
}

// ForgotPassword requests a password reset token for email.
func (c *Client) ForgotPassword(ctx context.Context, email string) Result {
	return c.flows.ForgotPassword(ctx, email)
}

// ResetPassword sets password using a reset token and routes home.
func (c *Client) ResetPassword(ctx context.Context, token, password string) Result {
	return c.flows.ResetPassword(ctx, token, password)
}

/*
====================================
CONNECTIONS
====================================
*/

// AddConnectionByPassword links an email/password identity to userID.
func (c *Client) AddConnectionByPassword(ctx context.Context, form model.EmailLoginForm, userID string) Result {
	return c.flows.AddConnectionByPassword(ctx, form, userID)
}

// AddConnectionByEmail links an email identity to userID through a magic link.
func (c *Client) AddConnectionByEmail(ctx context.Context, email, userID string) Result {
	return c.flows.AddConnectionByEmail(ctx, email, userID)
}

// AddConnectionBySMS links a phone identity to userID through a magic link.
func (c *Client) AddConnectionBySMS(ctx context.Context, phone, userID string) Result {
	return c.flows.AddConnectionBySMS(ctx, phone, userID)
}

// AddConnectionByOAuth returns the OAuth redirect that links provider to userID.
func (c *Client) AddConnectionByOAuth(ctx context.Context, provider model.ProviderType, userID string) Result {
	return c.flows.AddConnectionByOAuth(ctx, provider, userID)
}

// RemoveConnection deletes an identity provider and reloads userID.
func (c *Client) RemoveConnection(ctx context.Context, identityProviderID, userID string) Result {
	return c.flows.RemoveConnection(ctx, identityProviderID, userID)
}

// RefreshConnections reloads userID and its identity providers.
func (c *Client) RefreshConnections(ctx context.Context, userID string) Result {
	return c.flows.RefreshConnections(ctx, userID)
}

// UpdateUserSettings patches user settings id with data.
func (c *Client) UpdateUserSettings(ctx context.Context, id string, data any) Result {
	return c.flows.UpdateUserSettings(ctx, id, data)
}

/*
====================================
STATE & OBSERVABILITY
====================================
*/

// State returns a copy of the current client state.
func (c *Client) State() State {
	if c == nil || c.state == nil {
		return State{}
	}
	return c.state.State()
}

// History returns the retained actions, oldest first. See
// [Builder.WithHistoryLimit].
func (c *Client) History() []action.Action {
	if c == nil || c.state == nil {
		return nil
	}
	return c.state.History()
}

// ClearHistory drops the recorded actions without touching State.
func (c *Client) ClearHistory() {
	if c == nil || c.state == nil {
		return
	}
	c.state.ClearHistory()
}

// Subscribe registers l for every subsequent action and returns a function
// that removes it.
func (c *Client) Subscribe(l Listener) (unsubscribe func()) {
	if c == nil || c.state == nil {
		return func() {}
	}
	return c.state.Subscribe(l)
}

// AccessToken returns the access token currently held by the remote service.
func (c *Client) AccessToken() string {
	if c == nil || c.remote == nil {
		return ""
	}
	return c.remote.AccessToken()
}

// Locale reports the locale alert texts are rendered in.
func (c *Client) Locale() string {
	return c.printer.Locale()
}

// Config returns a copy of the configuration the client was built with.
func (c *Client) Config() Config {
	return cloneConfig(c.config)
}

// MetricsSnapshot copies the current metric values.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil {
		return MetricsSnapshot{}
	}
	return c.metrics.Snapshot()
}

// ActionsDropped returns the number of actions the asynchronous observer
// discarded because its buffer was full.
func (c *Client) ActionsDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.observer.Dropped()
}

// Close drains queued actions to the sink and stops the observer. It does
// not log out.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.observer.Close()
	if dropped := c.observer.Dropped(); dropped > 0 {
		c.logger.Warn("observer dropped actions", "dropped", dropped)
	}
}
