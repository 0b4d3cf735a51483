package flows

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/MrEthical07/goAuthClient/action"
	"github.com/MrEthical07/goAuthClient/messages"
	"github.com/MrEthical07/goAuthClient/model"
	"github.com/MrEthical07/goAuthClient/remote"
	"github.com/MrEthical07/goAuthClient/session"
)

func TestLoginByPasswordVerifiedSequence(t *testing.T) {
	h := newHarness(t)
	h.remote.respond("authenticate", `{"identityProvider":{"isVerified":true,"userId":"u1"}}`).
		respond("user.get", userU1)

	res := RunLoginUserByPassword(context.Background(), model.EmailLoginForm{Email: "a@b.com", Password: "x"}, h.deps)
	if res.Status != StatusSucceeded || res.Location != "/" || res.Err != nil {
		t.Fatalf("unexpected result: %+v", res)
	}

	expectTypes(t, h.types(),
		action.TypeProcessing,
		action.TypeLoginUserSuccess,
		action.TypeProcessing,
		action.TypeLoadedUserData,
	)
	if got := h.processingValues(); got[0] != true || got[1] != false {
		t.Fatalf("expected processing true then false, got %v", got)
	}

	expectOps(t, h.remote.ops(), "authenticate", "user.get")
	auth := h.remote.callsTo("authenticate")[0].Creds
	if auth.Strategy != remote.StrategyLocal || auth.Email != "a@b.com" || auth.Password != "x" {
		t.Fatalf("unexpected credentials: %+v", auth)
	}
	if get := h.remote.callsTo("user.get"); len(get) != 1 || get[0].ID != "u1" {
		t.Fatalf("expected exactly one user fetch for u1, got %+v", get)
	}

	st := h.store.State()
	if !st.IsLoggedIn || st.User == nil || st.User.Name != "Ada" {
		t.Fatalf("unexpected state: %+v", st)
	}
	if h.metrics[testMetrics.LoginSuccess] != 1 || h.metrics[testMetrics.UserLoadSuccess] != 1 {
		t.Fatalf("unexpected metrics: %v", h.metrics)
	}

	saved, err := h.sessions.Load(context.Background())
	if err != nil {
		t.Fatalf("expected persisted session: %v", err)
	}
	if saved.UserID != "u1" || !saved.IsVerified {
		t.Fatalf("unexpected persisted state: %+v", saved)
	}
}

func TestLoginByPasswordRejectsMalformedEmailWithoutNetwork(t *testing.T) {
	for _, email := range []string{"", "   ", "abc", "a@b", "a b@c.com", "a@@b.com", "@b.com"} {
		h := newHarness(t)
		res := RunLoginUserByPassword(context.Background(), model.EmailLoginForm{Email: email, Password: "x"}, h.deps)

		if res.Status != StatusFailed || !errors.Is(res.Err, ErrInvalidEmail) || KindOf(res.Err) != KindValidation {
			t.Fatalf("email %q: unexpected result %+v", email, res)
		}
		if ops := h.remote.ops(); len(ops) != 0 {
			t.Fatalf("email %q: expected no network call, got %v", email, ops)
		}
		expectTypes(t, h.types(), action.TypeAlert)
		if al := h.alerts()[0]; al.Level != action.AlertError || al.Message != string(messages.InvalidEmail) {
			t.Fatalf("email %q: unexpected alert %+v", email, al)
		}
		if h.metrics[testMetrics.ValidationFailure] != 1 {
			t.Fatalf("email %q: expected validation metric", email)
		}
	}
}

func TestLoginByPasswordUnverifiedLogsOut(t *testing.T) {
	h := newHarness(t)
	prev := session.FromSession(&model.Session{AccessToken: "old"}, h.deps.withDefaults().Now())
	if err := h.sessions.Save(context.Background(), &prev); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	h.remote.respond("authenticate", unverifiedSession)

	res := RunLoginUserByPassword(context.Background(), model.EmailLoginForm{Email: "a@b.com", Password: "x"}, h.deps)
	if res.Status != StatusFailed || res.Location != "/auth/confirm" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !errors.Is(res.Err, ErrUnverifiedIdentity) || KindOf(res.Err) != KindVerification {
		t.Fatalf("expected verification error, got %v", res.Err)
	}

	expectOps(t, h.remote.ops(), "authenticate", "logout")
	expectTypes(t, h.types(),
		action.TypeProcessing,
		action.TypeLoginUserError,
		action.TypeAlert,
		action.TypeProcessing,
	)
	for _, a := range h.store.History() {
		if a.Type() == action.TypeLoginUserSuccess {
			t.Fatal("unverified login must not dispatch LoginUserSuccess")
		}
	}
	if st := h.store.State(); st.Error != "Unverified user" || st.IsLoggedIn {
		t.Fatalf("unexpected state: %+v", st)
	}
	if _, err := h.sessions.Load(context.Background()); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected persisted state cleared, got %v", err)
	}
	if h.remote.AccessToken() != "" {
		t.Fatal("expected remote token dropped by logout")
	}
}

func TestLoginByPasswordRemoteFailure(t *testing.T) {
	h := newHarness(t)
	h.remote.fail("authenticate", &remote.Error{Name: "NotAuthenticated", Message: "Invalid login", Code: 401})

	res := RunLoginUserByPassword(context.Background(), model.EmailLoginForm{Email: "a@b.com", Password: "bad"}, h.deps)
	if res.Status != StatusFailed || KindOf(res.Err) != KindRemote || !remote.IsNotAuthenticated(res.Err) {
		t.Fatalf("unexpected result: %+v", res)
	}

	expectTypes(t, h.types(),
		action.TypeProcessing,
		action.TypeLoginUserError,
		action.TypeAlert,
		action.TypeProcessing,
	)
	if st := h.store.State(); st.Error != "Failed to login" || st.IsProcessing {
		t.Fatalf("unexpected state: %+v", st)
	}
	if al := h.alerts()[0]; al.Message != "Invalid login" {
		t.Fatalf("expected remote message in alert, got %q", al.Message)
	}
	if h.metrics[testMetrics.LoginFailure] != 1 {
		t.Fatalf("expected login failure metric, got %v", h.metrics)
	}
}

func TestProcessingResetWhenRemotePanics(t *testing.T) {
	h := newHarness(t)
	h.remote.on("authenticate", func(remoteCall) (json.RawMessage, error) {
		panic("transport exploded")
	})

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		RunLoginUserByPassword(context.Background(), model.EmailLoginForm{Email: "a@b.com"}, h.deps)
	}()

	if got := h.processingValues(); len(got) != 2 || got[0] != true || got[1] != false {
		t.Fatalf("expected processing reset exactly once, got %v", got)
	}
	if h.store.State().IsProcessing {
		t.Fatal("processing flag stuck")
	}
}

func TestLoginByJWTRoutes(t *testing.T) {
	h := newHarness(t)
	h.remote.respond("authenticate", verifiedSession).respond("user.get", userU1)

	res := RunLoginUserByJWT(context.Background(), "tok-1", "/welcome", "/oops", h.deps)
	if res.Status != StatusSucceeded || res.Location != "/welcome" {
		t.Fatalf("unexpected result: %+v", res)
	}
	creds := h.remote.callsTo("authenticate")[0].Creds
	if creds.Strategy != remote.StrategyJWT || creds.AccessToken != "tok-1" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}

	h = newHarness(t)
	h.remote.fail("authenticate", errors.New("jwt expired"))
	res = RunLoginUserByJWT(context.Background(), "tok-1", "/welcome", "/oops", h.deps)
	if res.Status != StatusFailed || res.Location != "/oops" {
		t.Fatalf("unexpected result: %+v", res)
	}
	expectTypes(t, h.types(),
		action.TypeProcessing,
		action.TypeLoginUserError,
		action.TypeAlert,
		action.TypeProcessing,
	)
}

func TestLoginByJWTUnverified(t *testing.T) {
	h := newHarness(t)
	h.remote.respond("authenticate", unverifiedSession)

	res := RunLoginUserByJWT(context.Background(), "tok-1", "/", "/", h.deps)
	if res.Location != "/auth/confirm" || !errors.Is(res.Err, ErrUnverifiedIdentity) {
		t.Fatalf("unexpected result: %+v", res)
	}
	expectOps(t, h.remote.ops(), "authenticate", "logout")
}

func TestLoginByOAuthRedirect(t *testing.T) {
	h := newHarness(t)

	res := RunLoginUserByOAuth(context.Background(), model.ProviderGithub, h.deps)
	if res.Status != StatusRedirectRequired || res.Location != "https://api.example.com/oauth/github" {
		t.Fatalf("unexpected result: %+v", res)
	}
	expectTypes(t, h.types(), action.TypeProcessing)
	if !h.store.State().IsProcessing {
		t.Fatal("oauth leaves processing set")
	}
	if len(h.remote.ops()) != 0 {
		t.Fatal("oauth must not call the remote service")
	}
}

func TestLoginByOAuthRejectsProvider(t *testing.T) {
	h := newHarness(t)
	h.deps.OAuth.Providers = []model.ProviderType{model.ProviderGoogle}

	for _, p := range []model.ProviderType{model.ProviderGithub, model.ProviderPassword, "myspace"} {
		res := RunLoginUserByOAuth(context.Background(), p, h.deps)
		if res.Status != StatusFailed || !errors.Is(res.Err, ErrUnsupportedProvider) {
			t.Fatalf("provider %s: unexpected result %+v", p, res)
		}
	}
	if res := RunLoginUserByOAuth(context.Background(), model.ProviderGoogle, h.deps); res.Status != StatusRedirectRequired {
		t.Fatalf("expected google redirect, got %+v", res)
	}
}

func TestLogoutAlwaysDispatches(t *testing.T) {
	h := newHarness(t)
	prev := session.FromSession(&model.Session{AccessToken: "tok"}, h.deps.withDefaults().Now())
	_ = h.sessions.Save(context.Background(), &prev)
	h.remote.fail("logout", errors.New("network down"))

	res := RunLogoutUser(context.Background(), h.deps)
	if !res.OK() {
		t.Fatalf("logout should succeed locally, got %+v", res)
	}
	expectTypes(t, h.types(), action.TypeProcessing, action.TypeDidLogout, action.TypeProcessing)
	if len(h.alerts()) != 0 {
		t.Fatal("logout raises no alert")
	}
	if _, err := h.sessions.Load(context.Background()); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected persisted state cleared, got %v", err)
	}
}

func TestFlowsNotConfigured(t *testing.T) {
	var got []action.Action
	deps := Deps{Dispatcher: action.DispatcherFunc(func(a action.Action) { got = append(got, a) })}

	res := RunLoginUserByPassword(context.Background(), model.EmailLoginForm{Email: "a@b.com"}, deps)
	if !errors.Is(res.Err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", res.Err)
	}
	if res := RunLoginAuto(context.Background(), deps); !errors.Is(res.Err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", res.Err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no dispatches, got %v", got)
	}
	if New(deps).Initialized() {
		t.Fatal("service without remote is not initialized")
	}
}

func TestLocalizedAlerts(t *testing.T) {
	h := newHarness(t)
	h.deps.Text = messages.New().Printer("es").Text

	RunLoginUserByPassword(context.Background(), model.EmailLoginForm{Email: "nope"}, h.deps)
	if al := h.alerts()[0]; al.Message != "Introduce una dirección de correo válida" {
		t.Fatalf("expected spanish alert, got %q", al.Message)
	}
}

func TestErrorFormatting(t *testing.T) {
	e := &Error{Kind: KindValidation, Op: "login_password", Message: "Please input valid email address", Err: ErrInvalidEmail}
	if e.Error() != "login_password: Please input valid email address" {
		t.Fatalf("unexpected error string %q", e.Error())
	}
	if (&Error{Kind: KindRemote, Err: errors.New("boom")}).Error() != "boom" {
		t.Fatal("expected wrapped error text")
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Fatal("plain errors have no kind")
	}
	if StatusRedirectRequired.String() != "redirect_required" || KindVerification.String() != "verification" {
		t.Fatal("unexpected enum strings")
	}
}
