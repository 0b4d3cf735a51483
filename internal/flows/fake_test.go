package flows

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/MrEthical07/goAuthClient/action"
	"github.com/MrEthical07/goAuthClient/remote"
	"github.com/MrEthical07/goAuthClient/session"
	"github.com/MrEthical07/goAuthClient/store"
)

type remoteCall struct {
	Op    string
	ID    string
	Body  any
	Creds remote.Credentials
}

type handlerFunc func(c remoteCall) (json.RawMessage, error)

// fakeRemote records every call. Handlers are keyed by op: "authenticate",
// "reauthenticate", "logout", "set_token" or "<resource>.<method>".
type fakeRemote struct {
	mu       sync.Mutex
	token    string
	calls    []remoteCall
	handlers map[string]handlerFunc
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{handlers: make(map[string]handlerFunc)}
}

func (f *fakeRemote) on(op string, h handlerFunc) *fakeRemote {
	f.handlers[op] = h
	return f
}

func (f *fakeRemote) respond(op, body string) *fakeRemote {
	return f.on(op, func(remoteCall) (json.RawMessage, error) {
		return json.RawMessage(body), nil
	})
}

func (f *fakeRemote) fail(op string, err error) *fakeRemote {
	return f.on(op, func(remoteCall) (json.RawMessage, error) {
		return nil, err
	})
}

func (f *fakeRemote) call(c remoteCall) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	h := f.handlers[c.Op]
	f.mu.Unlock()
	if h == nil {
		return json.RawMessage(`{}`), nil
	}
	return h(c)
}

func (f *fakeRemote) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Op)
	}
	return out
}

func (f *fakeRemote) networkOps() []string {
	var out []string
	for _, op := range f.ops() {
		if op != "set_token" {
			out = append(out, op)
		}
	}
	return out
}

func (f *fakeRemote) callsTo(op string) []remoteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []remoteCall
	for _, c := range f.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeRemote) Authenticate(ctx context.Context, creds remote.Credentials) (json.RawMessage, error) {
	raw, err := f.call(remoteCall{Op: "authenticate", Creds: creds})
	if err == nil {
		f.mu.Lock()
		f.token = accessTokenOf(raw)
		f.mu.Unlock()
	}
	return raw, err
}

func (f *fakeRemote) ReAuthenticate(ctx context.Context) (json.RawMessage, error) {
	return f.call(remoteCall{Op: "reauthenticate", Creds: remote.Credentials{Strategy: remote.StrategyJWT, AccessToken: f.AccessToken()}})
}

func (f *fakeRemote) Logout(ctx context.Context) error {
	_, err := f.call(remoteCall{Op: "logout"})
	f.mu.Lock()
	f.token = ""
	f.mu.Unlock()
	return err
}

func (f *fakeRemote) SetAccessToken(ctx context.Context, token string) error {
	_, err := f.call(remoteCall{Op: "set_token", ID: token})
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
	return err
}

func (f *fakeRemote) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeRemote) Resource(name string) remote.Resource {
	return fakeResource{remote: f, name: name}
}

type fakeResource struct {
	remote *fakeRemote
	name   string
}

func (r fakeResource) Create(ctx context.Context, data any) (json.RawMessage, error) {
	return r.remote.call(remoteCall{Op: r.name + ".create", Body: data})
}

func (r fakeResource) Get(ctx context.Context, id string) (json.RawMessage, error) {
	return r.remote.call(remoteCall{Op: r.name + ".get", ID: id})
}

func (r fakeResource) Remove(ctx context.Context, id string) (json.RawMessage, error) {
	return r.remote.call(remoteCall{Op: r.name + ".remove", ID: id})
}

func (r fakeResource) Patch(ctx context.Context, id string, data any) (json.RawMessage, error) {
	return r.remote.call(remoteCall{Op: r.name + ".patch", ID: id, Body: data})
}

type harness struct {
	remote   *fakeRemote
	store    *store.Store
	sessions *session.MemoryStore
	metrics  map[int]int
	deps     Deps
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		remote:   newFakeRemote(),
		store:    store.New(),
		sessions: session.NewMemoryStore(),
		metrics:  make(map[int]int),
	}
	h.deps = Deps{
		Remote:     h.remote,
		Dispatcher: h.store,
		Sessions:   h.sessions,
		MagicLink:  MagicLinkPolicy{EmailEnabled: true},
		OAuth:      OAuthPolicy{APIServer: "https://api.example.com/"},
		MetricInc:  func(id int) { h.metrics[id]++ },
		Metrics:    testMetrics,
	}
	return h
}

var testMetrics = Metrics{
	LoginSuccess:      1,
	LoginFailure:      2,
	LoginUnverified:   3,
	AutoLoginSuccess:  4,
	AutoLoginFailure:  5,
	AutoLoginSkipped:  6,
	OAuthRedirect:     7,
	Logout:            8,
	RegisterSuccess:   9,
	RegisterFailure:   10,
	VerifySuccess:     11,
	VerifyFailure:     12,
	RecoveryRequest:   13,
	RecoveryFailure:   14,
	MagicLinkSuccess:  15,
	MagicLinkFailure:  16,
	ValidationFailure: 17,
	ConnectionAdded:   18,
	ConnectionRemoved: 19,
	ConnectionFailure: 20,
	UserLoadSuccess:   21,
	UserLoadFailure:   22,
	SettingsUpdated:   23,
	SettingsFailure:   24,
}

func (h *harness) types() []action.Type {
	return h.store.Types()
}

func (h *harness) alerts() []action.Alert {
	var out []action.Alert
	for _, a := range h.store.History() {
		if al, ok := a.(action.Alert); ok {
			out = append(out, al)
		}
	}
	return out
}

func expectTypes(t *testing.T, got []action.Type, want ...action.Type) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected actions %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("action %d: expected %s, got %s (all: %v)", i, want[i], got[i], got)
		}
	}
}

func expectOps(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected remote calls %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d: expected %s, got %s (all: %v)", i, want[i], got[i], got)
		}
	}
}

func bodyMap(t *testing.T, body any) map[string]any {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	return m
}

// processingValues returns the Processing flags in dispatch order.
func (h *harness) processingValues() []bool {
	var out []bool
	for _, a := range h.store.History() {
		if p, ok := a.(action.Processing); ok {
			out = append(out, p.Processing)
		}
	}
	return out
}

const (
	verifiedSession   = `{"accessToken":"tok-u1","authentication":{"strategy":"local"},"identityProvider":{"id":5,"type":"password","userId":"u1","isVerified":true}}`
	unverifiedSession = `{"accessToken":"tok-u1","identityProvider":{"id":5,"type":"password","userId":"u1","isVerified":false}}`
	userU1            = `{"id":"u1","name":"Ada","identityProviders":[{"id":5,"type":"password","userId":"u1"}]}`
)
