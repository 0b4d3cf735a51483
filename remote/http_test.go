package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method    string
	Path      string
	RawPath   string
	Auth      string
	RequestID string
	Body      map[string]any
}

type recorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (r *recorder) add(req *http.Request) {
	rec := recordedRequest{
		Method:    req.Method,
		Path:      req.URL.Path,
		RawPath:   req.URL.EscapedPath(),
		Auth:      req.Header.Get("Authorization"),
		RequestID: req.Header.Get("X-Request-ID"),
	}
	if data, _ := io.ReadAll(req.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &rec.Body)
	}
	r.mu.Lock()
	r.reqs = append(r.reqs, rec)
	r.mu.Unlock()
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.reqs...)
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*HTTPClient, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(HTTPConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c, rec
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewHTTPClientRejectsBadURL(t *testing.T) {
	_, err := NewHTTPClient(HTTPConfig{})
	assert.Error(t, err)

	_, err = NewHTTPClient(HTTPConfig{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
}

func TestAuthenticateStoresToken(t *testing.T) {
	c, rec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{
			"accessToken":       "tok-1",
			"authentication":    map[string]any{"strategy": "local"},
			"identity-provider": map[string]any{"id": 1, "userId": "u1", "isVerified": true},
		})
	})

	raw, err := c.Authenticate(context.Background(), Credentials{Strategy: StrategyLocal, Email: "a@b.co", Password: "pw"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), "tok-1")
	assert.Equal(t, "tok-1", c.AccessToken())

	reqs := rec.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/authentication", reqs[0].Path)
	assert.Equal(t, "local", reqs[0].Body["strategy"])
	assert.Equal(t, "a@b.co", reqs[0].Body["email"])
	assert.Empty(t, reqs[0].Auth)
	_, err = uuid.Parse(reqs[0].RequestID)
	assert.NoError(t, err, "request id should be a uuid")
}

func TestReAuthenticateUsesCurrentToken(t *testing.T) {
	c, rec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"accessToken": "tok-2"})
	})

	_, err := c.ReAuthenticate(context.Background())
	assert.ErrorIs(t, err, ErrNoAccessToken)
	assert.Empty(t, rec.all(), "no request without a token")

	require.NoError(t, c.SetAccessToken(context.Background(), "tok-1"))
	_, err = c.ReAuthenticate(context.Background())
	require.NoError(t, err)

	reqs := rec.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "jwt", reqs[0].Body["strategy"])
	assert.Equal(t, "tok-1", reqs[0].Body["accessToken"])
	assert.Equal(t, "Bearer tok-1", reqs[0].Auth)
	assert.Equal(t, "tok-2", c.AccessToken())
}

func TestErrorBodyDecoded(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"name":      "NotAuthenticated",
			"message":   "Invalid login",
			"code":      401,
			"className": "not-authenticated",
		})
	})

	_, err := c.Authenticate(context.Background(), Credentials{Strategy: StrategyLocal})
	require.Error(t, err)
	assert.Equal(t, "Invalid login", err.Error())
	assert.True(t, IsNotAuthenticated(err))

	var re *Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "not-authenticated", re.ClassName)
	assert.Empty(t, c.AccessToken())
}

func TestErrorPlainTextBody(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	_, err := c.Resource(ResourceUser).Get(context.Background(), "u1")
	var re *Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusBadGateway, re.Code)
	assert.Equal(t, "upstream exploded", re.Message)
	assert.False(t, IsNotAuthenticated(err))
}

func TestResourceMethods(t *testing.T) {
	c, rec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "x"})
	})
	ctx := context.Background()
	require.NoError(t, c.SetAccessToken(ctx, "tok"))

	ip := c.Resource(ResourceIdentityProvider)
	_, err := ip.Create(ctx, map[string]any{"type": "password"})
	require.NoError(t, err)
	_, err = c.Resource(ResourceUser).Get(ctx, "u 1")
	require.NoError(t, err)
	raw, err := ip.Remove(ctx, "9")
	require.NoError(t, err)
	assert.JSONEq(t, "null", string(raw))
	_, err = c.Resource(ResourceUserSettings).Patch(ctx, "s1", map[string]any{"theme": "dark"})
	require.NoError(t, err)

	reqs := rec.all()
	require.Len(t, reqs, 4)
	assert.Equal(t, []string{http.MethodPost, http.MethodGet, http.MethodDelete, http.MethodPatch},
		[]string{reqs[0].Method, reqs[1].Method, reqs[2].Method, reqs[3].Method})
	assert.Equal(t, "/identity-provider", reqs[0].Path)
	assert.Equal(t, "/user/u 1", reqs[1].Path)
	assert.Equal(t, "/user/u%201", reqs[1].RawPath)
	assert.Equal(t, "/identity-provider/9", reqs[2].Path)
	assert.Equal(t, "/user-settings/s1", reqs[3].Path)
	assert.Equal(t, "dark", reqs[3].Body["theme"])
	for _, r := range reqs {
		assert.Equal(t, "Bearer tok", r.Auth)
	}
}

func TestResourceIDIsOneEscapedSegment(t *testing.T) {
	c, rec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	ctx := context.Background()

	for _, id := range []string{"a b/c", "50%", "x?y#z"} {
		_, err := c.Resource(ResourceUser).Get(ctx, id)
		require.NoError(t, err, id)
	}
	_, err := c.Resource(ResourceIdentityProvider).Remove(ctx, "p/1")
	require.NoError(t, err)
	_, err = c.Resource(ResourceUserSettings).Patch(ctx, "s 1", map[string]any{"k": "v"})
	require.NoError(t, err)

	reqs := rec.all()
	require.Len(t, reqs, 5)
	assert.Equal(t, "/user/a b/c", reqs[0].Path)
	assert.Equal(t, "/user/a%20b%2Fc", reqs[0].RawPath)
	assert.Equal(t, "/user/50%", reqs[1].Path)
	assert.Equal(t, "/user/x?y#z", reqs[2].Path)
	assert.Equal(t, "/identity-provider/p%2F1", reqs[3].RawPath)
	assert.Equal(t, "/user-settings/s 1", reqs[4].Path)
}

func TestLogoutClearsTokenEvenOnFailure(t *testing.T) {
	c, rec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"name": "GeneralError", "message": "boom", "code": 500})
	})
	ctx := context.Background()

	require.NoError(t, c.Logout(ctx), "logout without token is a no-op")
	assert.Empty(t, rec.all())

	require.NoError(t, c.SetAccessToken(ctx, "tok"))
	err := c.Logout(ctx)
	assert.Error(t, err)
	assert.Empty(t, c.AccessToken())

	reqs := rec.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodDelete, reqs[0].Method)
	assert.Equal(t, "/authentication", reqs[0].Path)
}

func TestBaseURLWithPathPrefix(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		writeJSON(w, http.StatusOK, map[string]any{})
	}))
	defer srv.Close()

	c, err := NewHTTPClient(HTTPConfig{BaseURL: srv.URL + "/api/"})
	require.NoError(t, err)
	_, err = c.Resource(ResourceMagicLink).Create(context.Background(), map[string]any{"type": "email"})
	require.NoError(t, err)

	reqs := rec.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/magiclink", reqs[0].Path)
}

func TestObserverReceivesCalls(t *testing.T) {
	var (
		mu   sync.Mutex
		ops  []string
		errs int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusNotFound, map[string]any{"name": "NotFound", "message": "missing", "code": 404})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{})
	}))
	defer srv.Close()

	c, err := NewHTTPClient(HTTPConfig{BaseURL: srv.URL, Observer: func(op string, _ time.Duration, err error) {
		mu.Lock()
		defer mu.Unlock()
		ops = append(ops, op)
		if err != nil {
			errs++
		}
	}})
	require.NoError(t, err)

	_, _ = c.Resource(ResourceUser).Get(context.Background(), "u1")
	_, _ = c.Resource(ResourceAuthManagement).Create(context.Background(), map[string]any{"action": "x"})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"user.get", "authManagement.create"}, ops)
	assert.Equal(t, 1, errs)
}

func TestContextCancellation(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Resource(ResourceUser).Get(ctx, "u1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, c.SetAccessToken(ctx, "x"), context.Canceled)
}
