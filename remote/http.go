package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	authenticationPath = "authentication"
	maxErrorBody       = 4 << 10
	maxResponseBody    = 1 << 20
)

// CallObserver is notified after every HTTP round-trip.
type CallObserver func(op string, elapsed time.Duration, err error)

// HTTPConfig configures an [HTTPClient].
type HTTPConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// Client overrides the underlying http.Client. Timeout is ignored when set.
	Client   *http.Client
	Observer CallObserver
}

// HTTPClient implements [Service] over HTTP+JSON.
type HTTPClient struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	observe   CallObserver

	mu    sync.RWMutex
	token string
}

var _ Service = (*HTTPClient)(nil)

// NewHTTPClient validates cfg and returns a client.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("remote base url required")
	}
	base, err := url.Parse(strings.TrimRight(raw, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse remote base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported remote url scheme %q", base.Scheme)
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "goauth-client"
	}
	return &HTTPClient{
		base:      base,
		http:      hc,
		userAgent: ua,
		observe:   cfg.Observer,
	}, nil
}

// Authenticate posts creds to the authentication endpoint. On success the
// returned access token replaces the current one.
func (c *HTTPClient) Authenticate(ctx context.Context, creds Credentials) (json.RawMessage, error) {
	res, err := c.do(ctx, "authenticate", http.MethodPost, authenticationPath, "", creds)
	if err != nil {
		return nil, err
	}
	var body struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(res, &body); err == nil && body.AccessToken != "" {
		c.setToken(body.AccessToken)
	}
	return res, nil
}

// ReAuthenticate authenticates with the jwt strategy and the current token.
func (c *HTTPClient) ReAuthenticate(ctx context.Context) (json.RawMessage, error) {
	token := c.AccessToken()
	if token == "" {
		return nil, ErrNoAccessToken
	}
	return c.Authenticate(ctx, Credentials{Strategy: StrategyJWT, AccessToken: token})
}

// Logout removes the remote authentication and always forgets the local token.
func (c *HTTPClient) Logout(ctx context.Context) error {
	if c.AccessToken() == "" {
		return nil
	}
	_, err := c.do(ctx, "logout", http.MethodDelete, authenticationPath, "", nil)
	c.setToken("")
	return err
}

// SetAccessToken replaces the token sent with every request.
func (c *HTTPClient) SetAccessToken(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.setToken(strings.TrimSpace(token))
	return nil
}

// AccessToken returns the current token.
func (c *HTTPClient) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Resource returns the named collection.
func (c *HTTPClient) Resource(name string) Resource {
	return &httpResource{client: c, name: strings.Trim(name, "/")}
}

type httpResource struct {
	client *HTTPClient
	name   string
}

func (r *httpResource) Create(ctx context.Context, data any) (json.RawMessage, error) {
	return r.client.do(ctx, r.name+".create", http.MethodPost, r.name, "", data)
}

func (r *httpResource) Get(ctx context.Context, id string) (json.RawMessage, error) {
	return r.client.do(ctx, r.name+".get", http.MethodGet, r.name, id, nil)
}

func (r *httpResource) Remove(ctx context.Context, id string) (json.RawMessage, error) {
	return r.client.do(ctx, r.name+".remove", http.MethodDelete, r.name, id, nil)
}

func (r *httpResource) Patch(ctx context.Context, id string, data any) (json.RawMessage, error) {
	return r.client.do(ctx, r.name+".patch", http.MethodPatch, r.name, id, data)
}

// target resolves {base}/{name}[/{id}]. The id is a single path segment: its
// reserved characters, '/' included, are percent-encoded once.
func (c *HTTPClient) target(name, id string) *url.URL {
	u := *c.base
	u.RawQuery, u.Fragment = "", ""
	u.Path = c.base.Path + name
	u.RawPath = c.base.EscapedPath() + name
	if id != "" {
		u.Path += "/" + id
		u.RawPath += "/" + url.PathEscape(id)
	}
	return &u
}

func (c *HTTPClient) do(ctx context.Context, op, method, name, id string, body any) (_ json.RawMessage, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.observe != nil {
		start := time.Now()
		defer func() { c.observe(op, time.Since(start), err) }()
	}

	target := c.target(name, id)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", op, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(data), nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	remoteErr := &Error{}
	if err := json.Unmarshal(data, remoteErr); err != nil || (remoteErr.Message == "" && remoteErr.Name == "") {
		remoteErr = &Error{
			Name:    http.StatusText(resp.StatusCode),
			Message: strings.TrimSpace(string(data)),
		}
	}
	if remoteErr.Code == 0 {
		remoteErr.Code = resp.StatusCode
	}
	return remoteErr
}
