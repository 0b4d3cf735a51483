package stubserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/MrEthical07/goAuthClient/internal/rate"
	"github.com/MrEthical07/goAuthClient/internal/validate"
	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/MrEthical07/goAuthClient/model"
	"github.com/MrEthical07/goAuthClient/remote"
)

const maxBody = 64 << 10

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/authentication", s.authenticate).Methods(http.MethodPost)
	r.HandleFunc("/authentication", s.withAuth(s.logout)).Methods(http.MethodDelete)
	r.HandleFunc("/identity-provider", s.createIdentityProvider).Methods(http.MethodPost)
	r.HandleFunc("/identity-provider/{id}", s.withAuth(s.removeIdentityProvider)).Methods(http.MethodDelete)
	r.HandleFunc("/authManagement", s.authManagement).Methods(http.MethodPost)
	r.HandleFunc("/magiclink", s.createMagicLink).Methods(http.MethodPost)
	r.HandleFunc("/magiclink/{token}", s.redeemMagicLink).Methods(http.MethodGet)
	r.HandleFunc("/user/{id}", s.withAuth(s.getUser)).Methods(http.MethodGet)
	r.HandleFunc("/user-settings/{id}", s.withAuth(s.patchUserSettings)).Methods(http.MethodPatch)
	r.HandleFunc("/oauth/{provider}", s.oauth).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Page not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("stub request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Header.Get("X-Request-ID"),
			"elapsed", time.Since(start),
		)
	})
}

/*
====================================
AUTHENTICATION
====================================
*/

type authResult struct {
	AccessToken      string                 `json:"accessToken"`
	Authentication   model.Authentication   `json:"authentication"`
	IdentityProvider model.IdentityProvider `json:"identityProvider"`
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) {
	var creds remote.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}

	switch creds.Strategy {
	case remote.StrategyLocal:
		if !s.checkLoginBudget(w, r, creds.Email) {
			return
		}
		s.mu.Lock()
		p := s.findProviderLocked(model.ProviderPassword, creds.Email)
		var hash string
		if p != nil {
			hash = p.hash
		}
		s.mu.Unlock()

		if p == nil || hash == "" {
			s.recordLoginFailure(r, creds.Email)
			writeError(w, http.StatusUnauthorized, "Invalid login")
			return
		}
		ok, err := s.hasher.Verify(creds.Password, hash)
		if err != nil || !ok {
			s.recordLoginFailure(r, creds.Email)
			writeError(w, http.StatusUnauthorized, "Invalid login")
			return
		}
		s.resetLoginBudget(r, creds.Email)
		s.respondSession(w, p, remote.StrategyLocal, "")

	case remote.StrategyJWT:
		claims, err := s.verifyToken(creds.AccessToken)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "jwt expired or invalid")
			return
		}
		s.mu.Lock()
		p := s.providers[claims.IdentityProviderID]
		s.mu.Unlock()
		if p == nil {
			writeError(w, http.StatusUnauthorized, "Identity provider no longer exists")
			return
		}
		s.respondSession(w, p, remote.StrategyJWT, creds.AccessToken)

	default:
		writeError(w, http.StatusUnauthorized, "Invalid authentication strategy")
	}
}

func (s *Server) checkLoginBudget(w http.ResponseWriter, r *http.Request, email string) bool {
	if s.logins == nil {
		return true
	}
	err := s.logins.Check(r.Context(), email)
	switch {
	case err == nil:
		return true
	case errors.Is(err, rate.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "Too many login attempts")
	default:
		s.logger.Warn("login throttle unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Login temporarily unavailable")
	}
	return false
}

func (s *Server) recordLoginFailure(r *http.Request, email string) {
	if s.logins == nil {
		return
	}
	if err := s.logins.Hit(r.Context(), email); err != nil && !errors.Is(err, rate.ErrRateLimited) {
		s.logger.Warn("record login failure", "error", err)
	}
}

func (s *Server) resetLoginBudget(r *http.Request, email string) {
	if s.logins == nil {
		return
	}
	if err := s.logins.Reset(r.Context(), email); err != nil {
		s.logger.Warn("reset login throttle", "error", err)
	}
}

// respondSession reuses token when set, as jwt re-authentication does.
func (s *Server) respondSession(w http.ResponseWriter, p *providerRecord, strategy, token string) {
	if token == "" {
		var err error
		if token, err = s.issue(p, strategy); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	s.mu.Lock()
	ip := p.IdentityProvider
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, authResult{
		AccessToken:      token,
		Authentication:   model.Authentication{Strategy: strategy},
		IdentityProvider: ip,
	})
}

func (s *Server) logout(w http.ResponseWriter, _ *http.Request, a auth) {
	s.mu.Lock()
	s.revoked[a.token] = struct{}{}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, authResult{
		AccessToken:    a.token,
		Authentication: model.Authentication{Strategy: remote.StrategyJWT},
	})
}

type auth struct {
	token  string
	claims *jwt.Claims
}

func (s *Server) withAuth(h func(http.ResponseWriter, *http.Request, auth)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		claims, err := s.verifyToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "jwt expired or invalid")
			return
		}
		h(w, r, auth{token: token, claims: claims})
	}
}

func (s *Server) verifyToken(token string) (*jwt.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	_, revoked := s.revoked[token]
	s.mu.Unlock()
	if revoked {
		return nil, errors.New("token revoked")
	}
	return claims, nil
}

// optionalAuth returns the caller's user ID, "" for anonymous callers, and
// false when a bearer token was sent but is invalid.
func (s *Server) optionalAuth(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return "", true
	}
	claims, err := s.verifyToken(token)
	if err != nil {
		return "", false
	}
	return claims.UserID(), true
}

/*
====================================
IDENTITY PROVIDERS
====================================
*/

type identityProviderCreate struct {
	Token    string             `json:"token"`
	Password string             `json:"password"`
	Type     model.ProviderType `json:"type"`
	UserID   string             `json:"userId"`
}

func (s *Server) createIdentityProvider(w http.ResponseWriter, r *http.Request) {
	var req identityProviderCreate
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Type != model.ProviderPassword {
		writeError(w, http.StatusBadRequest, "Only password identity providers can be created directly")
		return
	}
	email := strings.TrimSpace(req.Token)
	if !validate.Email(email) || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if !s.authorizeOwner(w, r, req.UserID) {
		return
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	if s.findProviderLocked(model.ProviderPassword, email) != nil {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "Email already exists")
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = s.newUserLocked(email).id
	} else if _, ok := s.users[userID]; !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	p := s.addProviderLocked(userID, model.ProviderPassword, email, false)
	p.hash = hash
	if !p.IsVerified {
		s.sendLocked(MessageVerifySignup, email, s.verifyTokens, string(p.ID))
	}
	ip := p.IdentityProvider
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, ip)
}

// authorizeOwner admits anonymous callers when userID is empty and otherwise
// requires a bearer token for userID.
func (s *Server) authorizeOwner(w http.ResponseWriter, r *http.Request, userID string) bool {
	caller, ok := s.optionalAuth(r)
	switch {
	case !ok:
		writeError(w, http.StatusUnauthorized, "jwt expired or invalid")
		return false
	case userID == "":
		return true
	case caller == "":
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return false
	case caller != userID:
		writeError(w, http.StatusForbidden, "You can only link identities to your own account")
		return false
	}
	return true
}

func (s *Server) removeIdentityProvider(w http.ResponseWriter, r *http.Request, a auth) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	p, ok := s.providers[id]
	switch {
	case !ok:
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "No record found for id '"+id+"'")
		return
	case string(p.UserID) != a.claims.UserID():
		s.mu.Unlock()
		writeError(w, http.StatusForbidden, "Identity provider belongs to another user")
		return
	}
	delete(s.providers, id)
	ip := p.IdentityProvider
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, ip)
}

/*
====================================
AUTH MANAGEMENT
====================================
*/

type authManagementRequest struct {
	Action string          `json:"action"`
	Value  json.RawMessage `json:"value"`
}

type identityRef struct {
	Token    string             `json:"token"`
	Type     model.ProviderType `json:"type"`
	Password string             `json:"password"`
}

func (s *Server) authManagement(w http.ResponseWriter, r *http.Request) {
	var req authManagementRequest
	if !decodeBody(w, r, &req) {
		return
	}

	switch req.Action {
	case "verifySignupLong":
		var token string
		if err := json.Unmarshal(req.Value, &token); err != nil || token == "" {
			writeError(w, http.StatusBadRequest, "Verification token required")
			return
		}
		s.verifySignup(w, token)

	case "resendVerifySignup":
		var ref identityRef
		if err := json.Unmarshal(req.Value, &ref); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid value")
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		p := s.findProviderLocked(model.ProviderPassword, ref.Token)
		switch {
		case p == nil:
			writeError(w, http.StatusBadRequest, "User not found")
		case p.IsVerified:
			writeError(w, http.StatusBadRequest, "User is already verified")
		default:
			s.sendLocked(MessageVerifySignup, p.Token, s.verifyTokens, string(p.ID))
			writeJSON(w, http.StatusCreated, p.IdentityProvider)
		}

	case "sendResetPwd":
		var ref identityRef
		if err := json.Unmarshal(req.Value, &ref); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid value")
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		p := s.findProviderLocked(model.ProviderPassword, ref.Token)
		if p == nil {
			writeError(w, http.StatusBadRequest, "User not found")
			return
		}
		s.sendLocked(MessageResetPassword, p.Token, s.resetTokens, string(p.ID))
		writeJSON(w, http.StatusCreated, p.IdentityProvider)

	case "resetPwdLong":
		var ref identityRef
		if err := json.Unmarshal(req.Value, &ref); err != nil || ref.Password == "" {
			writeError(w, http.StatusBadRequest, "Token and password required")
			return
		}
		s.resetPassword(w, ref.Token, ref.Password)

	default:
		writeError(w, http.StatusBadRequest, "Invalid action '"+req.Action+"'")
	}
}

func (s *Server) verifySignup(w http.ResponseWriter, token string) {
	s.mu.Lock()
	id, ok := s.verifyTokens[token]
	p := s.providers[id]
	if !ok || p == nil {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Verification token was not found")
		return
	}
	delete(s.verifyTokens, token)
	p.IsVerified = true
	s.mu.Unlock()

	s.respondSession(w, p, remote.StrategyJWT, "")
}

func (s *Server) resetPassword(w http.ResponseWriter, token, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.resetTokens[token]
	p := s.providers[id]
	if !ok || p == nil {
		writeError(w, http.StatusBadRequest, "Password reset token was not found")
		return
	}
	delete(s.resetTokens, token)
	p.hash = hash
	writeJSON(w, http.StatusCreated, p.IdentityProvider)
}

/*
====================================
MAGIC LINKS
====================================
*/

type magicLinkCreate struct {
	Type   model.ProviderType `json:"type"`
	Email  string             `json:"email"`
	Mobile string             `json:"mobile"`
	UserID string             `json:"userId"`
}

type magicLinkResult struct {
	Type   model.ProviderType `json:"type"`
	UserID model.ID           `json:"userId"`
}

func (s *Server) createMagicLink(w http.ResponseWriter, r *http.Request) {
	var req magicLinkCreate
	if !decodeBody(w, r, &req) {
		return
	}

	var to string
	switch req.Type {
	case model.ProviderEmail:
		to = strings.TrimSpace(req.Email)
		if !validate.Email(to) {
			writeError(w, http.StatusBadRequest, "Invalid email")
			return
		}
	case model.ProviderSMS:
		to = strings.TrimSpace(req.Mobile)
		if !validate.Phone(to) {
			writeError(w, http.StatusBadRequest, "Invalid mobile number")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "Unsupported magic link type")
		return
	}
	if !s.authorizeOwner(w, r, req.UserID) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findProviderLocked(req.Type, to)
	switch {
	case p != nil && req.UserID != "" && string(p.UserID) != req.UserID:
		writeError(w, http.StatusConflict, "Identity is linked to another account")
		return
	case p == nil:
		userID := req.UserID
		if userID == "" {
			userID = s.newUserLocked(to).id
		} else if _, ok := s.users[userID]; !ok {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		p = s.addProviderLocked(userID, req.Type, to, false)
	}
	s.sendLocked(MessageMagicLink, to, s.magicTokens, string(p.ID))
	writeJSON(w, http.StatusCreated, magicLinkResult{Type: req.Type, UserID: p.UserID})
}

type accessTokenResult struct {
	AccessToken string `json:"accessToken"`
}

// redeemMagicLink consumes a magic-link token, verifying its identity, and
// returns an access token for jwt login.
func (s *Server) redeemMagicLink(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	s.mu.Lock()
	id, ok := s.magicTokens[token]
	p := s.providers[id]
	if !ok || p == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Magic link expired or not found")
		return
	}
	delete(s.magicTokens, token)
	p.IsVerified = true
	s.mu.Unlock()

	access, err := s.issue(p, string(p.Type))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, accessTokenResult{AccessToken: access})
}

/*
====================================
USERS
====================================
*/

type userResult struct {
	ID                model.ID                 `json:"id"`
	Name              string                   `json:"name"`
	IdentityProviders []model.IdentityProvider `json:"identityProviders"`
	Settings          map[string]any           `json:"user_setting"`
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request, a auth) {
	id := mux.Vars(r)["id"]
	if id != a.claims.UserID() {
		writeError(w, http.StatusForbidden, "You can only read your own user")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		writeError(w, http.StatusNotFound, "No record found for id '"+id+"'")
		return
	}
	writeJSON(w, http.StatusOK, userResult{
		ID:                model.ID(u.id),
		Name:              u.name,
		IdentityProviders: s.providersOfLocked(u.id),
		Settings:          u.settings,
	})
}

// patchUserSettings merges the body into the settings record. Settings
// records share their owner's ID.
func (s *Server) patchUserSettings(w http.ResponseWriter, r *http.Request, a auth) {
	id := mux.Vars(r)["id"]
	if id != a.claims.UserID() {
		writeError(w, http.StatusForbidden, "You can only update your own settings")
		return
	}
	var patch map[string]any
	if !decodeBody(w, r, &patch) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		writeError(w, http.StatusNotFound, "No record found for id '"+id+"'")
		return
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		u.settings[k] = v
	}
	writeJSON(w, http.StatusOK, u.settings)
}

/*
====================================
OAUTH
====================================
*/

// oauth skips the provider round-trip: it links a fresh identity of the
// requested type and redirects to the callback with an access token.
func (s *Server) oauth(w http.ResponseWriter, r *http.Request) {
	provider := model.ProviderType(mux.Vars(r)["provider"])
	if !provider.IsOAuth() {
		writeError(w, http.StatusNotFound, "Unknown OAuth provider")
		return
	}
	userID := r.URL.Query().Get("userId")

	s.mu.Lock()
	if userID == "" {
		userID = s.newUserLocked(string(provider) + " user").id
	} else if _, ok := s.users[userID]; !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	p := s.addProviderLocked(userID, provider, string(provider)+":"+userID, true)
	s.mu.Unlock()

	token, err := s.issue(p, string(provider))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	target := s.cfg.OAuthCallback + "#" + url.Values{"access_token": {token}}.Encode()
	http.Redirect(w, r, target, http.StatusFound)
}

/*
====================================
WIRE HELPERS
====================================
*/

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unreadable body")
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var errorNames = map[int][2]string{
	http.StatusBadRequest:          {"BadRequest", "bad-request"},
	http.StatusUnauthorized:        {"NotAuthenticated", "not-authenticated"},
	http.StatusForbidden:           {"Forbidden", "forbidden"},
	http.StatusNotFound:            {"NotFound", "not-found"},
	http.StatusMethodNotAllowed:    {"MethodNotAllowed", "method-not-allowed"},
	http.StatusConflict:            {"Conflict", "conflict"},
	http.StatusTooManyRequests:     {"TooManyRequests", "too-many-requests"},
	http.StatusServiceUnavailable:  {"Unavailable", "unavailable"},
	http.StatusInternalServerError: {"GeneralError", "general-error"},
}

// writeError writes a Feathers error body.
func writeError(w http.ResponseWriter, status int, message string) {
	names, ok := errorNames[status]
	if !ok {
		names = errorNames[http.StatusInternalServerError]
	}
	writeJSON(w, status, remote.Error{
		Name:      names[0],
		Message:   message,
		Code:      status,
		ClassName: names[1],
	})
}
