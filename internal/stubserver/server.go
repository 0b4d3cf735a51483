package stubserver

import (
	"crypto/rand"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goAuthClient/internal/rate"
	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/MrEthical07/goAuthClient/logging"
	"github.com/MrEthical07/goAuthClient/model"
)

// MessageKind classifies captured outbound notifications.
type MessageKind string

const (
	MessageVerifySignup  MessageKind = "verify-signup"
	MessageResetPassword MessageKind = "reset-password"
	MessageMagicLink     MessageKind = "magic-link"
)

// Message is a notification the backend would have sent by email or SMS.
type Message struct {
	Kind  MessageKind `json:"kind"`
	To    string      `json:"to"`
	Token string      `json:"token"`
}

// Config configures a [Server].
type Config struct {
	// Secret is the HS256 signing key. A random key is generated when empty.
	Secret   []byte
	TokenTTL time.Duration
	// AutoVerify marks new identity providers verified on creation.
	AutoVerify bool
	// OAuthCallback receives OAuth redirects as
	// {OAuthCallback}#access_token={token}.
	OAuthCallback string
	Hasher        HasherConfig
	Logger        logging.Logger

	// Redis enables throttling of failed password logins per email. Nil
	// disables throttling.
	Redis            redis.UniversalClient
	MaxLoginAttempts int
	LoginCooldown    time.Duration
}

type providerRecord struct {
	model.IdentityProvider
	hash string
}

type userRecord struct {
	id       string
	name     string
	settings map[string]any
}

// Server is an in-memory Feathers-style authentication backend.
//
// Server is safe for concurrent use.
type Server struct {
	cfg    Config
	tokens *jwt.Manager
	hasher *Hasher
	logins *rate.Limiter
	logger logging.Logger
	router *mux.Router

	mu           sync.Mutex
	users        map[string]*userRecord
	providers    map[string]*providerRecord
	verifyTokens map[string]string
	resetTokens  map[string]string
	magicTokens  map[string]string
	revoked      map[string]struct{}
	outbox       []Message
}

var (
	errNotFound      = errors.New("not found")
	errAlreadyExists = errors.New("already exists")
)

// New returns a backend with no users.
func New(cfg Config) (*Server, error) {
	if len(cfg.Secret) == 0 {
		cfg.Secret = make([]byte, 32)
		if _, err := rand.Read(cfg.Secret); err != nil {
			return nil, err
		}
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.OAuthCallback == "" {
		cfg.OAuthCallback = "/"
	}
	if cfg.Hasher == (HasherConfig{}) {
		cfg.Hasher = DefaultHasherConfig()
	}

	tokens, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.TokenTTL,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    cfg.Secret,
		Issuer:        "goauth-stub",
	})
	if err != nil {
		return nil, err
	}
	hasher, err := NewHasher(cfg.Hasher)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:          cfg,
		tokens:       tokens,
		hasher:       hasher,
		logger:       logging.OrNoOp(cfg.Logger),
		users:        make(map[string]*userRecord),
		providers:    make(map[string]*providerRecord),
		verifyTokens: make(map[string]string),
		resetTokens:  make(map[string]string),
		magicTokens:  make(map[string]string),
		revoked:      make(map[string]struct{}),
	}
	if cfg.Redis != nil {
		s.logins = rate.New(cfg.Redis, rate.Config{
			Prefix:      "stub:login",
			MaxAttempts: cfg.MaxLoginAttempts,
			Window:      cfg.LoginCooldown,
		})
	}
	s.router = s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetAutoVerify toggles verification of newly created identity providers.
func (s *Server) SetAutoVerify(on bool) {
	s.mu.Lock()
	s.cfg.AutoVerify = on
	s.mu.Unlock()
}

// SeedUser creates a user with a password identity and returns the user ID.
func (s *Server) SeedUser(email, password string, verified bool) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findProviderLocked(model.ProviderPassword, email) != nil {
		return "", errAlreadyExists
	}
	u := s.newUserLocked(email)
	p := s.addProviderLocked(u.id, model.ProviderPassword, email, verified)
	p.hash = hash
	return u.id, nil
}

// Outbox returns a copy of every captured notification, oldest first.
func (s *Server) Outbox() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.outbox...)
}

// LastMessage returns the newest notification of kind sent to to.
func (s *Server) LastMessage(kind MessageKind, to string) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.outbox) - 1; i >= 0; i-- {
		if m := s.outbox[i]; m.Kind == kind && m.To == to {
			return m, true
		}
	}
	return Message{}, false
}

func (s *Server) newUserLocked(name string) *userRecord {
	id := uuid.NewString()
	u := &userRecord{
		id:       id,
		name:     name,
		settings: map[string]any{"id": id},
	}
	s.users[id] = u
	return u
}

func (s *Server) addProviderLocked(userID string, typ model.ProviderType, token string, verified bool) *providerRecord {
	p := &providerRecord{IdentityProvider: model.IdentityProvider{
		ID:         model.ID(uuid.NewString()),
		Type:       typ,
		UserID:     model.ID(userID),
		Token:      token,
		IsVerified: verified || s.cfg.AutoVerify,
	}}
	s.providers[string(p.ID)] = p
	return p
}

func (s *Server) findProviderLocked(typ model.ProviderType, token string) *providerRecord {
	token = strings.TrimSpace(token)
	for _, p := range s.providers {
		if p.Type == typ && strings.EqualFold(p.Token, token) {
			return p
		}
	}
	return nil
}

func (s *Server) providersOfLocked(userID string) []model.IdentityProvider {
	out := make([]model.IdentityProvider, 0, 2)
	for _, p := range s.providers {
		if string(p.UserID) == userID {
			out = append(out, p.IdentityProvider)
		}
	}
	return out
}

func (s *Server) sendLocked(kind MessageKind, to string, tokens map[string]string, providerID string) {
	token := uuid.NewString()
	tokens[token] = providerID
	s.outbox = append(s.outbox, Message{Kind: kind, To: to, Token: token})
	s.logger.Debug("stub notification", "kind", kind, "to", to, "token", token)
}

func (s *Server) issue(p *providerRecord, strategy string) (string, error) {
	return s.tokens.Issue(string(p.UserID), string(p.ID), strategy)
}
