// Package store holds the client-side auth state and applies dispatched
// actions to it through a pure reducer.
package store

import (
	"encoding/json"
	"sync"

	"github.com/MrEthical07/goAuthClient/action"
	"github.com/MrEthical07/goAuthClient/model"
)

const (
	// MaxAlerts is the number of most recent alerts State keeps.
	MaxAlerts = 32
	// DefaultHistoryLimit is the number of most recent actions New retains.
	DefaultHistoryLimit = 1024
)

// State is the auth slice of the client state.
type State struct {
	IsProcessing     bool
	IsLoggedIn       bool
	AuthUser         *model.Session
	User             *model.User
	Error            string
	IdentityProvider *model.IdentityProvider

	// Outcome flags are nil until the corresponding flow reports.
	IsVerified      *bool
	IsResent        *bool
	IsForgot        *bool
	IsReset         *bool
	IsMagicLinkSent *bool

	Settings json.RawMessage
	Alerts   []action.Alert
}

// Clone returns a copy that shares no mutable memory with s.
func (s State) Clone() State {
	out := s
	if s.AuthUser != nil {
		au := *s.AuthUser
		out.AuthUser = &au
	}
	if s.User != nil {
		u := *s.User
		u.IdentityProviders = append([]model.IdentityProvider(nil), s.User.IdentityProviders...)
		if s.User.Subscription != nil {
			sub := *s.User.Subscription
			u.Subscription = &sub
		}
		out.User = &u
	}
	if s.IdentityProvider != nil {
		ip := *s.IdentityProvider
		out.IdentityProvider = &ip
	}
	out.IsVerified = cloneBool(s.IsVerified)
	out.IsResent = cloneBool(s.IsResent)
	out.IsForgot = cloneBool(s.IsForgot)
	out.IsReset = cloneBool(s.IsReset)
	out.IsMagicLinkSent = cloneBool(s.IsMagicLinkSent)
	out.Settings = append(json.RawMessage(nil), s.Settings...)
	out.Alerts = append([]action.Alert(nil), s.Alerts...)
	return out
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func boolPtr(b bool) *bool { return &b }

// Reduce returns the state after applying a. It never mutates prev.
func Reduce(prev State, a action.Action) State {
	next := prev.Clone()

	switch act := a.(type) {
	case action.Processing:
		next.IsProcessing = act.Processing
	case action.LoginUserSuccess:
		session := act.Session
		next.AuthUser = &session
		next.IsLoggedIn = true
		next.IsVerified = boolPtr(session.Verified())
		next.Error = ""
	case action.LoginUserError:
		next.Error = act.Message
		next.IsLoggedIn = false
	case action.DidLogout:
		next = State{Alerts: next.Alerts}
	case action.RegisterUserByEmailSuccess:
		ip := act.IdentityProvider
		next.IdentityProvider = &ip
		next.Error = ""
	case action.RegisterUserByEmailError:
		next.Error = act.Message
	case action.DidVerifyEmail:
		next.IsVerified = boolPtr(act.OK)
	case action.DidResendVerificationEmail:
		next.IsResent = boolPtr(act.OK)
	case action.DidForgotPassword:
		next.IsForgot = boolPtr(act.OK)
	case action.DidResetPassword:
		next.IsReset = boolPtr(act.OK)
	case action.DidCreateMagicLink:
		next.IsMagicLinkSent = boolPtr(act.OK)
	case action.LoadedUserData:
		u := act.User
		next.User = &u
		if len(u.Settings) > 0 {
			next.Settings = append(json.RawMessage(nil), u.Settings...)
		}
	case action.UpdateSettings:
		next.Settings = append(json.RawMessage(nil), act.Settings...)
		if next.User != nil {
			next.User.Settings = append(json.RawMessage(nil), act.Settings...)
		}
	case action.Alert:
		next.Alerts = append(next.Alerts, act)
		if n := len(next.Alerts); n > MaxAlerts {
			next.Alerts = next.Alerts[n-MaxAlerts:]
		}
	}

	return next
}

// Listener is notified after each action is applied.
type Listener func(a action.Action, s State)

// Store applies actions one at a time and records them in an append-only log
// holding the most recent actions up to its history limit.
type Store struct {
	mu        sync.Mutex
	state     State
	history   []action.Action
	limit     int
	listeners map[int]Listener
	nextID    int
}

var _ action.Dispatcher = (*Store)(nil)

// New returns an empty store retaining [DefaultHistoryLimit] actions.
func New() *Store {
	return NewWithHistoryLimit(DefaultHistoryLimit)
}

// NewWithHistoryLimit returns an empty store retaining the last limit
// actions. A limit <= 0 keeps every action.
func NewWithHistoryLimit(limit int) *Store {
	return &Store{limit: limit, listeners: make(map[int]Listener)}
}

// Dispatch reduces a into the state, appends it to the history and calls
// every subscriber synchronously, in subscription order, after the lock is
// released.
func (s *Store) Dispatch(a action.Action) {
	if a == nil {
		return
	}

	s.mu.Lock()
	s.state = Reduce(s.state, a)
	s.history = append(s.history, a)
	if s.limit > 0 && len(s.history) >= 2*s.limit {
		s.history = append([]action.Action(nil), s.recentLocked()...)
	}
	snapshot := s.state.Clone()
	listeners := s.sortedListeners()
	s.mu.Unlock()

	for _, l := range listeners {
		l(a, snapshot)
	}
}

func (s *Store) sortedListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// History returns a copy of every action dispatched so far.
func (s *Store) History() []action.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]action.Action(nil), s.recentLocked()...)
}

// recentLocked returns the retained window of the history.
func (s *Store) recentLocked() []action.Action {
	if s.limit > 0 && len(s.history) > s.limit {
		return s.history[len(s.history)-s.limit:]
	}
	return s.history
}

// ClearHistory drops every recorded action. State is unchanged.
func (s *Store) ClearHistory() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}

// Types returns the type of every dispatched action, in order.
func (s *Store) Types() []action.Type {
	s.mu.Lock()
	defer s.mu.Unlock()
	recent := s.recentLocked()
	out := make([]action.Type, len(recent))
	for i, a := range recent {
		out[i] = a.Type()
	}
	return out
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	if l == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}
