package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// ErrEmptyPayload is returned when a resolve function receives no data.
var ErrEmptyPayload = errors.New("empty payload")

// ID is a remote record identifier. The service emits both numeric and string
// identifiers; both decode into the same string form.
type ID string

// UnmarshalJSON accepts a JSON string, number, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier as a string.
func (id ID) String() string {
	return string(id)
}

// Int reports the identifier as an integer when it is numeric.
func (id ID) Int() (int64, bool) {
	v, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ProviderType names the kind of credential an identity provider holds.
type ProviderType string

const (
	ProviderPassword ProviderType = "password"
	ProviderEmail    ProviderType = "email"
	ProviderSMS      ProviderType = "sms"
	ProviderGithub   ProviderType = "github"
	ProviderGoogle   ProviderType = "google"
	ProviderFacebook ProviderType = "facebook"
)

// IsOAuth reports whether the provider type is an external OAuth provider.
func (t ProviderType) IsOAuth() bool {
	switch t {
	case ProviderGithub, ProviderGoogle, ProviderFacebook:
		return true
	default:
		return false
	}
}

// IdentityProvider is a credential record linked to a user account.
type IdentityProvider struct {
	ID         ID           `json:"id,omitempty"`
	Type       ProviderType `json:"type,omitempty"`
	UserID     ID           `json:"userId,omitempty"`
	Token      string       `json:"token,omitempty"`
	IsVerified bool         `json:"isVerified"`
}

// Authentication carries the strategy the remote service accepted.
type Authentication struct {
	Strategy    string `json:"strategy,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
}

// Session is the authenticated client-side representation of a logged-in user.
type Session struct {
	AccessToken      string           `json:"accessToken"`
	Authentication   Authentication   `json:"authentication"`
	IdentityProvider IdentityProvider `json:"identityProvider"`
	Raw              json.RawMessage  `json:"-"`
}

// Verified reports whether the session's identity provider is verified.
func (s *Session) Verified() bool {
	return s != nil && s.IdentityProvider.IsVerified
}

// UserID returns the account the session authenticates.
func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	return s.IdentityProvider.UserID.String()
}

// Subscription is the optional billing plan attached to a user.
type Subscription struct {
	ID          ID     `json:"id,omitempty"`
	Plan        string `json:"plan,omitempty"`
	Status      bool   `json:"status"`
	Quantity    int    `json:"quantity,omitempty"`
	UnusedSeats int    `json:"unusedSeats,omitempty"`
}

// User is the profile fetched after a session is established.
type User struct {
	ID                ID                 `json:"id"`
	Name              string             `json:"name,omitempty"`
	AvatarID          string             `json:"avatarId,omitempty"`
	UserRole          string             `json:"userRole,omitempty"`
	IdentityProviders []IdentityProvider `json:"identityProviders,omitempty"`
	Subscription      *Subscription      `json:"subscription,omitempty"`
	Settings          json.RawMessage    `json:"user_setting,omitempty"`
}

// ConnectionOf returns the first linked identity provider of the given type.
func (u *User) ConnectionOf(t ProviderType) (IdentityProvider, bool) {
	if u == nil {
		return IdentityProvider{}, false
	}
	for _, ip := range u.IdentityProviders {
		if ip.Type == t {
			return ip, true
		}
	}
	return IdentityProvider{}, false
}

type rawSession struct {
	AccessToken       string            `json:"accessToken"`
	Authentication    Authentication    `json:"authentication"`
	IdentityProvider  *IdentityProvider `json:"identityProvider"`
	IdentityProvider2 *IdentityProvider `json:"identity-provider"`
}

// ResolveSession decodes an authenticate/re-authenticate response.
func ResolveSession(raw []byte) (*Session, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyPayload
	}
	var r rawSession
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}

	s := &Session{
		AccessToken:    r.AccessToken,
		Authentication: r.Authentication,
		Raw:            append(json.RawMessage(nil), raw...),
	}
	switch {
	case r.IdentityProvider2 != nil:
		s.IdentityProvider = *r.IdentityProvider2
	case r.IdentityProvider != nil:
		s.IdentityProvider = *r.IdentityProvider
	}
	if s.AccessToken == "" {
		s.AccessToken = r.Authentication.AccessToken
	}
	return s, nil
}

type rawUser struct {
	User
	Subscriptions []Subscription `json:"subscriptions"`
}

// ResolveUser decodes a user payload. When the service returns a
// `subscriptions` list, the first entry becomes the user's subscription.
func ResolveUser(raw []byte) (*User, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyPayload
	}
	var r rawUser
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	u := r.User
	if u.Subscription == nil && len(r.Subscriptions) > 0 {
		sub := r.Subscriptions[0]
		u.Subscription = &sub
	}
	return &u, nil
}

// ResolveIdentityProvider decodes an identity-provider payload.
func ResolveIdentityProvider(raw []byte) (*IdentityProvider, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyPayload
	}
	var ip IdentityProvider
	if err := json.Unmarshal(raw, &ip); err != nil {
		return nil, err
	}
	return &ip, nil
}

// EmailLoginForm is transient password login input.
type EmailLoginForm struct {
	Email    string
	Password string
}

// EmailRegistrationForm is transient registration input.
type EmailRegistrationForm struct {
	Email    string
	Password string
}
