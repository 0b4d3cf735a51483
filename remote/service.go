package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Resource names used by the client flows.
const (
	ResourceUser             = "user"
	ResourceIdentityProvider = "identity-provider"
	ResourceAuthManagement   = "authManagement"
	ResourceMagicLink        = "magiclink"
	ResourceUserSettings     = "user-settings"
)

// Strategy names accepted by Authenticate.
const (
	StrategyLocal = "local"
	StrategyJWT   = "jwt"
)

// ErrNoAccessToken is returned by ReAuthenticate when no token is set.
var ErrNoAccessToken = errors.New("no access token")

// Credentials is an authenticate request body.
type Credentials struct {
	Strategy    string `json:"strategy"`
	Email       string `json:"email,omitempty"`
	Password    string `json:"password,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
}

// Service is the remote authentication service.
type Service interface {
	// Authenticate exchanges credentials for an authentication result and
	// keeps the returned access token for subsequent calls.
	Authenticate(ctx context.Context, creds Credentials) (json.RawMessage, error)
	// ReAuthenticate re-runs jwt authentication with the current token.
	ReAuthenticate(ctx context.Context) (json.RawMessage, error)
	// Logout ends the remote session and forgets the access token.
	Logout(ctx context.Context) error
	SetAccessToken(ctx context.Context, token string) error
	AccessToken() string
	Resource(name string) Resource
}

// Resource is a named remote collection.
type Resource interface {
	Create(ctx context.Context, data any) (json.RawMessage, error)
	Get(ctx context.Context, id string) (json.RawMessage, error)
	Remove(ctx context.Context, id string) (json.RawMessage, error)
	Patch(ctx context.Context, id string, data any) (json.RawMessage, error)
}

// Error is a service error response.
type Error struct {
	Name      string          `json:"name"`
	Message   string          `json:"message"`
	Code      int             `json:"code"`
	ClassName string          `json:"className"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("remote error %d", e.Code)
}

// IsNotAuthenticated reports whether err is a 401 service error.
func IsNotAuthenticated(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Code == 401
}
