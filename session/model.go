package session

import (
	"time"

	"github.com/MrEthical07/goAuthClient/model"
)

// State is the persisted subset of an authenticated session.
type State struct {
	SchemaVersion uint8

	AccessToken string
	Strategy    string

	IdentityProviderID   string
	IdentityProviderType string
	UserID               string
	IsVerified           bool

	SavedAt int64
}

// FromSession captures the persisted subset of s.
func FromSession(s *model.Session, now time.Time) State {
	if s == nil {
		return State{SchemaVersion: CurrentSchemaVersion, SavedAt: now.Unix()}
	}
	return State{
		SchemaVersion:        CurrentSchemaVersion,
		AccessToken:          s.AccessToken,
		Strategy:             s.Authentication.Strategy,
		IdentityProviderID:   s.IdentityProvider.ID.String(),
		IdentityProviderType: string(s.IdentityProvider.Type),
		UserID:               s.IdentityProvider.UserID.String(),
		IsVerified:           s.IdentityProvider.IsVerified,
		SavedAt:              now.Unix(),
	}
}

// Session rebuilds the client session view from the persisted state.
func (s State) Session() *model.Session {
	return &model.Session{
		AccessToken:    s.AccessToken,
		Authentication: model.Authentication{Strategy: s.Strategy},
		IdentityProvider: model.IdentityProvider{
			ID:         model.ID(s.IdentityProviderID),
			Type:       model.ProviderType(s.IdentityProviderType),
			UserID:     model.ID(s.UserID),
			IsVerified: s.IsVerified,
		},
	}
}
