package goAuthClient

import (
	"errors"

	"github.com/MrEthical07/goAuthClient/internal/flows"
)

var (
	// ErrBuilderUsed is returned when Build is called twice on one Builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrRemoteRequired is returned by Build when neither a remote service
	// nor Transport.BaseURL is configured.
	ErrRemoteRequired = errors.New("remote service or Transport BaseURL required")

	// ErrNotConfigured is carried by results of flows run on a zero Client.
	ErrNotConfigured = flows.ErrNotConfigured
	// ErrInvalidEmail is raised before any network call for malformed emails.
	ErrInvalidEmail = flows.ErrInvalidEmail
	// ErrInvalidPhone is raised before any network call for malformed phone numbers.
	ErrInvalidPhone = flows.ErrInvalidPhone
	// ErrInvalidEmailOrPhone is raised when magic-link input is neither.
	ErrInvalidEmailOrPhone = flows.ErrInvalidEmailOrPhone
	// ErrEmailMagicLinkDisabled is raised for email input when email magic links are off.
	ErrEmailMagicLinkDisabled = flows.ErrEmailMagicLinkDisabled
	// ErrSMSMagicLinkDisabled is raised for phone input when SMS magic links are off.
	ErrSMSMagicLinkDisabled = flows.ErrSMSMagicLinkDisabled
	// ErrUnsupportedProvider is raised for OAuth providers outside Config.OAuth.Providers.
	ErrUnsupportedProvider = flows.ErrUnsupportedProvider
	// ErrUnverifiedIdentity is raised when the service authenticates an unverified identity.
	ErrUnverifiedIdentity = flows.ErrUnverifiedIdentity
)

// ErrorKind classifies flow failures.
type ErrorKind = flows.Kind

const (
	KindValidation   = flows.KindValidation
	KindRemote       = flows.KindRemote
	KindVerification = flows.KindVerification
)

// FlowError is the classified failure carried by [Result].Err.
type FlowError = flows.Error

// KindOf returns the kind of the first [FlowError] in err's chain, or zero.
func KindOf(err error) ErrorKind {
	return flows.KindOf(err)
}
