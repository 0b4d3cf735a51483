package flows

import (
	"errors"
	"strings"
)

// Kind classifies flow failures.
type Kind uint8

const (
	// KindValidation covers malformed input and disabled channels. It is
	// always raised before any network call.
	KindValidation Kind = iota + 1
	// KindRemote covers transport and service failures.
	KindRemote
	// KindVerification is raised when the service authenticates an
	// unverified identity.
	KindVerification
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRemote:
		return "remote"
	case KindVerification:
		return "verification"
	default:
		return "unknown"
	}
}

var (
	ErrNotConfigured          = errors.New("flows: remote service not configured")
	ErrInvalidEmail           = errors.New("invalid email address")
	ErrInvalidPhone           = errors.New("invalid phone number")
	ErrInvalidEmailOrPhone    = errors.New("invalid email or phone number")
	ErrEmailMagicLinkDisabled = errors.New("email magic link disabled")
	ErrSMSMagicLinkDisabled   = errors.New("sms magic link disabled")
	ErrUnsupportedProvider    = errors.New("unsupported oauth provider")
	ErrUnverifiedIdentity     = errors.New("identity not verified")
)

// Error is a classified flow failure. Message is the user-visible text that
// was dispatched as an alert.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Message != "":
		b.WriteString(e.Message)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		b.WriteString(e.Kind.String())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func remoteError(op string, err error) *Error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Error{Kind: KindRemote, Op: op, Message: msg, Err: err}
}
