package action

import (
	"encoding/json"

	"github.com/MrEthical07/goAuthClient/model"
)

// Type identifies an action kind.
type Type string

const (
	TypeProcessing                 Type = "ACTION_PROCESSING"
	TypeLoginUserSuccess           Type = "LOGIN_USER_SUCCESS"
	TypeLoginUserError             Type = "LOGIN_USER_ERROR"
	TypeDidLogout                  Type = "LOGOUT_USER"
	TypeRegisterUserByEmailSuccess Type = "REGISTER_USER_BY_EMAIL_SUCCESS"
	TypeRegisterUserByEmailError   Type = "REGISTER_USER_BY_EMAIL_ERROR"
	TypeDidVerifyEmail             Type = "DID_VERIFY_EMAIL"
	TypeDidResendVerificationEmail Type = "DID_RESEND_VERIFICATION_EMAIL"
	TypeDidForgotPassword          Type = "DID_FORGOT_PASSWORD"
	TypeDidResetPassword           Type = "DID_RESET_PASSWORD"
	TypeDidCreateMagicLink         Type = "DID_CREATE_MAGICLINK"
	TypeLoadedUserData             Type = "LOADED_USER_DATA"
	TypeUpdateSettings             Type = "UPDATE_USER_SETTINGS"
	TypeAlert                      Type = "SHOW_NOTIFICATION"
)

// Action is a state-transition message.
type Action interface {
	Type() Type
}

// Dispatcher receives actions in order.
type Dispatcher interface {
	Dispatch(Action)
}

// DispatcherFunc adapts a function to [Dispatcher].
type DispatcherFunc func(Action)

// Dispatch calls f(a).
func (f DispatcherFunc) Dispatch(a Action) {
	f(a)
}

// Processing toggles the in-flight indicator.
type Processing struct {
	Processing bool `json:"processing"`
}

func (Processing) Type() Type { return TypeProcessing }

// LoginUserSuccess marks a verified session as active.
type LoginUserSuccess struct {
	Session model.Session `json:"authUser"`
}

func (LoginUserSuccess) Type() Type { return TypeLoginUserSuccess }

// LoginUserError records a failed login.
type LoginUserError struct {
	Message string `json:"message"`
}

func (LoginUserError) Type() Type { return TypeLoginUserError }

// DidLogout clears the session.
type DidLogout struct{}

func (DidLogout) Type() Type { return TypeDidLogout }

// RegisterUserByEmailSuccess carries the created identity provider.
type RegisterUserByEmailSuccess struct {
	IdentityProvider model.IdentityProvider `json:"identityProvider"`
}

func (RegisterUserByEmailSuccess) Type() Type { return TypeRegisterUserByEmailSuccess }

// RegisterUserByEmailError records a failed registration.
type RegisterUserByEmailError struct {
	Message string `json:"message"`
}

func (RegisterUserByEmailError) Type() Type { return TypeRegisterUserByEmailError }

// DidVerifyEmail reports the verification outcome.
type DidVerifyEmail struct {
	OK bool `json:"result"`
}

func (DidVerifyEmail) Type() Type { return TypeDidVerifyEmail }

// DidResendVerificationEmail reports the resend outcome.
type DidResendVerificationEmail struct {
	OK bool `json:"result"`
}

func (DidResendVerificationEmail) Type() Type { return TypeDidResendVerificationEmail }

// DidForgotPassword reports the reset-request outcome.
type DidForgotPassword struct {
	OK bool `json:"result"`
}

func (DidForgotPassword) Type() Type { return TypeDidForgotPassword }

// DidResetPassword reports the reset outcome.
type DidResetPassword struct {
	OK bool `json:"result"`
}

func (DidResetPassword) Type() Type { return TypeDidResetPassword }

// DidCreateMagicLink reports the magic-link outcome.
type DidCreateMagicLink struct {
	OK bool `json:"result"`
}

func (DidCreateMagicLink) Type() Type { return TypeDidCreateMagicLink }

// LoadedUserData replaces the displayed user profile.
type LoadedUserData struct {
	User model.User `json:"user"`
}

func (LoadedUserData) Type() Type { return TypeLoadedUserData }

// UpdateSettings replaces the user's settings with the server copy.
type UpdateSettings struct {
	Settings json.RawMessage `json:"data"`
}

func (UpdateSettings) Type() Type { return TypeUpdateSettings }

// AlertLevel is the severity of a user-visible notification.
type AlertLevel string

const (
	AlertError   AlertLevel = "error"
	AlertSuccess AlertLevel = "success"
)

// Alert is a user-visible notification.
type Alert struct {
	Level   AlertLevel `json:"type"`
	Message string     `json:"message"`
}

func (Alert) Type() Type { return TypeAlert }

// Envelope is the JSON form of an action.
type Envelope struct {
	Type    Type   `json:"type"`
	Payload Action `json:"payload,omitempty"`
}

// Marshal encodes a as {"type": ..., "payload": ...}.
func Marshal(a Action) ([]byte, error) {
	return json.Marshal(Envelope{Type: a.Type(), Payload: a})
}
