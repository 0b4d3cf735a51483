package flows

import "github.com/MrEthical07/goAuthClient/model"

// authManagement actions understood by the service.
const (
	amVerifySignupLong   = "verifySignupLong"
	amResendVerifySignup = "resendVerifySignup"
	amSendResetPwd       = "sendResetPwd"
	amResetPwdLong       = "resetPwdLong"
)

type identityProviderCreate struct {
	Token    string             `json:"token"`
	Password string             `json:"password,omitempty"`
	Type     model.ProviderType `json:"type"`
	UserID   string             `json:"userId,omitempty"`
}

type authManagementRequest struct {
	Action string `json:"action"`
	Value  any    `json:"value"`
}

type identityRef struct {
	Token string             `json:"token"`
	Type  model.ProviderType `json:"type"`
}

type passwordReset struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type magicLinkCreate struct {
	Type   model.ProviderType `json:"type"`
	Email  string             `json:"email,omitempty"`
	Mobile string             `json:"mobile,omitempty"`
	UserID string             `json:"userId,omitempty"`
}
