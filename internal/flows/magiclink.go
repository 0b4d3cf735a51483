package flows

import (
	"context"
	"strings"

	"github.com/MrEthical07/goAuthClient/action"
	"github.com/MrEthical07/goAuthClient/internal/validate"
	"github.com/MrEthical07/goAuthClient/messages"
	"github.com/MrEthical07/goAuthClient/model"
	"github.com/MrEthical07/goAuthClient/remote"
)

const opMagicLink = "magic_link"

// Channel is a magic-link delivery channel.
type Channel uint8

const (
	// ChannelAuto picks the channel from the input shape.
	ChannelAuto Channel = iota
	ChannelEmail
	ChannelSMS
)

func (c Channel) String() string {
	switch c {
	case ChannelEmail:
		return "email"
	case ChannelSMS:
		return "sms"
	default:
		return "auto"
	}
}

// MagicLinkTarget is a resolved delivery target.
type MagicLinkTarget struct {
	Channel Channel
	Value   string
}

func (t MagicLinkTarget) payload(userID string) magicLinkCreate {
	if t.Channel == ChannelSMS {
		return magicLinkCreate{Type: model.ProviderSMS, Mobile: t.Value, UserID: userID}
	}
	return magicLinkCreate{Type: model.ProviderEmail, Email: t.Value, UserID: userID}
}

// ResolveMagicLinkTarget picks and validates the delivery channel for input.
// On failure it returns the alert key and the sentinel to report.
//
// With ChannelAuto, phone-shaped input selects SMS and email-shaped input
// selects email. A disabled channel is reported with the text asking for the
// other shape.
func ResolveMagicLinkTarget(input string, channel Channel, policy MagicLinkPolicy) (MagicLinkTarget, messages.Key, error) {
	value := strings.TrimSpace(input)

	switch channel {
	case ChannelEmail:
		if !validate.Email(value) {
			return MagicLinkTarget{}, messages.InvalidEmail, ErrInvalidEmail
		}
		if !policy.EmailEnabled {
			return MagicLinkTarget{}, messages.InvalidPhone, ErrEmailMagicLinkDisabled
		}
		return MagicLinkTarget{Channel: ChannelEmail, Value: value}, "", nil
	case ChannelSMS:
		if !validate.Phone(value) {
			return MagicLinkTarget{}, messages.InvalidPhone, ErrInvalidPhone
		}
		if !policy.SMSEnabled {
			return MagicLinkTarget{}, messages.InvalidEmail, ErrSMSMagicLinkDisabled
		}
		return MagicLinkTarget{Channel: ChannelSMS, Value: value}, "", nil
	}

	switch {
	case validate.Phone(value):
		if !policy.SMSEnabled {
			return MagicLinkTarget{}, messages.InvalidEmail, ErrSMSMagicLinkDisabled
		}
		return MagicLinkTarget{Channel: ChannelSMS, Value: value}, "", nil
	case validate.Email(value):
		if !policy.EmailEnabled {
			return MagicLinkTarget{}, messages.InvalidPhone, ErrEmailMagicLinkDisabled
		}
		return MagicLinkTarget{Channel: ChannelEmail, Value: value}, "", nil
	default:
		return MagicLinkTarget{}, messages.InvalidEmailOrPhone, ErrInvalidEmailOrPhone
	}
}

// RunCreateMagicLink requests a login link for an email address or phone
// number. Validation runs before processing is toggled.
func RunCreateMagicLink(ctx context.Context, input string, channel Channel, deps Deps) Result {
	deps = deps.withDefaults()
	if !deps.ready() {
		return notReady(opMagicLink)
	}
	target, key, err := ResolveMagicLinkTarget(input, channel, deps.MagicLink)
	if err != nil {
		return deps.validationFailed(opMagicLink, key, err)
	}

	return deps.process(func() (Result, func()) {
		if _, err := deps.Remote.Resource(remote.ResourceMagicLink).Create(ctx, target.payload("")); err != nil {
			deps.MetricInc(deps.Metrics.MagicLinkFailure)
			deps.dispatch(action.DidCreateMagicLink{OK: false})
			return deps.remoteFailed(opMagicLink, "", err), nil
		}
		deps.dispatch(action.DidCreateMagicLink{OK: true})
		deps.alertSuccess(deps.Text(messages.MagicLinkSent))
		deps.MetricInc(deps.Metrics.MagicLinkSuccess)
		return succeeded(""), nil
	})
}
