package flows

import (
	"context"
	"strings"

	"github.com/MrEthical07/goAuthClient/action"
	"github.com/MrEthical07/goAuthClient/messages"
	"github.com/MrEthical07/goAuthClient/model"
	"github.com/MrEthical07/goAuthClient/remote"
)

const (
	opLoadUserData       = "load_user_data"
	opUpdateUserSettings = "update_user_settings"
)

// RunLoadUserData fetches the full user record and dispatches it. It does not
// toggle processing.
func RunLoadUserData(ctx context.Context, userID string, deps Deps) Result {
	deps = deps.withDefaults()
	if !deps.ready() {
		return notReady(opLoadUserData)
	}
	return deps.loadUser(ctx, userID)
}

func (d Deps) loadUser(ctx context.Context, userID string) Result {
	raw, err := d.Remote.Resource(remote.ResourceUser).Get(ctx, strings.TrimSpace(userID))
	if err == nil {
		var user *model.User
		if user, err = model.ResolveUser(raw); err == nil {
			d.dispatch(action.LoadedUserData{User: *user})
			d.MetricInc(d.Metrics.UserLoadSuccess)
			return succeeded("")
		}
	}

	d.Debug("load user data failed", "user_id", userID, "error", err)
	d.MetricInc(d.Metrics.UserLoadFailure)
	msg := d.Text(messages.FailedToLoadUserData)
	d.alertError(msg)
	return failed("", &Error{Kind: KindRemote, Op: opLoadUserData, Message: msg, Err: err})
}

// RunUpdateUserSettings patches the settings record id and dispatches the
// server copy.
func RunUpdateUserSettings(ctx context.Context, id string, data any, deps Deps) Result {
	deps = deps.withDefaults()
	if !deps.ready() {
		return notReady(opUpdateUserSettings)
	}

	raw, err := deps.Remote.Resource(remote.ResourceUserSettings).Patch(ctx, strings.TrimSpace(id), data)
	if err != nil {
		deps.Debug("update user settings failed", "settings_id", id, "error", err)
		deps.MetricInc(deps.Metrics.SettingsFailure)
		msg := deps.Text(messages.FailedToUpdateSettings)
		deps.alertError(msg)
		return failed("", &Error{Kind: KindRemote, Op: opUpdateUserSettings, Message: msg, Err: err})
	}

	deps.dispatch(action.UpdateSettings{Settings: raw})
	deps.MetricInc(deps.Metrics.SettingsUpdated)
	return succeeded("")
}
