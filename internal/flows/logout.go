package flows

import (
	"context"

	"github.com/MrEthical07/goAuthClient/action"
)

const opLogout = "logout"

// RunLogoutUser ends the remote session and clears persisted state. DidLogout
// is dispatched whether or not the remote call succeeds.
func RunLogoutUser(ctx context.Context, deps Deps) Result {
	deps = deps.withDefaults()
	if !deps.ready() {
		return notReady(opLogout)
	}

	return deps.process(func() (Result, func()) {
		if err := deps.Remote.Logout(ctx); err != nil {
			deps.Debug("remote logout failed", "error", err)
		}
		deps.clearPersisted(ctx)
		deps.dispatch(action.DidLogout{})
		deps.MetricInc(deps.Metrics.Logout)
		return succeeded(""), nil
	})
}
