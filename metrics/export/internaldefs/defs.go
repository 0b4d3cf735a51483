package internaldefs

import (
	goAuthClient "github.com/MrEthical07/goAuthClient"
)

// CounterDef names one client counter for exporters.
type CounterDef struct {
	ID   goAuthClient.MetricID
	Name string
	Help string
}

// HistogramDef names one client histogram for exporters.
type HistogramDef struct {
	ID   goAuthClient.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: goAuthClient.MetricLoginSuccess, Name: "goauth_client_login_success_total", Help: "Sessions established by password, jwt or verification login."},
	{ID: goAuthClient.MetricLoginFailure, Name: "goauth_client_login_failure_total", Help: "Login attempts rejected by the service."},
	{ID: goAuthClient.MetricLoginUnverified, Name: "goauth_client_login_unverified_total", Help: "Logins refused locally because the identity is unverified."},
	{ID: goAuthClient.MetricAutoLoginSuccess, Name: "goauth_client_auto_login_success_total", Help: "Persisted sessions restored by silent re-authentication."},
	{ID: goAuthClient.MetricAutoLoginFailure, Name: "goauth_client_auto_login_failure_total", Help: "Silent re-authentication failures."},
	{ID: goAuthClient.MetricAutoLoginSkipped, Name: "goauth_client_auto_login_skipped_total", Help: "Bootstraps with no usable stored token."},
	{ID: goAuthClient.MetricOAuthRedirect, Name: "goauth_client_oauth_redirect_total", Help: "OAuth provider redirects issued."},
	{ID: goAuthClient.MetricLogout, Name: "goauth_client_logout_total", Help: "Logouts."},
	{ID: goAuthClient.MetricRegisterSuccess, Name: "goauth_client_register_success_total", Help: "Email registrations accepted."},
	{ID: goAuthClient.MetricRegisterFailure, Name: "goauth_client_register_failure_total", Help: "Email registrations rejected."},
	{ID: goAuthClient.MetricVerifySuccess, Name: "goauth_client_verify_success_total", Help: "Email verification tokens accepted."},
	{ID: goAuthClient.MetricVerifyFailure, Name: "goauth_client_verify_failure_total", Help: "Email verification tokens rejected."},
	{ID: goAuthClient.MetricRecoveryRequest, Name: "goauth_client_recovery_request_total", Help: "Resend, forgot and reset password requests."},
	{ID: goAuthClient.MetricRecoveryFailure, Name: "goauth_client_recovery_failure_total", Help: "Recovery requests rejected by the service."},
	{ID: goAuthClient.MetricMagicLinkSuccess, Name: "goauth_client_magic_link_success_total", Help: "Magic links requested."},
	{ID: goAuthClient.MetricMagicLinkFailure, Name: "goauth_client_magic_link_failure_total", Help: "Magic link requests rejected by the service."},
	{ID: goAuthClient.MetricValidationFailure, Name: "goauth_client_validation_failure_total", Help: "Flows stopped by local input validation."},
	{ID: goAuthClient.MetricConnectionAdded, Name: "goauth_client_connection_added_total", Help: "Identity providers linked."},
	{ID: goAuthClient.MetricConnectionRemoved, Name: "goauth_client_connection_removed_total", Help: "Identity providers unlinked."},
	{ID: goAuthClient.MetricConnectionFailure, Name: "goauth_client_connection_failure_total", Help: "Connection changes rejected by the service."},
	{ID: goAuthClient.MetricUserLoadSuccess, Name: "goauth_client_user_load_success_total", Help: "User profile loads."},
	{ID: goAuthClient.MetricUserLoadFailure, Name: "goauth_client_user_load_failure_total", Help: "Failed user profile loads."},
	{ID: goAuthClient.MetricSettingsUpdated, Name: "goauth_client_settings_updated_total", Help: "User settings patches applied."},
	{ID: goAuthClient.MetricSettingsFailure, Name: "goauth_client_settings_failure_total", Help: "User settings patches rejected."},
	{ID: goAuthClient.MetricRemoteCallFailure, Name: "goauth_client_remote_call_failure_total", Help: "HTTP round-trips that returned an error."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goAuthClient.MetricRemoteLatency, Name: "goauth_client_remote_latency_seconds", Help: "HTTP round-trip latency of the built-in transport."},
}

// ActionsDroppedName is the counter of actions the asynchronous observer discarded.
const (
	ActionsDroppedName = "goauth_client_actions_dropped_total"
	ActionsDroppedHelp = "Dispatched actions dropped by the observer because its buffer was full."
)

// BucketCount is the number of latency buckets, +Inf included.
const BucketCount = 8

// HistogramBounds are the upper bounds of the latency buckets in seconds.
var HistogramBounds = [BucketCount]string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix renders [HistogramBounds] as metric name suffixes.
var HistogramBoundSuffix = [BucketCount]string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// CumulativeBuckets converts per-bucket counts into cumulative counts. Short
// input is zero-padded; extra buckets are ignored.
func CumulativeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := 0; i < BucketCount; i++ {
		if i < len(raw) {
			running += raw[i]
		}
		out[i] = running
	}
	return out
}
