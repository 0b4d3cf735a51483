// Package stubserver is an in-memory stand-in for the remote authentication
// service. It speaks the same HTTP+JSON surface the client's remote package
// calls (authentication, identity-provider, authManagement, magiclink, user,
// user-settings and oauth) so flows can run end to end in tests and from
// cmd/goauth-stub.
//
// Notifications the real service would deliver by email or SMS (signup
// verification, password reset, magic links) are captured in an outbox
// instead; tests read their tokens with [Server.LastMessage].
//
// With Config.Redis set, failed password logins are throttled per email
// through internal/rate and answered with 429 once the budget is spent.
//
// # What this package must NOT do
//
//   - Persist users or tokens. Every Server starts empty.
//   - Be used as a production backend: OAuth skips the provider round-trip.
package stubserver
