// Package model holds the client-side view of remote authentication records:
// the authenticated [Session], the [IdentityProvider] credentials linked to an
// account, and the [User] profile.
//
// Resolve functions normalize raw service payloads into these types. They
// tolerate the key and ID shapes the remote service is known to emit (numeric
// or string identifiers, `identity-provider` or `identityProvider` keys).
//
// # What this package must NOT do
//
//   - Perform I/O or hold references to transports or stores.
//   - Import goAuthClient or any internal package.
package model
