// Package jwt wraps golang-jwt for the two places the client meets access
// tokens: inspecting a stored token before re-authenticating, and issuing or
// verifying tokens in the stub backend.
//
// # Architecture boundaries
//
// [Inspect] never verifies signatures; it only reads claims so the client can
// skip a network round-trip for a token that has already expired. Signature
// verification is [Manager.Parse], used by the backend side.
//
// # What this package must NOT do
//
//   - Import goAuthClient, session, or internal packages.
//   - Treat an inspected (unverified) token as authenticated.
package jwt
