// Package session persists the client's authenticated state between runs, the
// way a browser keeps auth state in local storage.
//
// # Binary encoding
//
// States are stored as a compact binary record (schema versions v1–v2) with
// forward migration on read. The encoder is append-only: new versions add
// fields but never reinterpret old ones.
//
// # Architecture boundaries
//
// This package owns the [Store] contract, the in-memory and Redis
// implementations, and the [State] record. SQLite persistence lives in the
// sqlite subpackage. It does NOT talk to the remote service or decide whether
// a stored token is still usable; that belongs to the client bootstrapper.
//
// # What this package must NOT do
//
//   - Import goAuthClient or internal packages (no upward imports).
//   - Store passwords or other form input.
package session
