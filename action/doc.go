// Package action defines the state-transition messages flows dispatch.
//
// Every action is an immutable value with a stable [Type] string. Actions are
// the only way flows communicate results to the state store; the store
// applies them in dispatch order and keeps them in an append-only history.
//
// # What this package must NOT do
//
//   - Hold behavior beyond construction and encoding.
//   - Import goAuthClient, store, or internal packages.
package action
