// Package observe forwards dispatched actions to out-of-band observers.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, func, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full / block-if-full semantics.
//   - [Event]: sequenced, timestamped copy of one dispatched action.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which
// actions are dispatched; flows and the state store own that.
//
// # What this package must NOT do
//
//   - Filter or reorder events.
//   - Import goAuthClient or any sibling internal package.
//   - Block the dispatching flow when DropIfFull is set.
package observe
