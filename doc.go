// Package goAuthClient implements the client side of a Feathers-style
// authentication service: session bootstrap, password/JWT/OAuth/magic-link
// login, registration and recovery, connection management and user data
// loading.
//
// Every flow is a sequential request/response operation. Its observable
// effects are the actions it dispatches (package action), reduced into a
// [State], and the navigation [Result] it returns. Flows never return Go
// errors: failures are dispatched as alerts and carried in Result.Err for
// inspection.
//
// # Architecture boundaries
//
// goAuthClient is the public surface. It exposes [Client], [Builder],
// [Config], metrics and error values. Flow orchestration and asynchronous
// action delivery live under internal/. The remote service, the session
// store and the action dispatcher are collaborators supplied through the
// Builder; the module ships an HTTP remote (package remote), Redis, memory and
// SQLite session stores (package session) and a reducer store (package store).
//
// # What this package must NOT do
//
//   - Retry remote calls. Cancellation and timeouts come from the caller's
//     context and the transport configuration.
//   - Mark a session active, or persist it, unless its identity provider is
//     verified.
//   - Keep configuration in package globals.
//
// # Concurrency
//
// Client methods are safe for concurrent use after [Builder.Build]. Flows do
// not coordinate; the state store applies actions one at a time.
package goAuthClient
