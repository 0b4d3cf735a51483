// Package flows contains pure-function orchestrators for every Client
// operation.
//
// Each flow function (RunLoginUserByPassword, RunLoginAuto, RunCreateMagicLink,
// etc.) accepts a [Deps] value and reports its effects only through dispatched
// actions and the returned [Result]. Failures become alert actions; they are
// never returned as Go errors.
//
// # Processing bracket
//
// Flows that call the remote service dispatch Processing(true) before the call
// and a deferred Processing(false) after it. Follow-up work (user reload,
// chained JWT login) runs after Processing(false).
//
// # Architecture boundaries
//
// Flow functions coordinate the remote service, session store, dispatcher and
// metrics. They do NOT own any of these resources; ownership stays with the
// Client.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goAuthClient (to avoid import cycles).
//   - Perform I/O directly; all I/O is mediated through dependency interfaces.
package flows
