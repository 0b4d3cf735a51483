// Package remote is the client's view of the Feathers-style authentication
// service: authentication endpoints plus named resources that support
// create/get/remove/patch.
//
// [Service] is the contract flows depend on. [HTTPClient] implements it over
// HTTP+JSON; tests substitute in-memory fakes.
//
// # What this package must NOT do
//
//   - Retry requests or impose timeouts beyond the configured http.Client.
//   - Decide session policy (verification, persistence); flows own that.
//   - Import goAuthClient or internal packages.
package remote
