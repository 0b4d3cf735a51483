// Package rate provides a Redis-backed fixed-window attempt counter. The stub
// backend uses it to throttle failed password logins per email.
//
// # Window semantics
//
// INCR plus EXPIRE on the first hit. Keys are {Prefix}:{lowercased key}.
//
// # What this package must NOT do
//
//   - Decide what is counted. Callers choose keys and when to Hit or Reset.
package rate
