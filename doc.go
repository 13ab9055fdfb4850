// Package sessionguard implements the client-side session lifecycle for an
// application backed by a remote authentication provider: sign-in with
// lockout protection, sign-up with local password policy, proactive token
// refresh, activity tracking, and hard expiry with fail-closed sign-out.
//
// The package is designed for concurrent callers: Guard methods are safe to
// call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// sessionguard is the public surface. It exposes [Guard], [Builder],
// [Config], and value types (Session, Notice, MetricsSnapshot, etc.).
// Internal coordination (lockout policy, audit dispatch) lives under
// internal/ and is never exported. The remote provider is an opaque
// collaborator behind [AuthProvider]; the access credential it issues is
// forwarded, never inspected.
//
// # What this package must NOT do
//
//   - Expose storage clients or provider internals in its public API.
//   - Retry a failed refresh: refresh failure is terminal for the session
//     and forces sign-out (fail closed, no grace period).
//   - Extend session expiry from activity events; only a refresh resets
//     the expiry clock.
package sessionguard
