// Package lockout implements the failed sign-in lockout policy.
//
// # Components
//
//   - [Tracker] — consecutive-failure counter with a rolling lockout window.
//
// # Architecture boundaries
//
// The tracker is a pure in-memory policy object. It does not persist state,
// schedule timers, or talk to the network: window decay happens lazily on
// the next check. Time comes from an injected clock so callers can test the
// window deterministically.
//
// # What this package must NOT do
//
//   - Import the root package or any sibling internal package.
//   - Perform I/O of any kind.
package lockout
