// Package storage persists the small security-relevant values that let a
// session survive a process restart: the session expiry timestamp, the
// last-activity timestamp, and a minimal user-preference echo.
//
// # Components
//
//   - [Store] — the adapter contract (store, retrieve, remove, clear).
//   - [MemoryStore] — process-local map, the default backend.
//   - [RedisStore] — Redis-backed persistence with TTL and a key index.
//   - [SignedStore] — HMAC-SHA256 wrapper that rejects tampered values.
//
// # Architecture boundaries
//
// The in-memory session held by the Guard is authoritative while the
// process is alive; this package only covers restarts. Writes are
// best-effort from the caller's perspective — the Guard swallows and logs
// write failures rather than propagating them.
//
// Values shared between concurrent writers (multiple tabs, multiple
// processes) follow last-write-wins. No cross-writer coordination is
// attempted; this is accepted behavior, not an invariant.
package storage
