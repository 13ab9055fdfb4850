// Package audit defines the event model and sinks for security-relevant
// session lifecycle operations.
//
// # Components
//
//   - [Event] — structured record with timestamp, type, email, session ID,
//     client IP, and metadata.
//   - [Sink] — interface for event consumers (channel, JSON writer, no-op).
//
// # Architecture boundaries
//
// This package owns the event shape and sink delivery. It does NOT decide
// which events to emit — that responsibility belongs to the Guard.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import sessionguard or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
