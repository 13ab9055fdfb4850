// Package otel binds session guard counters to OpenTelemetry metric
// instruments.
//
// [NewExporter] registers an Int64ObservableCounter per guard metric and a
// single callback that reads the guard's snapshot on each collection
// cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider; callers supply the Meter.
//   - Mutate guard state.
package otel
