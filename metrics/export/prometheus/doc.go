// Package prometheus renders session guard metrics in Prometheus text
// exposition format.
//
// [NewExporter] accepts a [*sessionguard.Guard] and exposes an
// [net/http.Handler]. Counter names are prefixed sessionguard_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the
//     Handler.
//   - Mutate guard state.
package prometheus
