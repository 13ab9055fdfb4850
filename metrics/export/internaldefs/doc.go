// Package internaldefs holds the metric name definitions shared by the
// exporter implementations.
//
// Counter definitions live here so the Prometheus and OTel exporters emit
// identical metric names. Changing a definition changes every exporter at
// once.
//
// # What this package must NOT do
//
//   - Import sessionguard or any exporter package.
//   - Perform I/O.
package internaldefs
