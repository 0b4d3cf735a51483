// Package internaldefs holds the metric names, help texts and latency bucket
// bounds shared by the Prometheus and OTel exporters, so both expose the same
// goauth_client_* series.
//
// # What this package must NOT do
//
//   - Import an exporter package.
//   - Perform I/O.
package internaldefs
