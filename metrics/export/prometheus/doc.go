// Package prometheus renders goAuthClient metrics in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] reads [goAuthClient.Client.MetricsSnapshot] on every
// scrape. Counters are named goauth_client_*_total; the single histogram is
// goauth_client_remote_latency_seconds and is omitted while latency
// histograms are disabled.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate client state.
package prometheus
