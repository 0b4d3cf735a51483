// Package otel publishes goAuthClient metrics through OpenTelemetry
// observable instruments.
//
// [NewOTelExporter] registers one Int64ObservableCounter per client counter
// and one Int64ObservableGauge per remote latency bucket. A single callback
// reads [goAuthClient.Client.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate client state.
package otel
