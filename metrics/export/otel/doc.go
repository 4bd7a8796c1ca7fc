// Package otel provides OpenTelemetry metric exporter bindings for sealbox counters
// and histograms.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each sealbox
// metric and Int64ObservableGauge per histogram bucket. A single callback reads
// [session.Manager.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate codec or manager state.
package otel
