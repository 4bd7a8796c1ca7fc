// Package prometheus provides Prometheus collectors for sealbox metrics.
//
// [NewPrometheusExporter] accepts a [session.Manager] and exposes an [http.Handler]
// that renders all sealbox counters and histograms in Prometheus text exposition
// format. Counter names are prefixed sealbox_*_total; the single histogram is
// sealbox_open_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate codec or manager state.
package prometheus
