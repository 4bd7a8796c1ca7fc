package internaldefs

import (
	"github.com/voutila/sealbox"
)

// CounterDef defines a public type used by sealbox APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   sealbox.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by sealbox APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   sealbox.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the sealbox codec.
var CounterDefs = []CounterDef{
	{ID: sealbox.MetricSealSuccess, Name: "sealbox_seal_success_total", Help: "Successful seal operations."},
	{ID: sealbox.MetricSealFailure, Name: "sealbox_seal_failure_total", Help: "Failed seal operations."},
	{ID: sealbox.MetricOpenSuccess, Name: "sealbox_open_success_total", Help: "Successful open operations."},
	{ID: sealbox.MetricOpenInvalidMessage, Name: "sealbox_open_invalid_message_total", Help: "Open rejections due to malformed input."},
	{ID: sealbox.MetricOpenInvalidSignature, Name: "sealbox_open_invalid_signature_total", Help: "Open rejections due to failed authentication."},
	{ID: sealbox.MetricOpenFailure, Name: "sealbox_open_failure_total", Help: "Open failures not attributable to the input."},
	{ID: sealbox.MetricLegacyAccepted, Name: "sealbox_legacy_accepted_total", Help: "Legacy first-generation envelopes accepted."},
	{ID: sealbox.MetricSessionCreated, Name: "sealbox_session_created_total", Help: "Created sessions."},
	{ID: sealbox.MetricSessionLoaded, Name: "sealbox_session_loaded_total", Help: "Loaded sessions."},
	{ID: sealbox.MetricSessionSaved, Name: "sealbox_session_saved_total", Help: "Saved session updates."},
	{ID: sealbox.MetricSessionRejected, Name: "sealbox_session_rejected_total", Help: "Session loads rejected as missing or invalid."},
	{ID: sealbox.MetricSessionDestroyed, Name: "sealbox_session_destroyed_total", Help: "Destroyed sessions."},
	{ID: sealbox.MetricStoreUnavailable, Name: "sealbox_store_unavailable_total", Help: "Session store availability failures."},
}

// HistogramDefs is an exported constant or variable used by the sealbox codec.
var HistogramDefs = []HistogramDef{
	{ID: sealbox.MetricOpenLatency, Name: "sealbox_open_latency_seconds", Help: "Open latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the sealbox codec.
var HistogramBounds = []string{
	"0.000025",
	"0.00005",
	"0.0001",
	"0.00025",
	"0.0005",
	"0.001",
	"0.005",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the sealbox codec.
var HistogramBoundSuffix = []string{
	"0_000025",
	"0_00005",
	"0_0001",
	"0_00025",
	"0_0005",
	"0_001",
	"0_005",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
