package sealbox

import (
	"errors"
	"fmt"
	"time"
)

// Envelope version tags. Protocol constants: the tag is the first byte of every
// envelope and is validated before any further parsing. Adding a generation
// means a new tag plus one branch in each dispatch switch, nothing else.
const (
	versionV1 byte = 0x01
	versionV2 byte = 0x02
)

// Codec defines a public type used by sealbox APIs.
//
// Codec instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// A Codec runs the full token pipeline: serialize, optionally compress, pad,
// encrypt under the selected envelope generation, optionally pad again, and
// text-encode. Open is the exact reverse, with the generation resolved from the
// version tag first. Every internal handle is built eagerly in [New], so a Codec
// is safe for concurrent use without locking.
type Codec struct {
	mode       Mode
	serializer Serializer
	compressor compressor
	innerPad   int
	outerPad   int
	v1         *schemeV1
	v2         *schemeV2
	metrics    *Metrics
	report     SecurityReport
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
//	Security: construction copies the secret before slicing it; the caller's
//	buffer is never retained or mutated.
func New(cfg Config) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	serializer, err := newSerializer(cfg.Serializer)
	if err != nil {
		return nil, err
	}
	comp, err := newCompressor(cfg.Compression)
	if err != nil {
		return nil, err
	}

	c := &Codec{
		mode:       cfg.Mode,
		serializer: serializer,
		compressor: comp,
		innerPad:   cfg.innerPadSize(),
		outerPad:   cfg.outerPadSize(),
		metrics:    NewMetrics(cfg.Metrics),
		report:     cfg.securityReport(),
	}

	// A pinned mode only instantiates its own scheme; guess mode needs both so
	// either generation can be opened during a migration window.
	if cfg.Mode != ModeV2 {
		v1, err := newSchemeV1(cfg.Secret, cfg.Purpose)
		if err != nil {
			return nil, err
		}
		c.v1 = v1
	}
	if cfg.Mode != ModeV1 {
		aead, err := newAEADSealer(cfg.AEAD)
		if err != nil {
			return nil, err
		}
		v2, err := newSchemeV2(cfg.Secret, cfg.Purpose, aead)
		if err != nil {
			return nil, err
		}
		c.v2 = v2
	}

	return c, nil
}

// Seal describes the seal operation and its observable behavior.
//
// Seal may return an error when input validation, dependency calls, or security checks fail.
// Seal does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Seal always mints the current envelope generation unless the codec is pinned
// to ModeV1. The returned token is opaque text safe for a cookie value.
func (c *Codec) Seal(v any) (string, error) {
	if c == nil {
		return "", ErrCodecNotReady
	}

	token, err := c.seal(v)
	if err != nil {
		c.metrics.Inc(MetricSealFailure)
		return "", err
	}

	c.metrics.Inc(MetricSealSuccess)
	return token, nil
}

func (c *Codec) seal(v any) (string, error) {
	data, err := c.serializer.Marshal(v)
	if err != nil {
		return "", err
	}

	if c.compressor != nil {
		if data, err = c.compressor.compress(data); err != nil {
			return "", err
		}
	}

	padded, err := padBlock(data, c.innerPad)
	if err != nil {
		return "", err
	}

	version := versionV2
	if c.mode == ModeV1 {
		version = versionV1
	}

	var envelope []byte
	switch version {
	case versionV1:
		envelope, err = c.v1.encrypt(padded)
	default:
		envelope, err = c.v2.encrypt(padded)
	}
	if err != nil {
		return "", err
	}

	if c.outerPad != 0 {
		if envelope, err = padBlock(envelope, c.outerPad); err != nil {
			return "", err
		}
	}

	return encodeText(version, envelope), nil
}

// Open describes the open operation and its observable behavior.
//
// Open may return an error when input validation, dependency calls, or security checks fail.
// Open does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Open never yields plaintext from an envelope that failed authentication.
// Failures are [ErrInvalidMessage] for malformed input and [ErrInvalidSignature]
// for tampering, a wrong secret, or a purpose mismatch; callers should treat the
// two identically as "no valid session".
func (c *Codec) Open(token string, dst any) error {
	if c == nil {
		return ErrCodecNotReady
	}

	var start time.Time
	if c.metrics.LatencyEnabled() {
		start = time.Now()
	}

	version, err := c.open(token, dst)

	if c.metrics.LatencyEnabled() {
		c.metrics.Observe(MetricOpenLatency, time.Since(start))
	}

	switch {
	case err == nil:
		c.metrics.Inc(MetricOpenSuccess)
		if version == versionV1 {
			c.metrics.Inc(MetricLegacyAccepted)
		}
	case errors.Is(err, ErrInvalidSignature):
		c.metrics.Inc(MetricOpenInvalidSignature)
	case errors.Is(err, ErrInvalidMessage):
		c.metrics.Inc(MetricOpenInvalidMessage)
	default:
		c.metrics.Inc(MetricOpenFailure)
	}

	return err
}

func (c *Codec) open(token string, dst any) (byte, error) {
	version, err := c.resolveVersion(token)
	if err != nil {
		return 0, err
	}

	raw, err := decodeText(version, token)
	if err != nil {
		return version, err
	}

	if c.outerPad != 0 {
		if raw, err = unpadBlock(raw); err != nil {
			return version, err
		}
	}

	var padded []byte
	switch version {
	case versionV1:
		padded, err = c.v1.decrypt(raw)
	default:
		padded, err = c.v2.decrypt(raw)
	}
	if err != nil {
		return version, err
	}

	data, err := unpadBlock(padded)
	if err != nil {
		return version, err
	}

	if c.compressor != nil {
		if data, err = c.compressor.decompress(data); err != nil {
			return version, err
		}
	}

	// Deserialization errors propagate as-is: the payload authenticated, so a
	// failure here is a destination type mismatch, not a forged token.
	return version, c.serializer.Unmarshal(data, dst)
}

// resolveVersion picks the envelope generation for a read. Pinned modes never
// inspect the token; guess mode sniffs the tag from the text prefix.
func (c *Codec) resolveVersion(token string) (byte, error) {
	switch c.mode {
	case ModeV1:
		return versionV1, nil
	case ModeV2:
		return versionV2, nil
	}

	version, err := sniffVersion(token)
	if err != nil {
		return 0, err
	}

	switch version {
	case versionV1, versionV2:
		return version, nil
	default:
		return 0, fmt.Errorf("%w: unknown version tag %#x", ErrInvalidMessage, version)
	}
}

// Metrics describes the metrics operation and its observable behavior.
//
// Metrics may return an error when input validation, dependency calls, or security checks fail.
// Metrics does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Codec) Metrics() *Metrics {
	if c == nil {
		return nil
	}
	return c.metrics
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Codec) MetricsSnapshot() MetricsSnapshot {
	if c == nil {
		return (*Metrics)(nil).Snapshot()
	}
	return c.metrics.Snapshot()
}
