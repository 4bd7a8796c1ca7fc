package sealbox

// SecurityReport defines a public type used by sealbox APIs.
//
// SecurityReport instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// A SecurityReport carries the posture facts captured when the codec was
// built. It contains no secret material, only shape facts safe to log at
// startup or expose on an ops endpoint.
type SecurityReport struct {
	Mode Mode

	// AcceptsLegacy is true when Open admits legacy-generation envelopes
	// (guess mode or pinned ModeV1).
	AcceptsLegacy bool
	// MintsLegacy is true when Seal produces legacy-generation envelopes
	// (pinned ModeV1 only).
	MintsLegacy bool

	AEAD        AEADKind
	Serializer  SerializerKind
	Compression CompressionKind

	// SecretBytes is the length of the configured secret, not its content.
	SecretBytes  int
	PurposeBound bool

	// InnerPadBlock and OuterPadBlock are the effective block sizes; 0 means
	// the stage is disabled or absent.
	InnerPadBlock int
	OuterPadBlock int

	MetricsActive   bool
	LatencyTracking bool
}

func (c *Config) securityReport() SecurityReport {
	return SecurityReport{
		Mode:            c.Mode,
		AcceptsLegacy:   c.Mode != ModeV2,
		MintsLegacy:     c.Mode == ModeV1,
		AEAD:            c.AEAD,
		Serializer:      c.Serializer,
		Compression:     c.Compression,
		SecretBytes:     len(c.Secret),
		PurposeBound:    c.Purpose != "",
		InnerPadBlock:   c.innerPadSize(),
		OuterPadBlock:   c.outerPadSize(),
		MetricsActive:   c.Metrics.Enabled,
		LatencyTracking: c.Metrics.Enabled && c.Metrics.EnableLatencyHistograms,
	}
}

// SecurityReport describes the securityreport operation and its observable behavior.
//
// SecurityReport may return an error when input validation, dependency calls, or security checks fail.
// SecurityReport does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Codec) SecurityReport() SecurityReport {
	if c == nil {
		return SecurityReport{}
	}
	return c.report
}
