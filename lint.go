package sealbox

import (
	"fmt"
	"strings"
)

// LintSeverity defines a public type used by sealbox APIs.
//
// LintSeverity instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LintSeverity int

const (
	// LintLow marks advisory findings. Deployments commonly run with these.
	LintLow LintSeverity = iota
	// LintMedium marks findings that weaken the token posture measurably.
	LintMedium
	// LintHigh marks findings no new deployment should ship with.
	LintHigh
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s LintSeverity) String() string {
	switch s {
	case LintLow:
		return "LOW"
	case LintMedium:
		return "MEDIUM"
	case LintHigh:
		return "HIGH"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// LintWarning defines a public type used by sealbox APIs.
//
// LintWarning instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintWarnings defines a public type used by sealbox APIs.
//
// LintWarnings instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LintWarnings []LintWarning

// Codes describes the codes operation and its observable behavior.
//
// Codes may return an error when input validation, dependency calls, or security checks fail.
// Codes does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (ws LintWarnings) Codes() []string {
	codes := make([]string, 0, len(ws))
	for _, w := range ws {
		codes = append(codes, w.Code)
	}
	return codes
}

// BySeverity returns the warnings at or above the given severity.
func (ws LintWarnings) BySeverity(min LintSeverity) LintWarnings {
	var out LintWarnings
	for _, w := range ws {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError converts the warnings at or above the given severity into a single
// [ErrConfiguration] error, or returns nil when none reach it. Deployments that
// want a hard gate call cfg.Lint().AsError(LintHigh) next to cfg.Validate().
func (ws LintWarnings) AsError(min LintSeverity) error {
	flagged := ws.BySeverity(min)
	if len(flagged) == 0 {
		return nil
	}
	return fmt.Errorf("%w: lint: %s", ErrConfiguration, strings.Join(flagged.Codes(), ", "))
}

// Lint reviews the configuration for weaknesses that [Config.Validate] accepts.
// Validate rejects configurations that cannot work; Lint flags ones that work
// but leave security posture on the table.
//
// Lint may return an error when input validation, dependency calls, or security checks fail.
// Lint does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Lint() LintWarnings {
	var ws LintWarnings

	switch c.Mode {
	case ModeV1:
		ws = append(ws, LintWarning{
			Code:     "legacy_mode_pinned",
			Severity: LintHigh,
			Message:  "ModeV1 mints legacy envelopes; pin ModeV2 and keep legacy acceptance behind a guess-mode reader only for rollback windows",
		})
	case ModeGuess:
		ws = append(ws, LintWarning{
			Code:     "migration_window_open",
			Severity: LintLow,
			Message:  "guess mode accepts legacy envelopes; pin ModeV2 once no legacy tokens remain in circulation",
		})
	}

	if n := len(c.Secret); n > 0 && n < minSecretSizeV1 {
		ws = append(ws, LintWarning{
			Code:     "secret_below_64_bytes",
			Severity: LintMedium,
			Message:  fmt.Sprintf("secret is %d bytes; 64 or more keeps the cipher and MAC halves independent", n),
		})
	}

	if c.Purpose == "" {
		ws = append(ws, LintWarning{
			Code:     "purpose_unbound",
			Severity: LintLow,
			Message:  "empty purpose means tokens are interchangeable between deployments sharing the secret",
		})
	}

	if c.Compression != CompressionNone {
		ws = append(ws, LintWarning{
			Code:     "compression_length_oracle",
			Severity: LintMedium,
			Message:  "compressed sizes track plaintext structure; do not compress payloads that mix secrets with attacker-influenced fields",
		})
	}

	if c.Padding.Inner == PadDisabled {
		ws = append(ws, LintWarning{
			Code:     "padding_disabled",
			Severity: LintLow,
			Message:  "without inner padding, token length tracks payload length",
		})
	}

	if !c.Metrics.Enabled {
		ws = append(ws, LintWarning{
			Code:     "metrics_disabled",
			Severity: LintLow,
			Message:  "rejection counters are the first sign of tampering or secret drift; enable metrics in production",
		})
	}

	return ws
}
