package sealbox

import "fmt"

// Mode defines a public type used by sealbox APIs.
//
// Mode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Mode uint8

const (
	// ModeGuess accepts either envelope generation on Open by inspecting the
	// version tag, and mints the current generation on Seal. Default.
	ModeGuess Mode = iota
	// ModeV1 pins Seal and Open to the legacy generation.
	ModeV1
	// ModeV2 pins Seal and Open to the current generation.
	ModeV2
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m Mode) String() string {
	switch m {
	case ModeGuess:
		return "guess"
	case ModeV1:
		return "v1"
	case ModeV2:
		return "v2"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

/*
====================================
SERIALIZATION
====================================
*/

// SerializerKind defines a public type used by sealbox APIs.
//
// SerializerKind instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SerializerKind uint8

const (
	// SerializerCBOR selects deterministic CBOR, the native object-graph format. Default.
	SerializerCBOR SerializerKind = iota
	// SerializerJSON selects encoding/json; map keys become strings on the wire.
	SerializerJSON
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k SerializerKind) String() string {
	switch k {
	case SerializerCBOR:
		return "cbor"
	case SerializerJSON:
		return "json"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// CompressionKind defines a public type used by sealbox APIs.
//
// CompressionKind instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CompressionKind uint8

const (
	// CompressionNone leaves payloads uncompressed. Default.
	CompressionNone CompressionKind = iota
	// CompressionZlib selects zlib (deflate) compression.
	CompressionZlib
	// CompressionSnappy selects snappy block compression.
	CompressionSnappy
	// CompressionZstd selects zstd compression at the default level.
	CompressionZstd
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k CompressionKind) String() string {
	switch k {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	case CompressionSnappy:
		return "snappy"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// AEADKind defines a public type used by sealbox APIs.
//
// AEADKind instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AEADKind uint8

const (
	// AEADAESGCM selects AES-256-GCM for the current envelope generation. Default.
	AEADAESGCM AEADKind = iota
	// AEADChaCha20Poly1305 selects ChaCha20-Poly1305; the envelope layout is unchanged.
	AEADChaCha20Poly1305
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k AEADKind) String() string {
	switch k {
	case AEADAESGCM:
		return "aes-gcm"
	case AEADChaCha20Poly1305:
		return "chacha20-poly1305"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

/*
====================================
PADDING CONFIG
====================================
*/

// PadDisabled is an exported constant or variable used by the sealbox codec.
const PadDisabled = -1

const (
	defaultInnerPadSize = 32
	minPadSize          = 2
	maxPadSize          = 4096
)

// PaddingConfig defines a public type used by sealbox APIs.
//
// PaddingConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PaddingConfig struct {
	// Inner pads the serialized payload before encryption so ciphertext length
	// does not track payload length. 0 selects the default of 32; PadDisabled
	// turns padding off (the two-byte header is still written); otherwise the
	// value must be in [2,4096].
	Inner int
	// Outer pads the encrypted envelope before text encoding. 0 (default) and
	// PadDisabled both omit the stage entirely; otherwise [2,4096]. Requires a
	// pinned mode (ModeV1 or ModeV2).
	Outer int
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by sealbox APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by sealbox APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
CODEC CONFIG
====================================
*/

// Config defines a public type used by sealbox APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// Secret is the static secret material, supplied once and defensively
	// copied. ModeGuess and ModeV1 require at least 64 bytes (a 32-byte cipher
	// secret plus a MAC secret); ModeV2 requires at least 32.
	Secret []byte

	// Purpose scopes authentication. A token sealed under one purpose never
	// opens under another; the match is byte-for-byte. Empty means unscoped.
	Purpose string

	Mode        Mode
	Serializer  SerializerKind
	Compression CompressionKind
	AEAD        AEADKind
	Padding     PaddingConfig
	Metrics     MetricsConfig
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return Config{
		Mode:        ModeGuess,
		Serializer:  SerializerCBOR,
		Compression: CompressionNone,
		AEAD:        AEADAESGCM,
		Padding: PaddingConfig{
			Inner: defaultInnerPadSize,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeGuess, ModeV1:
		if len(c.Secret) < minSecretSizeV1 {
			return fmt.Errorf("%w: %s mode requires a secret of at least %d bytes, got %d",
				ErrConfiguration, c.Mode, minSecretSizeV1, len(c.Secret))
		}
	case ModeV2:
		if len(c.Secret) < minSecretSizeV2 {
			return fmt.Errorf("%w: %s mode requires a secret of at least %d bytes, got %d",
				ErrConfiguration, c.Mode, minSecretSizeV2, len(c.Secret))
		}
	default:
		return fmt.Errorf("%w: unknown mode %d", ErrConfiguration, uint8(c.Mode))
	}

	if err := validatePadSize("inner", c.Padding.Inner); err != nil {
		return err
	}
	if err := validatePadSize("outer", c.Padding.Outer); err != nil {
		return err
	}
	// Version guessing inspects the first envelope byte, and outer padding
	// covers that byte with its own header. The combination cannot resolve a
	// version, so it is rejected here rather than misrouting at Open time.
	if c.Mode == ModeGuess && c.outerPadSize() != 0 {
		return fmt.Errorf("%w: outer padding requires a pinned mode; guess mode cannot read the version tag beneath the pad header", ErrConfiguration)
	}

	switch c.Serializer {
	case SerializerCBOR, SerializerJSON:
	default:
		return fmt.Errorf("%w: unknown serializer kind %d", ErrConfiguration, uint8(c.Serializer))
	}

	switch c.Compression {
	case CompressionNone, CompressionZlib, CompressionSnappy, CompressionZstd:
	default:
		return fmt.Errorf("%w: unknown compression kind %d", ErrConfiguration, uint8(c.Compression))
	}

	switch c.AEAD {
	case AEADAESGCM, AEADChaCha20Poly1305:
	default:
		return fmt.Errorf("%w: unknown aead kind %d", ErrConfiguration, uint8(c.AEAD))
	}

	return nil
}

func validatePadSize(which string, size int) error {
	if size == 0 || size == PadDisabled {
		return nil
	}
	if size < minPadSize || size > maxPadSize {
		return fmt.Errorf("%w: %s pad size must be in [%d,%d] or PadDisabled, got %d",
			ErrConfiguration, which, minPadSize, maxPadSize, size)
	}
	return nil
}

// innerPadSize maps the configured inner pad knob to the runtime block size;
// 0 means "padding disabled, header only".
func (c *Config) innerPadSize() int {
	switch c.Padding.Inner {
	case 0:
		return defaultInnerPadSize
	case PadDisabled:
		return 0
	default:
		return c.Padding.Inner
	}
}

// outerPadSize maps the configured outer pad knob; 0 means the stage is absent.
func (c *Config) outerPadSize() int {
	switch c.Padding.Outer {
	case 0, PadDisabled:
		return 0
	default:
		return c.Padding.Outer
	}
}
