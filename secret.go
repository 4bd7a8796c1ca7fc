package sealbox

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
)

const (
	cipherSecretSize = 32

	// Minimum secret material per scheme generation. The legacy scheme needs a
	// cipher secret plus a non-empty MAC secret; the current scheme only needs
	// the cipher secret.
	minSecretSizeV1 = 64
	minSecretSizeV2 = 32
)

// secretMaterial is a private copy of the caller's secret buffer. The copy is made
// once at construction and never mutated; accessors hand out disjoint views of it.
type secretMaterial struct {
	buf []byte
}

func newSecretMaterial(secret []byte, min int) (secretMaterial, error) {
	if len(secret) < min {
		return secretMaterial{}, fmt.Errorf("%w: secret must be at least %d bytes, got %d", ErrConfiguration, min, len(secret))
	}

	buf := make([]byte, len(secret))
	copy(buf, secret)

	return secretMaterial{buf: buf}, nil
}

// cipherSecret returns the first 32 bytes. The full slice expression pins the
// capacity so no append through this view can reach the MAC secret.
func (s secretMaterial) cipherSecret() []byte {
	return s.buf[:cipherSecretSize:cipherSecretSize]
}

// hmacSecret returns everything after the cipher secret. Only meaningful for
// material validated against minSecretSizeV1.
func (s secretMaterial) hmacSecret() []byte {
	return s.buf[cipherSecretSize:]
}

// deriveKey combines the static cipher secret with a per-message value so that
// every envelope is encrypted under a unique key that never travels on the wire.
func deriveKey(secret, perMessage []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(perMessage)
	return mac.Sum(nil)
}
