package sealbox

import (
	"bytes"
	"errors"
	"testing"
)

func newTestSchemeV2(t *testing.T, purpose string, kind AEADKind) *schemeV2 {
	t.Helper()

	aead, err := newAEADSealer(kind)
	if err != nil {
		t.Fatalf("newAEADSealer failed: %v", err)
	}
	s, err := newSchemeV2(testSecret()[:32], purpose, aead)
	if err != nil {
		t.Fatalf("newSchemeV2 failed: %v", err)
	}
	return s
}

func TestSchemeV2RequiresCipherSecret(t *testing.T) {
	aead, err := newAEADSealer(AEADAESGCM)
	if err != nil {
		t.Fatalf("newAEADSealer failed: %v", err)
	}
	if _, err := newSchemeV2(make([]byte, 31), "", aead); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestSchemeV2EnvelopeLayout(t *testing.T) {
	for _, kind := range []AEADKind{AEADAESGCM, AEADChaCha20Poly1305} {
		t.Run(kind.String(), func(t *testing.T) {
			s := newTestSchemeV2(t, "", kind)
			payload := []byte("current payload")

			envelope, err := s.encrypt(payload)
			if err != nil {
				t.Fatalf("encrypt failed: %v", err)
			}

			if want := v2HeaderSize + len(payload); len(envelope) != want {
				t.Fatalf("expected envelope of %d bytes, got %d", want, len(envelope))
			}
			if envelope[0] != versionV2 {
				t.Fatalf("expected version tag %#x, got %#x", versionV2, envelope[0])
			}
			if bytes.Contains(envelope, payload) {
				t.Fatal("plaintext appears in the envelope")
			}

			out, err := s.decrypt(envelope)
			if err != nil {
				t.Fatalf("decrypt failed: %v", err)
			}
			if !bytes.Equal(out, payload) {
				t.Fatal("round trip mismatch")
			}
		})
	}
}

func TestSchemeV2MinimumSizeBoundary(t *testing.T) {
	s := newTestSchemeV2(t, "", AEADAESGCM)

	fills := map[string]byte{"zeros": 0x00, "ones": 0xFF}
	for name, fill := range fills {
		t.Run(name, func(t *testing.T) {
			// One byte under the minimum fails on length regardless of content.
			short := bytes.Repeat([]byte{fill}, v2MinEnvelopeSize-1)
			short[0] = versionV2
			if _, err := s.decrypt(short); !errors.Is(err, ErrInvalidMessage) {
				t.Fatalf("expected ErrInvalidMessage below minimum, got %v", err)
			}

			// At the minimum the envelope parses and fails authentication instead.
			exact := bytes.Repeat([]byte{fill}, v2MinEnvelopeSize)
			exact[0] = versionV2
			if _, err := s.decrypt(exact); !errors.Is(err, ErrInvalidSignature) {
				t.Fatalf("expected ErrInvalidSignature at minimum, got %v", err)
			}
		})
	}
}

func TestSchemeV2ForeignTagRejected(t *testing.T) {
	s := newTestSchemeV2(t, "", AEADAESGCM)

	envelope, err := s.encrypt([]byte("payload"))
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	envelope[0] = versionV1

	if _, err := s.decrypt(envelope); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestSchemeV2TamperFailsAuthentication(t *testing.T) {
	s := newTestSchemeV2(t, "", AEADAESGCM)

	envelope, err := s.encrypt([]byte("payload"))
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	offsets := map[string]int{
		"salt":       1,
		"iv":         1 + v2SaltSize,
		"auth tag":   1 + v2SaltSize + aeadNonceSize,
		"ciphertext": v2HeaderSize,
	}

	for name, offset := range offsets {
		t.Run(name, func(t *testing.T) {
			tampered := make([]byte, len(envelope))
			copy(tampered, envelope)
			tampered[offset] ^= 0x01

			if _, err := s.decrypt(tampered); !errors.Is(err, ErrInvalidSignature) {
				t.Fatalf("expected ErrInvalidSignature, got %v", err)
			}
		})
	}
}

func TestSchemeV2ProvidersDoNotInteroperate(t *testing.T) {
	gcm := newTestSchemeV2(t, "", AEADAESGCM)
	chacha := newTestSchemeV2(t, "", AEADChaCha20Poly1305)

	envelope, err := gcm.encrypt([]byte("payload"))
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	// Same layout, same derived key, different primitive: authentication fails.
	if _, err := chacha.decrypt(envelope); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestSchemeV2PurposeBinding(t *testing.T) {
	sealer := newTestSchemeV2(t, "A", AEADAESGCM)

	envelope, err := sealer.encrypt([]byte("payload"))
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	if out, err := newTestSchemeV2(t, "A", AEADAESGCM).decrypt(envelope); err != nil || !bytes.Equal(out, []byte("payload")) {
		t.Fatalf("same-purpose decrypt failed: %v", err)
	}
	if _, err := newTestSchemeV2(t, "B", AEADAESGCM).decrypt(envelope); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for purpose B, got %v", err)
	}
	if _, err := newTestSchemeV2(t, "", AEADAESGCM).decrypt(envelope); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for missing purpose, got %v", err)
	}
}

func TestSchemeV2SaltAndIVAreUnique(t *testing.T) {
	s := newTestSchemeV2(t, "", AEADAESGCM)
	payload := []byte("same payload")

	first, err := s.encrypt(payload)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	second, err := s.encrypt(payload)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	if bytes.Equal(first[1:1+v2SaltSize], second[1:1+v2SaltSize]) {
		t.Fatal("salt repeated across envelopes")
	}
	if bytes.Equal(first[1+v2SaltSize:1+v2SaltSize+aeadNonceSize], second[1+v2SaltSize:1+v2SaltSize+aeadNonceSize]) {
		t.Fatal("IV repeated across envelopes")
	}
}
