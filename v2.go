package sealbox

import (
	"fmt"

	"github.com/voutila/sealbox/internal/randutil"
)

// Current envelope layout:
//
//	[1B version=0x02][32B salt][12B IV][16B authTag][N B ciphertext]
//
// The key is HMAC-SHA256(cipherSecret, salt); the version tag, salt, and
// optional purpose are bound in as associated data, so the AEAD rejects any
// cross-version or cross-purpose replay in one verification.

const (
	v2SaltSize = 32

	v2HeaderSize = 1 + v2SaltSize + aeadNonceSize + aeadTagSize

	// A zero-length authenticated payload is rejected as malformed. The inner
	// padding header contributes at least two plaintext bytes, so nothing this
	// codec mints ever trips the check.
	v2MinEnvelopeSize = v2HeaderSize + 1
)

type schemeV2 struct {
	secret  secretMaterial
	purpose []byte
	aead    sealer
}

func newSchemeV2(secret []byte, purpose string, aead sealer) (*schemeV2, error) {
	material, err := newSecretMaterial(secret, minSecretSizeV2)
	if err != nil {
		return nil, err
	}
	return &schemeV2{secret: material, purpose: []byte(purpose), aead: aead}, nil
}

func (s *schemeV2) encrypt(payload []byte) ([]byte, error) {
	salt, err := randutil.Bytes(v2SaltSize)
	if err != nil {
		return nil, err
	}
	iv, err := randutil.Bytes(aeadNonceSize)
	if err != nil {
		return nil, err
	}

	key := deriveKey(s.secret.cipherSecret(), salt)
	ciphertext, tag, err := s.aead.seal(key, iv, s.associatedData(salt), payload)
	if err != nil {
		return nil, err
	}

	envelope := make([]byte, 0, v2HeaderSize+len(ciphertext))
	envelope = append(envelope, versionV2)
	envelope = append(envelope, salt...)
	envelope = append(envelope, iv...)
	envelope = append(envelope, tag...)
	envelope = append(envelope, ciphertext...)

	return envelope, nil
}

func (s *schemeV2) decrypt(envelope []byte) ([]byte, error) {
	if len(envelope) < v2MinEnvelopeSize {
		return nil, fmt.Errorf("%w: envelope shorter than %d bytes", ErrInvalidMessage, v2MinEnvelopeSize)
	}
	if envelope[0] != versionV2 {
		return nil, fmt.Errorf("%w: unexpected version tag %#x", ErrInvalidMessage, envelope[0])
	}

	salt := envelope[1 : 1+v2SaltSize]
	iv := envelope[1+v2SaltSize : 1+v2SaltSize+aeadNonceSize]
	tag := envelope[1+v2SaltSize+aeadNonceSize : v2HeaderSize]
	ciphertext := envelope[v2HeaderSize:]

	key := deriveKey(s.secret.cipherSecret(), salt)
	return s.aead.open(key, iv, s.associatedData(salt), ciphertext, tag)
}

func (s *schemeV2) associatedData(salt []byte) []byte {
	aad := make([]byte, 0, 1+len(salt)+len(s.purpose))
	aad = append(aad, versionV2)
	aad = append(aad, salt...)
	aad = append(aad, s.purpose...)
	return aad
}
