package sealbox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	aeadKeySize   = 32
	aeadNonceSize = 12
	aeadTagSize   = 16
)

// sealer abstracts the AEAD primitive behind a split ciphertext/tag surface so the
// envelope layout stays identical across providers and no library's tag-placement
// convention leaks into the scheme code. Both supported providers use a 12-byte
// nonce and a 16-byte tag.
type sealer interface {
	seal(key, iv, aad, plaintext []byte) (ciphertext, tag []byte, err error)
	open(key, iv, aad, ciphertext, tag []byte) ([]byte, error)
}

type aeadConstructor func(key []byte) (cipher.AEAD, error)

// aeadSealer adapts any cipher.AEAD constructor. The AEAD is built per call because
// the key is derived fresh per message.
type aeadSealer struct {
	newAEAD aeadConstructor
}

func (s aeadSealer) seal(key, iv, aad, plaintext []byte) ([]byte, []byte, error) {
	a, err := s.newAEAD(key)
	if err != nil {
		return nil, nil, err
	}

	// Go AEADs append the tag to the ciphertext; split it back out.
	sealed := a.Seal(nil, iv, plaintext, aad)
	split := len(sealed) - aeadTagSize

	return sealed[:split], sealed[split:], nil
}

func (s aeadSealer) open(key, iv, aad, ciphertext, tag []byte) ([]byte, error) {
	a, err := s.newAEAD(key)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := a.Open(nil, iv, sealed, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func newAEADSealer(kind AEADKind) (sealer, error) {
	switch kind {
	case AEADAESGCM:
		return aeadSealer{newAEAD: newGCM}, nil
	case AEADChaCha20Poly1305:
		return aeadSealer{newAEAD: chacha20poly1305.New}, nil
	default:
		return nil, fmt.Errorf("%w: unknown aead kind %d", ErrConfiguration, uint8(kind))
	}
}
