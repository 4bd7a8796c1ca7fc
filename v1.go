package sealbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"

	"github.com/voutila/sealbox/internal/randutil"
)

// Legacy envelope layout:
//
//	[1B version=0x01][32B messageSecret][16B IV][N B ciphertext][32B HMAC tag]
//
// The tag covers everything before it plus the optional purpose string, keyed
// with the MAC half of the secret material. The cipher key is never the
// transmitted message secret itself: it is HMAC-SHA256(cipherSecret,
// messageSecret), so recovering the message secret from an envelope does not
// expose the key.

const (
	v1MessageSecretSize = 32
	v1IVSize            = aes.BlockSize
	v1TagSize           = sha256.Size

	v1HeaderSize      = 1 + v1MessageSecretSize + v1IVSize
	v1MinEnvelopeSize = v1HeaderSize + v1TagSize
)

type schemeV1 struct {
	secret  secretMaterial
	purpose []byte
}

func newSchemeV1(secret []byte, purpose string) (*schemeV1, error) {
	material, err := newSecretMaterial(secret, minSecretSizeV1)
	if err != nil {
		return nil, err
	}
	return &schemeV1{secret: material, purpose: []byte(purpose)}, nil
}

func (s *schemeV1) encrypt(payload []byte) ([]byte, error) {
	envelope := make([]byte, v1HeaderSize+len(payload)+v1TagSize)
	envelope[0] = versionV1

	messageSecret := envelope[1 : 1+v1MessageSecretSize]
	if err := randutil.Fill(messageSecret); err != nil {
		return nil, err
	}

	iv := envelope[1+v1MessageSecretSize : v1HeaderSize]
	if err := randutil.Fill(iv); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(deriveKey(s.secret.cipherSecret(), messageSecret))
	if err != nil {
		return nil, err
	}
	cipher.NewCTR(block, iv).XORKeyStream(envelope[v1HeaderSize:v1HeaderSize+len(payload)], payload)

	copy(envelope[v1HeaderSize+len(payload):], s.sign(envelope[:v1HeaderSize+len(payload)]))

	return envelope, nil
}

func (s *schemeV1) decrypt(envelope []byte) ([]byte, error) {
	if len(envelope) < v1MinEnvelopeSize {
		return nil, fmt.Errorf("%w: legacy envelope shorter than %d bytes", ErrInvalidMessage, v1MinEnvelopeSize)
	}

	// Authenticate before parsing anything inside the signed body.
	split := len(envelope) - v1TagSize
	signingInput, tag := envelope[:split], envelope[split:]
	if !hmac.Equal(tag, s.sign(signingInput)) {
		return nil, fmt.Errorf("%w: tag mismatch", ErrInvalidSignature)
	}

	if signingInput[0] != versionV1 {
		return nil, fmt.Errorf("%w: unexpected version tag %#x", ErrInvalidMessage, signingInput[0])
	}

	messageSecret := signingInput[1 : 1+v1MessageSecretSize]
	iv := signingInput[1+v1MessageSecretSize : v1HeaderSize]
	ciphertext := signingInput[v1HeaderSize:]

	block, err := aes.NewCipher(deriveKey(s.secret.cipherSecret(), messageSecret))
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCTR(block, iv).XORKeyStream(plaintext, ciphertext)

	return plaintext, nil
}

// sign computes the envelope tag. hmac.Equal in decrypt keeps the comparison
// constant-time.
func (s *schemeV1) sign(signingInput []byte) []byte {
	mac := hmac.New(sha256.New, s.secret.hmacSecret())
	mac.Write(signingInput)
	if len(s.purpose) > 0 {
		mac.Write(s.purpose)
	}
	return mac.Sum(nil)
}
