package session

import (
	"encoding/base64"
	"errors"

	"github.com/google/uuid"
	"github.com/voutila/sealbox/internal/randutil"
)

// ID is a 128-bit session identifier. The string form is unpadded base64url,
// compact enough for cookies and Redis keys.
type ID [16]byte

// Bytes describes the bytes operation and its observable behavior.
//
// Bytes may return an error when input validation, dependency calls, or security checks fail.
// Bytes does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (id ID) Bytes() []byte {
	return id[:]
}

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (id ID) String() string {
	// base64url, no padding, compact
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// ParseID describes the parseid operation and its observable behavior.
//
// ParseID may return an error when input validation, dependency calls, or security checks fail.
// ParseID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ParseID(s string) (ID, error) {
	var id ID

	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(raw) != len(id) {
		return id, errors.New("invalid session id size")
	}

	copy(id[:], raw)
	return id, nil
}

// IDSource produces new session identifiers. Implementations must draw from a
// cryptographically secure source; session IDs are bearer-adjacent values.
type IDSource interface {
	NewID() (ID, error)
}

// RandomSource generates IDs straight from crypto/rand.
type RandomSource struct{}

// NewID describes the newid operation and its observable behavior.
//
// NewID may return an error when input validation, dependency calls, or security checks fail.
// NewID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (RandomSource) NewID() (ID, error) {
	var id ID
	err := randutil.Fill(id[:])
	return id, err
}

// UUIDSource generates IDs from random (version 4) UUIDs. Useful when session
// IDs must correlate with UUID-keyed records elsewhere in the deployment.
type UUIDSource struct{}

// NewID describes the newid operation and its observable behavior.
//
// NewID may return an error when input validation, dependency calls, or security checks fail.
// NewID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (UUIDSource) NewID() (ID, error) {
	var id ID

	u, err := uuid.NewRandom()
	if err != nil {
		return id, err
	}

	copy(id[:], u[:])
	return id, nil
}
