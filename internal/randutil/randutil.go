// Package randutil contains secure random generation helpers that are intentionally
// private to sealbox: padding fill, per-message secrets, IVs, and session identifiers
// all draw from here.
//
// # What this package must NOT do
//
//   - Export types that appear in the public sealbox API.
//   - Use anything other than crypto/rand as an entropy source.
package randutil

import "crypto/rand"

// Bytes returns n cryptographically random bytes.
func Bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Fill overwrites b with cryptographically random bytes.
func Fill(b []byte) error {
	_, err := rand.Read(b)
	return err
}
