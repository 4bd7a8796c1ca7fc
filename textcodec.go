package sealbox

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Text encoding differs per scheme generation: the legacy generation uses the
// URL-safe base64 alphabet, the current one the standard alphabet (cookie values
// need not be URL-safe and the standard encoder is marginally faster). The sniff
// step normalizes the URL-safe alphabet to standard so both generations can be
// identified with a single decoder.

var base64Normalizer = strings.NewReplacer("-", "+", "_", "/")

func encodeText(version byte, raw []byte) string {
	if version == versionV1 {
		return base64.URLEncoding.EncodeToString(raw)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func decodeText(version byte, text string) ([]byte, error) {
	var (
		raw []byte
		err error
	)
	if version == versionV1 {
		raw, err = base64.URLEncoding.DecodeString(text)
	} else {
		raw, err = base64.StdEncoding.DecodeString(text)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: text decoding: %v", ErrInvalidMessage, err)
	}
	return raw, nil
}

// sniffVersion recovers the envelope version tag from the first four text
// characters (three raw bytes) without paying for a full decode.
func sniffVersion(text string) (byte, error) {
	if len(text) < 4 {
		return 0, fmt.Errorf("%w: token shorter than sniff window", ErrInvalidMessage)
	}

	prefix := base64Normalizer.Replace(text[:4])

	var buf [3]byte
	n, err := base64.StdEncoding.Decode(buf[:], []byte(prefix))
	if err != nil {
		return 0, fmt.Errorf("%w: token prefix: %v", ErrInvalidMessage, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: empty token prefix", ErrInvalidMessage)
	}

	return buf[0], nil
}
