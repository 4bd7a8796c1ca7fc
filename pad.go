package sealbox

import (
	"encoding/binary"
	"fmt"

	"github.com/voutila/sealbox/internal/randutil"
)

// Padding layout: [2B little-endian count][count random bytes][payload].
//
// With a block size S the count is chosen so that the whole padded segment is an
// exact multiple of S, which keeps the on-wire length from tracking the payload
// length. The inner padder always emits the header (count 0 when disabled); the
// outer padder is omitted entirely when disabled, which the codec handles by not
// calling into this file.

const padHeaderSize = 2

func padBlock(data []byte, size int) ([]byte, error) {
	if size == 0 {
		out := make([]byte, padHeaderSize+len(data))
		copy(out[padHeaderSize:], data)
		return out, nil
	}

	padLen := (size - (padHeaderSize+len(data))%size) % size

	out := make([]byte, padHeaderSize+padLen+len(data))
	binary.LittleEndian.PutUint16(out[:padHeaderSize], uint16(padLen))
	if err := randutil.Fill(out[padHeaderSize : padHeaderSize+padLen]); err != nil {
		return nil, err
	}
	copy(out[padHeaderSize+padLen:], data)

	return out, nil
}

func unpadBlock(data []byte) ([]byte, error) {
	if len(data) < padHeaderSize {
		return nil, fmt.Errorf("%w: truncated padding header", ErrInvalidMessage)
	}

	padLen := int(binary.LittleEndian.Uint16(data[:padHeaderSize]))
	if len(data) < padHeaderSize+padLen {
		return nil, fmt.Errorf("%w: padding count %d exceeds segment", ErrInvalidMessage, padLen)
	}

	return data[padHeaderSize+padLen:], nil
}
