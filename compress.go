package sealbox

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// compressor is the optional stage between serialization and inner padding. The
// algorithm is fixed per codec instance and no per-token tag is stored, so writer
// and reader configuration must agree. Decompression runs only on authenticated
// plaintext; a failure there means the peer was sealed with a different stage and
// is reported as a malformed message.
type compressor interface {
	compress(data []byte) ([]byte, error)
	decompress(data []byte) ([]byte, error)
}

// zstdEncoder and zstdDecoder are reused across calls to avoid repeated
// initialization overhead. Both are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("sealbox: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("sealbox: zstd decoder initialization failed: " + err.Error())
	}
}

type zlibCompressor struct{}

func (zlibCompressor) compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}

	return buf.Bytes(), nil
}

func (zlibCompressor) decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: zlib payload: %v", ErrInvalidMessage, err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: zlib payload: %v", ErrInvalidMessage, err)
	}
	return out, nil
}

type snappyCompressor struct{}

func (snappyCompressor) compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (snappyCompressor) decompress(data []byte) ([]byte, error) {
	out, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("%w: snappy payload: %v", ErrInvalidMessage, err)
	}
	return out, nil
}

type zstdCompressor struct{}

func (zstdCompressor) compress(data []byte) ([]byte, error) {
	return zstdEncoder.EncodeAll(data, nil), nil
}

func (zstdCompressor) decompress(data []byte) ([]byte, error) {
	out, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd payload: %v", ErrInvalidMessage, err)
	}
	return out, nil
}

// newCompressor returns nil for CompressionNone; the codec skips the stage entirely.
func newCompressor(kind CompressionKind) (compressor, error) {
	switch kind {
	case CompressionNone:
		return nil, nil
	case CompressionZlib:
		return zlibCompressor{}, nil
	case CompressionSnappy:
		return snappyCompressor{}, nil
	case CompressionZstd:
		return zstdCompressor{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown compression kind %d", ErrConfiguration, uint8(kind))
	}
}
