package sealbox

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Serializer defines a public type used by sealbox APIs.
//
// Serializer converts a structured value to and from bytes. The backend is fixed per
// codec instance at construction; writer and reader must agree on it. CBOR is the
// native object-graph format and keeps non-string map keys, byte strings, and
// integer width intact; JSON coerces map keys to strings and numbers to float64
// when decoding into untyped targets.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, dst any) error
}

// Deterministic CBOR modes shared by every codec instance. Initialized eagerly so
// concurrent first use never races.
var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("sealbox: cbor encode mode setup failed: %v", err))
	}
	cborEnc = em

	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("sealbox: cbor decode mode setup failed: %v", err))
	}
	cborDec = dm
}

type cborSerializer struct{}

func (cborSerializer) Marshal(v any) ([]byte, error) {
	return cborEnc.Marshal(v)
}

func (cborSerializer) Unmarshal(data []byte, dst any) error {
	return cborDec.Unmarshal(data, dst)
}

type jsonSerializer struct{}

func (jsonSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonSerializer) Unmarshal(data []byte, dst any) error {
	return json.Unmarshal(data, dst)
}

func newSerializer(kind SerializerKind) (Serializer, error) {
	switch kind {
	case SerializerCBOR:
		return cborSerializer{}, nil
	case SerializerJSON:
		return jsonSerializer{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown serializer kind %d", ErrConfiguration, uint8(kind))
	}
}
