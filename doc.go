// Package sealbox encodes structured session payloads into opaque, tamper-evident,
// length-obscured tokens suitable for client-visible cookies, and decodes them back.
//
// A [Codec] composes a pluggable serializer (CBOR or JSON), optional compression,
// length-obscuring padding, one of two authenticated encryption generations, and a
// transport-safe text encoding. Writes always mint the newer generation unless the
// codec is pinned to the legacy one; reads can accept either generation during a
// migration window by inspecting the version tag.
//
// The package is designed for concurrent server workloads: Codec methods are safe to
// call from multiple goroutines after construction through [New].
//
// # Architecture boundaries
//
// sealbox is the public surface. It exposes [Codec], [Config], the error sentinels,
// and value types (MetricsSnapshot, AuditEvent, etc.). Session identifiers, Redis
// persistence of sealed blobs, and the HTTP cookie boundary live in the session and
// middleware sub-packages; the codec only ever produces and consumes opaque text.
//
// # What this package must NOT do
//
//   - Perform I/O: Seal and Open are pure, synchronous, CPU-bound transforms.
//   - Manage key storage, rotation, or distribution. Secret material is supplied
//     once at construction and never altered.
//   - Fall back to an implicit default secret or mode; every instance carries an
//     explicit [Config].
//
// # Security contract
//
// Open never returns plaintext from an envelope that failed authentication. Tag
// comparison in the legacy scheme is constant-time; the current scheme delegates to
// an AEAD. Decode failures surface as [ErrInvalidMessage] (malformed envelope) or
// [ErrInvalidSignature] (authentication failure); callers above the codec must treat
// the two identically as "no valid session" and start fresh.
package sealbox
