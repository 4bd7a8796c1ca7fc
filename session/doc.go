// Package session provides Redis-backed persistence for sealed session payloads
// and a [Manager] that ties payload sealing, storage, and expiry together.
//
// # Storage model
//
// The store persists opaque sealed strings keyed by session [ID]. Payloads are
// sealed before they reach Redis and opened after they leave it, so a Redis
// compromise exposes ciphertext only. The store never inspects blob contents.
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations), session [ID] generation,
// and the [Manager] lifecycle. It does NOT define the sealed format or choose
// cryptographic primitives. Those belong to the root codec.
//
// # What this package must NOT do
//
//   - Decode or interpret sealed blobs without the codec.
//   - Store plaintext payload fields in Redis keys or values.
//   - Invent session expiry policy beyond the configured TTL.
package session
