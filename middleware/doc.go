// Package middleware exposes HTTP middleware adapters for cookie-backed
// sessions built on top of the sealbox codec and session manager.
//
// # Adapters
//
//   - [CookieSessions] — stateless sessions; the sealed payload itself travels
//     in the cookie and no server-side store is involved.
//   - [StoreSessions] — server-side sessions; the cookie carries only a random
//     session ID and payloads live in Redis behind the [session.Manager].
//
// Each adapter reads the session cookie, opens the session into a [State], and
// injects it into the request context. Mutated state is committed back (cookie
// rewrite or store save) before the response first writes.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into codec and manager calls. It does
// NOT implement sealing, storage, or expiry itself.
//
// # What this package must NOT do
//
//   - Inspect or construct sealed payloads directly (delegates to the codec).
//   - Talk to Redis (the manager handles I/O).
//   - Reject requests: a missing or invalid cookie yields a fresh empty
//     session, never an error response.
package middleware
