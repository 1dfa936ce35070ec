// Package goSession keeps an HTTP client's requests authenticated with a
// short-lived bearer token while a long-lived refresh credential, held in an
// httpOnly cookie the application never reads, is used to mint replacement
// tokens transparently.
//
// The package is designed for concurrent client workloads: any number of
// requests may discover an expired or rejected token at the same instant, and
// the [Manager] guarantees that exactly one refresh call reaches the wire,
// that a failed refresh is never retried until the next successful login, and
// that an individual request is resubmitted at most once.
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Manager], [Builder], [Config],
// the [Navigator] contract, and value types (Principal, MetricsSnapshot).
// The transport chain, token holder, and refresh coordination are unexported;
// callers interact with them only through the [http.Client] returned by
// [Manager.Client].
//
// # What this package must NOT do
//
//   - Verify token signatures. Expiry decoding (package token) is a timing
//     heuristic; the server remains the only authority on token validity.
//   - Read or store the refresh credential. It lives in the cookie jar and
//     crosses the wire only on the refresh endpoint.
//   - Persist the bearer token or principal anywhere outside process memory.
//
// # Concurrency contract
//
// All Manager methods and the transport chain are safe for concurrent use
// after [Builder.Build]. Token and principal have a single owner (the token
// holder) and exactly three writers: Login, Logout, and the refresh
// coordinator's completion step.
package goSession
