// Package devserver is a reference implementation of the session wire
// contract the goSession client consumes: login, refresh, logout, setup,
// and status endpoints plus a bearer-guarded API surface.
//
// It exists for integration tests, examples, and local development — run
// it against miniredis and point a Manager at it. The refresh credential
// is an opaque session-id/secret pair delivered in an httpOnly cookie;
// secrets are stored hashed in Redis and rotated atomically on every
// refresh, and presenting a superseded secret destroys the session.
//
// Issuance choices here (HS256, TTLs) are reference choices, not part of
// the client contract; the client only ever decodes the exp claim.
package devserver
