// Package token decodes the expiry claim embedded in a bearer token
// without verifying its signature.
//
// This is a client-side timing hint, never a security check: it exists so
// the transport chain can distinguish "the token aged out, refresh it"
// from "the server rejected a live token, refresh cannot help". Anything
// that fails to decode is reported as expired, so the package fails closed.
package token
