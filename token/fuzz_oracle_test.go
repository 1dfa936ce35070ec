package token

import "testing"

// FuzzExpiresAt asserts the decoder fails closed: arbitrary input must
// never panic and must never be reported as a live token unless it decodes
// to a future exp claim.
func FuzzExpiresAt(f *testing.F) {
	f.Add("")
	f.Add("garbage")
	f.Add("a.b.c")
	f.Add("eyJhbGciOiJIUzI1NiJ9.e30.")
	f.Add("eyJhbGciOiJIUzI1NiJ9..sig")

	f.Fuzz(func(t *testing.T, raw string) {
		_, err := ExpiresAt(raw)
		if err != nil && !ExpiredOrAbsent(raw) {
			t.Fatalf("undecodable token %q reported as live", raw)
		}
	})
}
