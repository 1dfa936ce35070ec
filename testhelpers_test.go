package goSession

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSignKey = []byte("0123456789abcdef0123456789abcdef")

func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString(testSignKey)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	return raw
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

type fakeNavigator struct {
	mu      sync.Mutex
	current string
	logins  []string
}

func (n *fakeNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *fakeNavigator) NavigateToLogin(returnTo string) {
	n.mu.Lock()
	n.logins = append(n.logins, returnTo)
	n.mu.Unlock()
}

func (n *fakeNavigator) loginCalls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.logins...)
}

func newTestManager(t *testing.T, ts *httptest.Server, nav Navigator) *Manager {
	t.Helper()

	m, err := New().
		WithBaseURL(ts.URL).
		WithNavigator(nav).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}
