//go:build integration

package test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/devserver"
)

const (
	adminUser     = "admin"
	adminPassword = "correct-horse-battery"
)

// refreshObserver wraps the server handler to count and optionally slow
// down refresh calls, so tests can see single-flight behavior at the wire.
type refreshObserver struct {
	next  http.Handler
	delay time.Duration
	calls atomic.Int64
}

func (o *refreshObserver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/auth/refresh" {
		o.calls.Add(1)
		if o.delay > 0 {
			time.Sleep(o.delay)
		}
	}
	o.next.ServeHTTP(w, r)
}

type recordingNavigator struct {
	mu      sync.Mutex
	current string
	logins  []string
}

func (n *recordingNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *recordingNavigator) NavigateToLogin(returnTo string) {
	n.mu.Lock()
	n.logins = append(n.logins, returnTo)
	n.mu.Unlock()
}

func (n *recordingNavigator) loginCalls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.logins...)
}

type stack struct {
	server   *devserver.Server
	redis    *miniredis.Miniredis
	ts       *httptest.Server
	observer *refreshObserver
	nav      *recordingNavigator
	manager  *goSession.Manager
}

// newStack boots the whole loop: miniredis, the reference server with the
// given access TTL, and a Manager pointed at it.
func newStack(t *testing.T, accessTTL, refreshDelay time.Duration) *stack {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := devserver.DefaultConfig()
	cfg.SigningKey = []byte("integration-key-0123456789abcdef")
	cfg.AccessTTL = accessTTL

	srv, err := devserver.New(cfg, rdb)
	if err != nil {
		t.Fatalf("devserver: %v", err)
	}
	if err := srv.Seed(adminUser, adminPassword, "admin"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	observer := &refreshObserver{next: srv.Handler(), delay: refreshDelay}
	ts := httptest.NewServer(observer)
	t.Cleanup(ts.Close)

	nav := &recordingNavigator{current: "/dashboard"}
	m, err := goSession.New().
		WithBaseURL(ts.URL).
		WithNavigator(nav).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}
	t.Cleanup(m.Close)

	return &stack{
		server:   srv,
		redis:    mr,
		ts:       ts,
		observer: observer,
		nav:      nav,
		manager:  m,
	}
}

func (s *stack) getMe(t *testing.T) *http.Response {
	t.Helper()

	resp, err := s.manager.Client().Get(s.ts.URL + "/api/me")
	if err != nil {
		t.Fatalf("GET /api/me: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}
