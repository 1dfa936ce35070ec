package goSession

import (
	"context"
	"sync"
)

// refreshCall is one in-flight refresh operation. Waiters block on done;
// ok is written before done is closed and read only after.
type refreshCall struct {
	done chan struct{}
	ok   bool
}

// refreshCoordinator serializes refresh attempts process-wide.
//
// Invariants it owns:
//   - at most one refresh network call is in flight at any instant; every
//     concurrent caller attaches to that call and observes its outcome
//   - once an attempt fails the exhausted latch suppresses all further
//     attempts until Reset (called only on successful login)
type refreshCoordinator struct {
	mu        sync.Mutex
	inflight  *refreshCall
	exhausted bool

	// exec performs the refresh network call and writes the outcome into
	// the token store. It runs on its own bounded background context so a
	// caller's cancellation cannot poison the shared attempt.
	exec   func() error
	metric func(MetricID)
}

// TryRefresh reports whether a fresh bearer token was obtained. When an
// attempt is already running the caller waits for it and shares its
// outcome; ctx bounds only that wait, never the attempt itself.
func (c *refreshCoordinator) TryRefresh(ctx context.Context) bool {
	c.mu.Lock()
	if c.exhausted {
		c.mu.Unlock()
		c.metric(MetricRefreshSuppressed)
		return false
	}
	if call := c.inflight; call != nil {
		c.mu.Unlock()
		c.metric(MetricRefreshShared)
		select {
		case <-call.done:
			return call.ok
		case <-ctx.Done():
			return false
		}
	}

	call := &refreshCall{done: make(chan struct{})}
	c.inflight = call
	c.mu.Unlock()

	err := c.exec()

	c.mu.Lock()
	call.ok = err == nil
	if err != nil {
		c.exhausted = true
	}
	c.inflight = nil
	c.mu.Unlock()
	close(call.done)

	return call.ok
}

// Reset clears the exhausted latch. Login calls it on success; Logout calls
// it so a subsequent login is unobstructed.
func (c *refreshCoordinator) Reset() {
	c.mu.Lock()
	c.exhausted = false
	c.mu.Unlock()
}

// latch forces the exhausted state. teardownSession uses it to restore
// the suppression that Logout's Reset would otherwise erase.
func (c *refreshCoordinator) latch() {
	c.mu.Lock()
	c.exhausted = true
	c.mu.Unlock()
}

func (c *refreshCoordinator) Exhausted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exhausted
}
