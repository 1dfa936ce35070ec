package goSession

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Manager owns the session state for one server: the bearer token, the
// authenticated principal, the refresh coordination, and the transport
// chain that keeps arbitrary requests authenticated.
//
// Manager instances are built once through [Builder.Build], shared freely
// between goroutines, and torn down with [Manager.Close].
type Manager struct {
	config      Config
	baseURL     *url.URL
	store       *tokenStore
	coordinator *refreshCoordinator
	httpClient  *http.Client
	navigator   Navigator
	audit       *auditDispatcher
	metrics     *Metrics
}

// Close drains the audit dispatcher. It does not touch session state on
// the server; call Logout first when the session should be revoked.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	if m.audit != nil {
		m.audit.Close()
	}
}

// Client returns the HTTP client whose transport chain injects the bearer
// header and recovers from authorization failures. All application traffic
// to the server should go through it; its cookie jar is where the refresh
// credential lives.
func (m *Manager) Client() *http.Client {
	if m == nil {
		return nil
	}
	return m.httpClient
}

// Token returns the current bearer token, or "" when unauthenticated.
func (m *Manager) Token() string {
	if m == nil {
		return ""
	}
	return m.store.Token()
}

// CurrentPrincipal returns a copy of the authenticated principal, or nil.
func (m *Manager) CurrentPrincipal() *Principal {
	if m == nil {
		return nil
	}
	return m.store.Principal()
}

// Authenticated reports whether a login has succeeded and no logout or
// irrecoverable refresh failure has happened since.
func (m *Manager) Authenticated() bool {
	return m.CurrentPrincipal() != nil
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return m.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (m *Manager) AuditDropped() uint64 {
	if m == nil || m.audit == nil {
		return 0
	}
	return m.audit.Dropped()
}

func (m *Manager) metricInc(id MetricID) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Inc(id)
}

func (m *Manager) emitAudit(ctx context.Context, eventType, username string, success bool, err error) {
	if m == nil || m.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		Username:  username,
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	m.audit.Emit(ctx, event)
}

// teardownSession is the terminal fallback after an irrecoverable refresh
// failure: revoke the server-held credential when a principal is still
// set, clear local state either way, then hand control to the Navigator.
func (m *Manager) teardownSession(req *http.Request) {
	m.metricInc(MetricForcedLogout)

	var username string
	if p := m.store.Principal(); p != nil {
		username = p.Username

		ctx, cancel := context.WithTimeout(context.Background(), m.config.Refresh.LogoutTimeout)
		_ = m.Logout(ctx)
		cancel()
		// Logout clears the latch for the benefit of user-initiated
		// logouts; here the suppression must survive until the next login.
		m.coordinator.latch()
	} else {
		m.store.ClearToken()
		m.store.ClearPrincipal()
	}

	m.emitAudit(req.Context(), "forced_logout", username, false, ErrRefreshExhausted)

	if m.navigator == nil {
		return
	}
	current := m.navigator.CurrentPath()
	if current == m.config.Navigation.LoginView {
		return
	}
	m.navigator.NavigateToLogin(current)
}
