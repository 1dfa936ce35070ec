package goSession

import (
	"io"
	"net/http"

	"github.com/MrEthical07/goSession/token"
)

// drainLimit caps how much of a discarded 401 body is read before closing,
// enough to let the connection be reused.
const drainLimit = 4 << 10

// authTransport decorates outgoing requests with the current bearer token.
// Pure decoration: no suspension, no state writes.
type authTransport struct {
	next  http.RoundTripper
	store *tokenStore
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok := t.store.Token()
	if tok == "" || skipAuthFromContext(req.Context()) {
		return t.next.RoundTrip(req)
	}

	// RoundTrippers must not mutate the caller's request.
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+tok)
	return t.next.RoundTrip(clone)
}

// guardTransport is the outermost link of the chain. It watches responses
// for authorization failures and decides between transparent recovery
// (refresh once, resubmit once) and session teardown.
type guardTransport struct {
	next http.RoundTripper // authTransport
	mgr  *Manager
}

func (g *guardTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := g.next.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	ctx := req.Context()
	switch {
	case retriedFromContext(ctx):
		// Already resubmitted once; never loop.
		return resp, nil
	case refreshCallFromContext(ctx), skipAuthFromContext(ctx):
		// The refresh call and public endpoints handle their own failures.
		return resp, nil
	case !token.ExpiredOrAbsent(g.mgr.store.Token()):
		// The server rejected a token that has not expired (revoked, wrong
		// audience). Refresh cannot fix that; surface the failure as-is.
		return resp, nil
	}

	if !g.mgr.coordinator.TryRefresh(ctx) {
		g.mgr.teardownSession(req)
		return resp, nil
	}

	retry, rerr := cloneForRetry(req)
	if rerr != nil || retry == nil {
		// Body cannot be replayed; the caller gets the original failure.
		return resp, nil
	}

	discard(resp)
	g.mgr.metricInc(MetricRequestRetried)
	return g.next.RoundTrip(retry)
}

// cloneForRetry prepares the one permitted resubmission. Returns nil when
// the request carried a body that cannot be rewound.
func cloneForRetry(req *http.Request) (*http.Request, error) {
	clone := req.Clone(withRetried(req.Context()))
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, nil
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}

func discard(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
	_ = resp.Body.Close()
}
