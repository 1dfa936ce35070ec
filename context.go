package goSession

import "context"

type skipAuthContextKey struct{}
type retriedContextKey struct{}
type refreshCallContextKey struct{}

// WithSkipAuth marks the request built from ctx as public: no bearer header
// is injected and an authorization failure on it never triggers a refresh.
// The Manager applies this marker to its own login, refresh, logout, setup,
// and status calls.
func WithSkipAuth(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipAuthContextKey{}, true)
}

func skipAuthFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}

	skip, _ := ctx.Value(skipAuthContextKey{}).(bool)
	return skip
}

// withRetried marks a request as already resubmitted once after a refresh,
// so a second 401 on it can never loop back into the refresh path.
func withRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedContextKey{}, true)
}

func retriedFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}

	retried, _ := ctx.Value(retriedContextKey{}).(bool)
	return retried
}

// withRefreshCall marks the refresh request itself, so its own failure can
// never recursively enter the refresh path.
func withRefreshCall(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshCallContextKey{}, true)
}

func refreshCallFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}

	refresh, _ := ctx.Value(refreshCallContextKey{}).(bool)
	return refresh
}
