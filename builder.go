package goSession

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
)

// Builder assembles a [Manager]. Construction is allocation-only; no I/O
// happens until the first Manager method runs.
//
// Builder instances are single-use: Build succeeds once.
type Builder struct {
	config    Config
	transport http.RoundTripper
	jar       http.CookieJar
	navigator Navigator
	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL sets the server root all endpoint paths resolve against.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.Endpoints.BaseURL = strings.TrimSpace(baseURL)
	return b
}

// WithTransport sets the innermost RoundTripper the chain wraps. Defaults
// to [http.DefaultTransport].
func (b *Builder) WithTransport(rt http.RoundTripper) *Builder {
	b.transport = rt
	return b
}

// WithCookieJar sets the jar that carries the refresh credential cookie.
// A fresh in-memory jar is created when none is supplied.
func (b *Builder) WithCookieJar(jar http.CookieJar) *Builder {
	b.jar = jar
	return b
}

// WithNavigator registers the navigation side effect used on session
// teardown. Without one, teardown clears state and stops there.
func (b *Builder) WithNavigator(nav Navigator) *Builder {
	b.navigator = nav
	return b
}

// WithAuditSink enables auditing into the given sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires the Manager: token holder,
// refresh coordinator, and the guard→inject→base transport chain behind
// one cookie-jar-equipped HTTP client.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(strings.TrimSpace(cfg.Endpoints.BaseURL))
	if err != nil {
		return nil, err
	}

	jar := b.jar
	if jar == nil {
		jar, err = cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
	}

	base := b.transport
	if base == nil {
		base = http.DefaultTransport
	}

	m := &Manager{
		config:    cfg,
		baseURL:   baseURL,
		store:     &tokenStore{},
		navigator: b.navigator,
		audit:     newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:   NewMetrics(cfg.Metrics),
	}
	m.coordinator = &refreshCoordinator{
		exec:   m.doRefresh,
		metric: m.metricInc,
	}
	m.httpClient = &http.Client{
		Jar:     jar,
		Timeout: cfg.HTTP.Timeout,
		Transport: &guardTransport{
			mgr: m,
			next: &authTransport{
				next:  base,
				store: m.store,
			},
		},
	}

	b.built = true
	return m, nil
}
