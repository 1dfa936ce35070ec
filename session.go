package goSession

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
	Role        string `json:"role"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

type setupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type statusResponse struct {
	AuthSetupComplete bool `json:"auth_setup_complete"`
}

// Login exchanges credentials for a bearer token and principal. On success
// the exhausted latch is cleared, so refreshes are re-enabled no matter
// what happened to the previous session. Server rejections surface as
// [ErrInvalidCredentials].
func (m *Manager) Login(ctx context.Context, username, password string) (*Principal, error) {
	if m == nil {
		return nil, ErrManagerNotReady
	}

	var out loginResponse
	status, err := m.roundTripJSON(WithSkipAuth(ctx), http.MethodPost, m.config.Endpoints.LoginPath,
		loginRequest{Username: username, Password: password}, &out)
	if err != nil {
		if status == http.StatusUnauthorized || status == http.StatusBadRequest {
			err = ErrInvalidCredentials
		}
		m.metricInc(MetricLoginFailure)
		m.emitAudit(ctx, "login", username, false, err)
		return nil, err
	}
	if out.AccessToken == "" {
		m.metricInc(MetricLoginFailure)
		return nil, fmt.Errorf("%w: login response carried no token", ErrServerStatus)
	}

	principal := Principal{Username: out.Username, Role: out.Role}
	m.store.SetToken(out.AccessToken)
	m.store.SetPrincipal(principal)
	m.coordinator.Reset()

	m.metricInc(MetricLoginSuccess)
	m.emitAudit(ctx, "login", out.Username, true, nil)

	return &principal, nil
}

// Logout revokes the server-held refresh credential and clears local
// state. The local clear and latch reset are deferred, so a network
// failure during the revocation call can never leave stale credentials
// behind; the error is still returned for the caller to report.
func (m *Manager) Logout(ctx context.Context) error {
	if m == nil {
		return ErrManagerNotReady
	}

	var username string
	if p := m.store.Principal(); p != nil {
		username = p.Username
	}

	var err error
	defer func() {
		m.store.ClearToken()
		m.store.ClearPrincipal()
		m.coordinator.Reset()
		m.metricInc(MetricLogout)
		m.emitAudit(ctx, "logout", username, err == nil, err)
	}()

	_, err = m.roundTripJSON(WithSkipAuth(ctx), http.MethodPost, m.config.Endpoints.LogoutPath,
		struct{}{}, nil)
	return err
}

// SetupAdmin performs the one-shot administrator bootstrap. It has no
// token side effect; call Login afterwards. Returns [ErrSetupComplete]
// once an administrator exists.
func (m *Manager) SetupAdmin(ctx context.Context, username, password string) error {
	if m == nil {
		return ErrManagerNotReady
	}

	status, err := m.roundTripJSON(WithSkipAuth(ctx), http.MethodPost, m.config.Endpoints.SetupPath,
		setupRequest{Username: username, Password: password}, nil)
	if err != nil {
		if status == http.StatusConflict {
			err = ErrSetupComplete
		}
		m.emitAudit(ctx, "setup", username, false, err)
		return err
	}

	m.metricInc(MetricSetupCompleted)
	m.emitAudit(ctx, "setup", username, true, nil)
	return nil
}

// Status fetches whether the server already has an administrator account.
func (m *Manager) Status(ctx context.Context) (SetupStatus, error) {
	if m == nil {
		return SetupStatus{}, ErrManagerNotReady
	}

	var out statusResponse
	if _, err := m.roundTripJSON(WithSkipAuth(ctx), http.MethodGet, m.config.Endpoints.StatusPath,
		nil, &out); err != nil {
		return SetupStatus{}, err
	}
	return SetupStatus{SetupComplete: out.AuthSetupComplete}, nil
}

// doRefresh is the coordinator's exec step: one POST against the refresh
// endpoint on a bounded background context. The refresh credential rides
// in the cookie jar; application code never sees it. On failure the token
// is cleared so subsequent requests fail fast instead of resending a dead
// credential.
func (m *Manager) doRefresh() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.config.Refresh.Timeout)
	defer cancel()
	ctx = withRefreshCall(WithSkipAuth(ctx))

	var out refreshResponse
	_, err := m.roundTripJSON(ctx, http.MethodPost, m.config.Endpoints.RefreshPath, struct{}{}, &out)
	if err == nil && out.AccessToken == "" {
		err = fmt.Errorf("%w: refresh response carried no token", ErrServerStatus)
	}
	if err != nil {
		m.store.ClearToken()
		m.metricInc(MetricRefreshFailure)
		m.emitAudit(ctx, "refresh", "", false, err)
		return err
	}

	m.store.SetToken(out.AccessToken)
	m.metricInc(MetricRefreshSuccess)
	m.emitAudit(ctx, "refresh", "", true, nil)
	return nil
}

// roundTripJSON issues one JSON request against a session endpoint and
// decodes a 2xx response into out. Non-2xx statuses come back as the
// status code plus a wrapped [ErrServerStatus].
func (m *Manager) roundTripJSON(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.endpointURL(path), body)
	if err != nil {
		return 0, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer discard(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("%w: %s returned %d", ErrServerStatus, path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return resp.StatusCode, fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

func (m *Manager) endpointURL(path string) string {
	u := *m.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	return u.String()
}
