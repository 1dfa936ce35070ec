package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds the server tunables. SigningKey has no default and must be
// at least 32 bytes.
type Config struct {
	AccessTTL   time.Duration
	SessionTTL  time.Duration
	SigningKey  []byte
	Issuer      string
	CookieName  string
	CookiePath  string
	RedisPrefix string
}

// DefaultConfig returns development defaults for everything but SigningKey.
func DefaultConfig() Config {
	return Config{
		AccessTTL:   15 * time.Minute,
		SessionTTL:  7 * 24 * time.Hour,
		Issuer:      "gosession-dev",
		CookieName:  "refresh_token",
		CookiePath:  "/auth",
		RedisPrefix: "gsdev",
	}
}

// Server implements the session wire contract plus a guarded API surface.
type Server struct {
	cfg      Config
	users    *userRegistry
	sessions *sessionStore
	issuer   *issuer
	mux      *http.ServeMux
}

// New validates cfg and assembles a Server backed by the given Redis
// client. Construction performs no I/O.
func New(cfg Config, rdb redis.UniversalClient) (*Server, error) {
	if len(cfg.SigningKey) < 32 {
		return nil, errors.New("signing key must be at least 32 bytes")
	}
	if cfg.AccessTTL == 0 || cfg.SessionTTL <= 0 {
		return nil, errors.New("access and session TTLs required")
	}
	if cfg.CookieName == "" || !strings.HasPrefix(cfg.CookiePath, "/") {
		return nil, errors.New("cookie name and absolute cookie path required")
	}
	if cfg.RedisPrefix == "" {
		return nil, errors.New("redis prefix required")
	}
	if rdb == nil {
		return nil, errors.New("redis client required")
	}

	s := &Server{
		cfg:   cfg,
		users: newUserRegistry(),
		sessions: &sessionStore{
			rdb:    rdb,
			prefix: cfg.RedisPrefix,
			ttl:    cfg.SessionTTL,
		},
		issuer: &issuer{
			key:  cfg.SigningKey,
			ttl:  cfg.AccessTTL,
			name: cfg.Issuer,
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/refresh", s.handleRefresh)
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
	mux.HandleFunc("POST /auth/setup", s.handleSetup)
	mux.HandleFunc("GET /auth/status", s.handleStatus)
	mux.Handle("GET /api/me", s.Guard(http.HandlerFunc(s.handleMe)))
	s.mux = mux

	return s, nil
}

// Handler returns the root handler with all routes registered.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Seed inserts an account directly, bypassing the setup flow.
func (s *Server) Seed(username, password, role string) error {
	return s.users.Seed(username, password, role)
}

type credentialsBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	rec, ok := s.users.Authenticate(body.Username, body.Password)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	id, secret, err := s.sessions.Create(r.Context(), rec.Username, rec.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session creation failed")
		return
	}

	access, err := s.issuer.Mint(rec.Username, rec.Role, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token issuance failed")
		return
	}

	s.setRefreshCookie(w, id, secret)
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": access,
		"username":     rec.Username,
		"role":         rec.Role,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	id, secret, ok := s.refreshCredential(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing refresh credential")
		return
	}

	providedHash, err := hashSecret(secret)
	if err != nil {
		s.clearRefreshCookie(w)
		writeError(w, http.StatusUnauthorized, "malformed refresh credential")
		return
	}

	nextSecret, nextHash, err := newSecret()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "secret generation failed")
		return
	}

	record, err := s.sessions.Rotate(r.Context(), id, providedHash, nextHash)
	if err != nil {
		switch {
		case errors.Is(err, ErrRefreshReuse),
			errors.Is(err, ErrSessionNotFound),
			errors.Is(err, ErrSessionExpired),
			errors.Is(err, ErrSessionCorrupt):
			s.clearRefreshCookie(w)
			writeError(w, http.StatusUnauthorized, "refresh rejected")
		default:
			writeError(w, http.StatusInternalServerError, "session backend unavailable")
		}
		return
	}

	access, err := s.issuer.Mint(record.Username, record.Role, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token issuance failed")
		return
	}

	s.setRefreshCookie(w, id, nextSecret)
	writeJSON(w, http.StatusOK, map[string]string{"access_token": access})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if id, _, ok := s.refreshCredential(r); ok {
		_ = s.sessions.Delete(r.Context(), id)
	}
	s.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := s.users.Setup(body.Username, body.Password); err != nil {
		if errors.Is(err, ErrSetupComplete) {
			writeError(w, http.StatusConflict, "setup already complete")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"auth_setup_complete": s.users.SetupComplete(),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"username": claims.Username,
		"role":     claims.Role,
	})
}

// refreshCredential splits the cookie into session ID and secret.
func (s *Server) refreshCredential(r *http.Request) (id, secret string, ok bool) {
	cookie, err := r.Cookie(s.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return "", "", false
	}

	idx := strings.LastIndexByte(cookie.Value, '.')
	if idx <= 0 || idx == len(cookie.Value)-1 {
		return "", "", false
	}
	return cookie.Value[:idx], cookie.Value[idx+1:], true
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, id, secret string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    id + "." + secret,
		Path:     s.cfg.CookiePath,
		MaxAge:   int(s.cfg.SessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     s.cfg.CookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
