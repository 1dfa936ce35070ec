package devserver

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when the refresh target session does not exist.
var ErrSessionNotFound = errors.New("refresh session not found")

// ErrSessionExpired is returned when the refresh target session is expired.
var ErrSessionExpired = errors.New("refresh session expired")

// ErrRefreshReuse is returned when a superseded refresh secret is presented;
// the session is destroyed as a containment measure.
var ErrRefreshReuse = errors.New("refresh credential reuse detected")

// ErrSessionCorrupt is returned when the stored session blob is invalid.
var ErrSessionCorrupt = errors.New("refresh session corrupt")

const (
	rotateStatusNotFound int64 = 0
	rotateStatusExpired  int64 = 1
	rotateStatusMismatch int64 = 2
	rotateStatusRotated  int64 = 3
	rotateStatusCorrupt  int64 = 4
)

// rotateScript swaps the stored secret hash for the next one if and only
// if the presented hash matches, preserving the session's remaining TTL.
// Any mismatch or decode failure deletes the session: a stale secret on
// the wire means either a replayed credential or a desynced client, and
// neither may keep the session alive.
const rotateScript = `
local data = redis.call("GET", KEYS[1])
if not data then
  return {0}
end

local ok, sess = pcall(cjson.decode, data)
if not ok or type(sess) ~= "table" or not sess.secret_hash then
  redis.call("DEL", KEYS[1])
  return {4}
end

if sess.secret_hash ~= ARGV[1] then
  redis.call("DEL", KEYS[1])
  return {2}
end

local ttl = redis.call("PTTL", KEYS[1])
if ttl <= 0 then
  redis.call("DEL", KEYS[1])
  return {1}
end

sess.secret_hash = ARGV[2]
redis.call("SET", KEYS[1], cjson.encode(sess), "PX", ttl)
return {3, data}
`

var rotateLua = redis.NewScript(rotateScript)

type sessionRecord struct {
	Username   string `json:"username"`
	Role       string `json:"role"`
	SecretHash string `json:"secret_hash"`
	CreatedAt  int64  `json:"created_at"`
}

// sessionStore keeps refresh sessions in Redis, keyed by session ID, with
// the secret stored only as a SHA-256 hash. Session lifetime is absolute:
// rotation preserves the remaining TTL.
type sessionStore struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func (s *sessionStore) key(id string) string {
	return s.prefix + ":sess:" + id
}

// Create mints a new session and returns its ID and plaintext secret. The
// secret exists only in the return value and in the cookie built from it.
func (s *sessionStore) Create(ctx context.Context, username, role string) (id, secret string, err error) {
	id = uuid.NewString()
	secret, hash, err := newSecret()
	if err != nil {
		return "", "", err
	}

	data, err := json.Marshal(sessionRecord{
		Username:   username,
		Role:       role,
		SecretHash: hash,
		CreatedAt:  time.Now().Unix(),
	})
	if err != nil {
		return "", "", err
	}

	if err := s.rdb.Set(ctx, s.key(id), data, s.ttl).Err(); err != nil {
		return "", "", fmt.Errorf("create session: %w", err)
	}
	return id, secret, nil
}

// Rotate atomically replaces the session's secret hash and returns the
// pre-rotation record. Mismatched or stale secrets destroy the session.
func (s *sessionStore) Rotate(ctx context.Context, id, providedHash, nextHash string) (*sessionRecord, error) {
	res, err := rotateLua.Run(ctx, s.rdb, []string{s.key(id)}, providedHash, nextHash).Result()
	if err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}

	reply, ok := res.([]interface{})
	if !ok || len(reply) == 0 {
		return nil, ErrSessionCorrupt
	}
	status, ok := reply[0].(int64)
	if !ok {
		return nil, ErrSessionCorrupt
	}

	switch status {
	case rotateStatusRotated:
		if len(reply) < 2 {
			return nil, ErrSessionCorrupt
		}
		raw, ok := reply[1].(string)
		if !ok {
			return nil, ErrSessionCorrupt
		}
		var record sessionRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, ErrSessionCorrupt
		}
		return &record, nil
	case rotateStatusNotFound:
		return nil, ErrSessionNotFound
	case rotateStatusExpired:
		return nil, ErrSessionExpired
	case rotateStatusMismatch:
		return nil, ErrRefreshReuse
	default:
		return nil, ErrSessionCorrupt
	}
}

func (s *sessionStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, s.key(id)).Err()
}

// newSecret returns a fresh 32-byte secret and its storable hash.
func newSecret() (secret, hash string, err error) {
	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", "", err
	}
	sum := sha256.Sum256(raw)
	return base64.RawURLEncoding.EncodeToString(raw), hex.EncodeToString(sum[:]), nil
}

// hashSecret maps a presented plaintext secret to its storable hash.
func hashSecret(secret string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(secret)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
