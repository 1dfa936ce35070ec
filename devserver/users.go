package devserver

import (
	"errors"
	"strings"
	"sync"
)

// ErrSetupComplete is returned by Setup once an administrator exists.
var ErrSetupComplete = errors.New("setup already complete")

// ErrUserExists is returned by Seed for a duplicate username.
var ErrUserExists = errors.New("user already exists")

type userRecord struct {
	Username     string
	Role         string
	passwordHash string
}

// userRegistry is the in-memory account table. A real deployment would
// back this with a database; the wire contract does not care.
type userRegistry struct {
	mu            sync.RWMutex
	users         map[string]userRecord
	setupComplete bool
}

func newUserRegistry() *userRegistry {
	return &userRegistry{
		users: make(map[string]userRecord),
	}
}

// Setup creates the one-shot administrator account.
func (r *userRegistry) Setup(username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username required")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setupComplete {
		return ErrSetupComplete
	}
	if _, exists := r.users[username]; exists {
		return ErrUserExists
	}

	r.users[username] = userRecord{
		Username:     username,
		Role:         "admin",
		passwordHash: hash,
	}
	r.setupComplete = true
	return nil
}

// Seed inserts an account directly, for tests and demos.
func (r *userRegistry) Seed(username, password, role string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username required")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[username]; exists {
		return ErrUserExists
	}

	r.users[username] = userRecord{
		Username:     username,
		Role:         role,
		passwordHash: hash,
	}
	r.setupComplete = true
	return nil
}

func (r *userRegistry) Authenticate(username, password string) (userRecord, bool) {
	r.mu.RLock()
	rec, exists := r.users[username]
	r.mu.RUnlock()
	if !exists {
		return userRecord{}, false
	}

	ok, err := verifyPassword(password, rec.passwordHash)
	if err != nil || !ok {
		return userRecord{}, false
	}
	return rec, true
}

func (r *userRegistry) SetupComplete() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.setupComplete
}
