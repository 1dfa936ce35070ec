package goSession

import "errors"

var (
	// ErrInvalidCredentials is returned by Login when the server rejects the
	// supplied username/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRefreshExhausted signals that a refresh attempt failed and the
	// exhausted latch is set; only a successful Login clears it.
	ErrRefreshExhausted = errors.New("refresh exhausted until next login")
	// ErrSetupComplete is returned by SetupAdmin once an administrator
	// account already exists.
	ErrSetupComplete = errors.New("setup already complete")
	// ErrManagerNotReady is returned when a nil or unbuilt Manager is used.
	ErrManagerNotReady = errors.New("manager not initialized")
	// ErrServerStatus wraps unexpected non-2xx responses from the session
	// endpoints.
	ErrServerStatus = errors.New("unexpected server status")
	// ErrBuilderUsed is returned when Build is called twice on one Builder.
	ErrBuilderUsed = errors.New("builder already used")
)
