package goSession

// Principal identifies the authenticated user. It is set only by a
// successful Login and cleared only by Logout or an irrecoverable refresh
// failure.
type Principal struct {
	Username string
	Role     string
}

// SetupStatus reports whether the server already has an administrator
// account. It is read-only to this package.
type SetupStatus struct {
	SetupComplete bool
}

// Navigator is the navigation side effect the Manager invokes when a
// session is irrecoverably lost. The embedding application registers its
// router here; the Manager never builds URLs itself.
//
// NavigateToLogin receives the path the user was on when the session died
// so the application can return there after re-authentication.
type Navigator interface {
	CurrentPath() string
	NavigateToLogin(returnTo string)
}
