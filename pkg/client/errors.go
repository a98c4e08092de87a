package client

import "errors"

var (
	// ErrDaemonNotRunning means the control socket does not exist.
	ErrDaemonNotRunning = errors.New("daemon not running")

	// ErrPermissionDenied means the control socket is not accessible to
	// this user.
	ErrPermissionDenied = errors.New("permission denied")
)
