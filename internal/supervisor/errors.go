package supervisor

import "errors"

// ErrAlreadyRunning is returned by Run when a live supervisor already holds
// the pidfile.
var ErrAlreadyRunning = errors.New("supervisor already running")

// ErrNotRunning is returned by Stop when no pidfile is present.
var ErrNotRunning = errors.New("supervisor not running")
