// Package stopflag implements the cross-process stop signal described in
// spec.md's design notes: a filesystem sentinel, polled by Workers
// alongside their POLL_INTERVAL sleep, set by the Supervisor's signal
// handler.
//
// A real shared-memory latch would need a platform-specific extension
// (cgo, mmap); a file sentinel needs nothing beyond os.Stat/os.Create and
// is directly observable by Worker subprocesses spawned with no other
// pre-established IPC channel, at the cost of at most one extra stat(2)
// per poll tick. Design notes §9 calls this out explicitly as an
// acceptable implementation choice.
package stopflag

import (
	"errors"
	"os"
)

// Flag is a handle to the sentinel file at path. The zero value is not
// usable; construct with New.
type Flag struct {
	path string
}

// New returns a Flag backed by the sentinel file at path. The file is not
// created until Set is called.
func New(path string) *Flag {
	return &Flag{path: path}
}

// Set raises the flag, creating the sentinel file if absent. Idempotent.
func (f *Flag) Set() error {
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return file.Close()
}

// Clear lowers the flag, removing the sentinel file. Idempotent: a
// missing file is not an error.
func (f *Flag) Clear() error {
	err := os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// IsSet reports whether the sentinel file currently exists.
func (f *Flag) IsSet() bool {
	_, err := os.Stat(f.path)
	return err == nil
}
