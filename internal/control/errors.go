package control

import "errors"

// ErrInvalidInput is returned when a caller-supplied value fails validation
// before it ever reaches the store (spec.md §7's InvalidInput case).
var ErrInvalidInput = errors.New("invalid input")
