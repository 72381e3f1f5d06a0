package store

import "errors"

var (
	// ErrDuplicateId is returned by Enqueue when the id already exists in
	// either the jobs or the dlq table.
	ErrDuplicateId = errors.New("duplicate job id")

	// ErrNotFound is returned by DlqRetry when no dlq row matches the id.
	ErrNotFound = errors.New("job not found")

	// ErrStorageError wraps an underlying storage failure that survived the
	// internal busy-retry budget.
	ErrStorageError = errors.New("storage error")
)
