package job

import "time"

// Job represents a queued command and its delivery state, as durably
// tracked by the store package.
//
// Id is a stable string identifier: caller-supplied at enqueue time, or a
// generated token when absent. Command is an opaque string passed verbatim
// to the executor package.
//
// CreatedAt records when the job was first enqueued. UpdatedAt records the
// last state transition.
//
// Attempts is incremented after every failed execution attempt (by
// reschedule or give-up); a successful run leaves it unchanged. It is
// monotonically non-decreasing for the lifetime of a job id in the jobs
// table (invariant 4).
//
// RunAt is the earliest wall-clock time at which the job is eligible to be
// claimed (invariant 3).
//
// Job values are snapshots; mutating them does not change stored state.
// Transitions happen only through store.Store methods.
type Job struct {
	Id      string
	Command string

	Status Status

	Attempts int

	RunAt     time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DLQEntry represents a job whose retry budget has been exhausted and that
// has been moved out of the jobs table into the dead letter queue.
//
// A job id appears in at most one of jobs or dlq at any moment
// (invariant 1 and the dlq exclusivity property).
type DLQEntry struct {
	Id       string
	Command  string
	Attempts int

	FailedAt  time.Time
	LastError string
}
