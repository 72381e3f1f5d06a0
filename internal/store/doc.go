// Package store provides the durable, transactional job queue backing
// queuectl: a single SQLite file holding a jobs table and a dlq table,
// accessed through github.com/uptrace/bun over the cgo-free
// modernc.org/sqlite driver.
//
// # Overview
//
// Store is the sole correctness mechanism preventing two workers from
// claiming the same job: FetchAndClaim performs selection and the
// pending/failed -> processing transition as one UPDATE ... WHERE id IN
// (subquery) ... RETURNING statement, so the write lock is acquired before
// the row is known, not after (a locking read-modify-write, not an
// optimistic compare-and-set).
//
// # Schema
//
// Store expects two tables, created by InitDB:
//
//   - jobs: one row per job not yet given up on, indexed by
//     (status, run_at) and (status, updated_at).
//   - dlq:  one row per job whose retry budget is exhausted, indexed by
//     failed_at.
//
// A job id exists in at most one of the two tables at any moment.
//
// # Concurrency
//
// SQLite is opened in WAL mode with a busy_timeout and a single connection
// (SetMaxOpenConns(1)); transient SQLITE_BUSY-class errors are additionally
// retried internally with a bounded exponential backoff
// (github.com/cenkalti/backoff/v5) before surfacing as ErrStorageError.
//
// # Storage Expectations
//
// Store does not manage connection pooling beyond opening a single
// *bun.DB; Open calls InitDB itself, so schema creation never needs a
// separate bootstrap step.
package store
