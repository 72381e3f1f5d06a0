// Package job defines the stateful representation of a queued command
// within queuectl's job lifecycle.
//
// A Job carries an opaque shell command plus delivery and scheduling
// metadata: its current Status, how many times it has been attempted, and
// the earliest time at which it may next be claimed.
//
// Job values are snapshots returned by the store package's operations.
// Mutating a returned Job does not affect the underlying row; transitions
// happen only through store.Store methods.
package job
