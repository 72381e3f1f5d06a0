// Package supervisor owns the worker fleet's lifecycle: acquiring the
// pidfile, spawning worker OS processes, watching for SIGINT/SIGTERM, and
// joining everything back together on shutdown.
//
// There is no teacher analogue — github.com/romanqed/gqs is a library with
// no process-management layer of its own — so this package is new code,
// grounded on dependencies the rest of the retrieval pack carries for
// exactly this purpose: process liveness via
// github.com/shirou/gopsutil/v4/process, directly used by
// _examples/storacha-piri's own host metrics collector; pidfile locking via
// github.com/gofrs/flock, a transitive dependency of
// _examples/storacha-piri's go.mod with no direct usage there, adopted here
// on its own merits as the standard library for exclusive file locks; and
// the fleet join via golang.org/x/sync/errgroup, which
// _examples/storacha-piri uses directly for its own goroutine supervision
// (_examples/rezkam-mono's go.mod also carries golang.org/x/sync, but only
// as an indirect dependency). The worker fleet's join uses the sibling
// internal package's DoneChan, a minimal adaptation of the teacher's own
// lc_base.go done-channel idiom to this package's single signal: "every
// spawned worker has exited."
package supervisor
