// Package worker implements the long-lived claim/execute/decide loop that
// runs inside each worker OS process.
//
// Grounded on the Start/pull/handle trio of github.com/romanqed/gqs's
// Worker, but collapsed from "periodically pull a batch, dispatch each job
// to a goroutine in a bounded worker pool" down to one synchronous loop:
// spec.md §5 requires that within a single Worker the control flow is
// straight-line blocking and a Worker never runs two jobs concurrently.
// The teacher's internal.WorkerPool existed to fan a single process's
// pulls out across goroutines; there is nothing to fan out to here, since
// concurrency in this system lives between OS processes, not within one.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/kkpjssks/queuectl/internal/executor"
	"github.com/kkpjssks/queuectl/internal/policy"
	"github.com/kkpjssks/queuectl/internal/store"
	"github.com/kkpjssks/queuectl/internal/stopflag"
)

// PollInterval is the fixed sleep between empty claim attempts, and the
// granularity at which the stop flag is observed (spec.md §4.4).
const PollInterval = 1 * time.Second

// Worker repeatedly claims and executes jobs until the shared stop flag is
// observed at a loop boundary. It never shares in-process state with
// other workers; coordination happens only through st and flag.
type Worker struct {
	st     *store.Store
	flag   *stopflag.Flag
	tag    int
	pol    policy.Config
	log    *slog.Logger
	stdio  executor.Stdio
	poll   time.Duration
	execFn func(context.Context, string, executor.Stdio) executor.Outcome
}

// New constructs a Worker identified by tag (used only for log
// prefixing — the tag is never persisted).
func New(st *store.Store, flag *stopflag.Flag, tag int, pol policy.Config, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		st:     st,
		flag:   flag,
		tag:    tag,
		pol:    pol,
		log:    log.With("component", "worker", "tag", tag),
		stdio:  executor.InheritStdio(),
		poll:   PollInterval,
		execFn: executor.Execute,
	}
}

// Run blocks, executing the state machine from spec.md §4.4, until the
// stop flag is observed at a loop boundary (i.e. after any in-progress job
// finishes — there is no mid-execution abort).
func (w *Worker) Run(ctx context.Context) {
	for {
		if w.flag.IsSet() {
			w.log.Info("stop flag observed, exiting")
			return
		}

		jb, err := w.st.FetchAndClaim(ctx, w.tag)
		if err != nil {
			w.log.Error("fetch_and_claim failed, exiting", "err", err)
			return
		}
		if jb == nil {
			w.sleep(ctx)
			continue
		}

		w.log.Info("executing job", "id", jb.Id, "command", jb.Command, "attempt", jb.Attempts+1)
		outcome := w.safeExecute(ctx, jb.Command)
		w.settle(ctx, jb.Id, jb.Attempts, outcome)
	}
}

// safeExecute guards the executor call with a panic recovery so that a
// single job's misbehavior can never strand it in processing or bring
// down the worker process (spec.md §4.4's failure semantics).
func (w *Worker) safeExecute(ctx context.Context, command string) (outcome executor.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("panic while executing job, treating as failure", "recovered", r)
			outcome = executor.Outcome{Success: false, Reason: "panic during execution"}
		}
	}()
	return w.execFn(ctx, command, w.stdio)
}

func (w *Worker) settle(ctx context.Context, id string, priorAttempts int, outcome executor.Outcome) {
	if outcome.Success {
		if err := w.st.Complete(ctx, id); err != nil {
			w.log.Error("cannot complete job", "id", id, "err", err)
		}
		return
	}

	attemptsAfter := priorAttempts + 1
	delay, giveUp := policy.Decide(attemptsAfter, w.pol.MaxRetries, w.pol.BackoffBase)
	if giveUp {
		if err := w.st.GiveUp(ctx, id, outcome.Reason); err != nil {
			w.log.Error("cannot move job to dlq", "id", id, "err", err)
		}
		return
	}
	if err := w.st.Reschedule(ctx, id, delay); err != nil {
		w.log.Error("cannot reschedule job", "id", id, "err", err)
	}
}

func (w *Worker) sleep(ctx context.Context) {
	timer := time.NewTimer(w.poll)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
