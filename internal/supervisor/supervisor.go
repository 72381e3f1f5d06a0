package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"

	"golang.org/x/sync/errgroup"

	internalpkg "github.com/kkpjssks/queuectl/internal"
	"github.com/kkpjssks/queuectl/internal/stopflag"
)

// Config describes one worker fleet to supervise.
type Config struct {
	StateDir    string
	WorkerCount int
	Log         *slog.Logger

	// spawn starts one fleet member and blocks until it exits. It defaults
	// to spawnWorker's re-exec of the current binary as __worker; tests
	// substitute an in-process goroutine standing in for a real OS process
	// (spec.md's worker state machine run directly against a shared Store).
	spawn func(context.Context, Config, int) error
}

// Run acquires the pidfile, spawns cfg.WorkerCount worker subprocesses, and
// blocks until every worker has exited — usually because a SIGINT/SIGTERM
// (or a `worker stop`) set the stop flag, but also if a worker exits on its
// own (e.g. an unrecoverable Store error); joining the fleet is the sole
// exit condition, not a signal. It is meant to be called from the
// foreground `worker start` CLI invocation.
func Run(ctx context.Context, cfg Config) error {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "supervisor")

	fl, err := acquirePidfile(PidPath(cfg.StateDir))
	if err != nil {
		return err
	}
	defer func() {
		_ = fl.Unlock()
		_ = os.Remove(PidPath(cfg.StateDir))
	}()
	if err := writePid(PidPath(cfg.StateDir), os.Getpid()); err != nil {
		return fmt.Errorf("write pidfile: %w", err)
	}

	flag := stopflag.New(StopFlagPath(cfg.StateDir))
	if err := flag.Clear(); err != nil {
		return fmt.Errorf("clear stop flag: %w", err)
	}
	defer func() { _ = flag.Clear() }()

	// watchCtx bounds the signal-watcher goroutine's lifetime to this call:
	// it is cancelled once every worker has joined, so the goroutine never
	// outlives Run even when no SIGINT/SIGTERM ever arrives.
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var stopping atomic.Bool
	go func() {
		select {
		case sig := <-sigCh:
			if stopping.CompareAndSwap(false, true) {
				log.Info("signal received, requesting stop", "signal", sig.String())
				if err := flag.Set(); err != nil {
					log.Error("cannot set stop flag", "err", err)
				}
			}
		case <-watchCtx.Done():
		}
	}()

	spawn := cfg.spawn
	if spawn == nil {
		spawn = spawnWorker
	}
	var g errgroup.Group
	for i := 0; i < cfg.WorkerCount; i++ {
		i := i
		g.Go(func() error {
			if err := spawn(ctx, cfg, i); err != nil {
				log.Error("worker exited", "index", i, "err", err)
			}
			return nil
		})
	}
	workersDone := make(internalpkg.DoneChan)
	go func() {
		_ = g.Wait()
		close(workersDone)
	}()

	// Joining is the sole exit condition (spec.md §4.5 point 4): a signal is
	// what usually drives workers to stop, but a Worker may also exit on its
	// own (e.g. an unrecoverable Store error), and Run must still return
	// once every worker has joined rather than waiting on a signal that may
	// never come.
	<-workersDone
	return nil
}

// spawnWorker re-execs the current binary as a hidden __worker subcommand,
// handing it the same state directory so it can open the shared store,
// config, and stop flag. It blocks until the child process exits.
func spawnWorker(ctx context.Context, cfg Config, index int) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	cmd := exec.CommandContext(ctx, exe, "__worker", "--state-dir", cfg.StateDir, "--index", strconv.Itoa(index))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Stop reads the pidfile under stateDir and sends SIGTERM to the running
// supervisor, returning immediately without waiting for it to exit.
func Stop(stateDir string) error {
	pid, err := readPid(PidPath(stateDir))
	if err != nil {
		return fmt.Errorf("%w", ErrNotRunning)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal process %d: %w", pid, err)
	}
	return nil
}
