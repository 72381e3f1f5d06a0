package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/kkpjssks/queuectl/internal/config"
	"github.com/kkpjssks/queuectl/internal/control"
	"github.com/kkpjssks/queuectl/internal/policy"
	"github.com/kkpjssks/queuectl/internal/stopflag"
	"github.com/kkpjssks/queuectl/internal/store"
	"github.com/kkpjssks/queuectl/internal/supervisor"
	"github.com/kkpjssks/queuectl/internal/worker"
)

// dispatchWorker handles `worker start [--count N]` and `worker stop`. Both
// are resolved before a Store handle is opened in run: start
// only hands the state directory to re-exec'd children, and stop only
// signals a pid.
func dispatchWorker(ctx context.Context, stateDir string, args []string, log *slog.Logger) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "queuectl: usage: worker <start|stop> ...")
		return 1
	}
	switch args[0] {
	case "start":
		count := 1
		if len(args) == 3 && args[1] == "--count" {
			n, err := strconv.Atoi(args[2])
			if err != nil || n < 1 {
				fmt.Fprintln(os.Stderr, "queuectl: --count must be a positive integer")
				return 2
			}
			count = n
		} else if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "queuectl: usage: worker start [--count N]")
			return 2
		}
		if err := supervisor.Run(ctx, supervisor.Config{StateDir: stateDir, WorkerCount: count, Log: log}); err != nil {
			fmt.Fprintln(os.Stderr, "queuectl:", err)
			return exitCodeFor(err)
		}
		return 0
	case "stop":
		s := control.New(nil, stateDir, log)
		if err := s.WorkerStop(); err != nil {
			fmt.Fprintln(os.Stderr, "queuectl:", err)
			return exitCodeFor(err)
		}
		fmt.Println("stop requested")
		return 0
	default:
		fmt.Fprintf(os.Stderr, "queuectl: unknown worker subcommand %q\n", args[0])
		return 1
	}
}

// runWorker is the hidden __worker re-exec target the Supervisor spawns
// one of per fleet member. It opens its own Store handle (the same SQLite
// file every worker and the Supervisor share) and runs a single serial
// claim/execute/decide loop until the shared stop flag is observed.
func runWorker(ctx context.Context, stateDir string, args []string, log *slog.Logger) int {
	tag := 0
	for i := 0; i+1 < len(args); i += 2 {
		switch args[i] {
		case "--index":
			if n, err := strconv.Atoi(args[i+1]); err == nil {
				tag = n
			}
		case "--state-dir":
			stateDir = args[i+1]
		}
	}

	st, err := store.Open(ctx, supervisor.DBPath(stateDir), log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "queuectl worker:", err)
		return 1
	}
	defer func() { _ = st.Close() }()

	cfg, err := config.Load(supervisor.ConfigPath(stateDir))
	if err != nil {
		fmt.Fprintln(os.Stderr, "queuectl worker:", err)
		return 1
	}

	flag := stopflag.New(supervisor.StopFlagPath(stateDir))
	w := worker.New(st, flag, tag, policy.Config{MaxRetries: cfg.MaxRetries, BackoffBase: cfg.BackoffBase}, log)
	w.Run(ctx)
	return 0
}
