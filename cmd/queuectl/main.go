// Command queuectl is the CLI collaborator spec.md's Control surface is
// built to be driven by: a thin github.com/kkpjssks/queuectl/internal/control
// binding to os.Args. It is deliberately not built on a flag-parsing
// framework (several examples in the retrieval pack carry cobra/viper for
// exactly this) since the CLI parser itself sits outside this system's
// scope; this entrypoint exists mainly so the state directory, Store, and
// worker subprocesses have something real to run against.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kkpjssks/queuectl/internal/control"
	"github.com/kkpjssks/queuectl/internal/store"
	"github.com/kkpjssks/queuectl/internal/supervisor"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: queuectl <enqueue|status|list|dlq|config|worker> ...")
		return 1
	}

	stateDir, err := resolveStateDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, "queuectl:", err)
		return 1
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "queuectl:", err)
		return 1
	}

	log := slog.Default()
	ctx := context.Background()

	// __worker is the hidden re-exec target the Supervisor spawns; it never
	// appears in --help and needs no Store handle of its own beyond what
	// runWorker opens.
	if args[0] == "__worker" {
		return runWorker(ctx, stateDir, args[1:], log)
	}

	// worker start/stop never touch the Store directly (start hands it to
	// the re-exec'd children; stop only signals a pid), so they're
	// dispatched before opening a Store handle.
	if args[0] == "worker" {
		return dispatchWorker(ctx, stateDir, args[1:], log)
	}

	st, err := store.Open(ctx, supervisor.DBPath(stateDir), log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "queuectl:", err)
		return 1
	}
	defer func() { _ = st.Close() }()

	surface := control.New(st, stateDir, log)
	return dispatch(ctx, surface, args)
}

// resolveStateDir honors QUEUECTL_STATE_DIR when set, matching the
// environment-override convention _examples/storacha-piri's CLI uses for
// its own --data-dir default, and otherwise falls back to
// ~/.queuectl (same home-directory-join shape as that example's
// filepath.Join(os.UserHomeDir(), ".storacha")).
func resolveStateDir() (string, error) {
	if dir := os.Getenv("QUEUECTL_STATE_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve state directory: %w", err)
	}
	return filepath.Join(home, ".queuectl"), nil
}
