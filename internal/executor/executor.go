// Package executor runs one job's command as a child process and
// classifies the result.
//
// Grounded on the goroutine-plus-error-channel shape of
// github.com/romanqed/gqs's Worker.handleOrExtend/do, but collapsed to a
// direct blocking call: the teacher's version races a handler goroutine
// against a lease-extension ticker, which this domain has no use for since
// there is no per-job visibility timeout to extend (spec.md §4.3 — the
// executor is synchronous from the worker's perspective).
package executor

import (
	"context"
	"io"
	"os"
	"os/exec"
)

// Outcome classifies how a command's execution ended.
type Outcome struct {
	Success bool
	// Reason is a short diagnostic string, set only when Success is false.
	Reason string
}

// Stdio names the three streams a child command inherits. The executor
// never captures them (spec.md's non-goals exclude persisting job
// stdout/stderr); InheritStdio wires up the calling process's own streams,
// which is what every real invocation uses, while tests can substitute
// buffers or /dev/null equivalents.
type Stdio struct {
	Stdin          io.Reader
	Stdout, Stderr io.Writer
}

// InheritStdio returns a Stdio that passes through the current process's
// standard streams, so child commands behave like any other foreground
// process the worker might have run directly.
func InheritStdio() Stdio {
	return Stdio{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Execute runs command through the platform shell, inheriting the calling
// process's stdio (the executor never captures stdout/stderr, per
// spec.md's non-goals). Success iff the child exits with status 0; any
// non-zero exit, spawn error, or signal termination yields Failure with a
// short diagnostic.
func Execute(ctx context.Context, command string, stdio Stdio) Outcome {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdin = stdio.Stdin
	cmd.Stdout = stdio.Stdout
	cmd.Stderr = stdio.Stderr

	if err := cmd.Run(); err != nil {
		return Outcome{Success: false, Reason: err.Error()}
	}
	return Outcome{Success: true}
}
