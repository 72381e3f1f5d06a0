package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/kkpjssks/queuectl/internal/control"
	"github.com/kkpjssks/queuectl/internal/store"
	"github.com/kkpjssks/queuectl/internal/supervisor"
	"github.com/kkpjssks/queuectl/job"
)

// dispatch routes every CLI verb except worker/__worker (handled in
// worker_cmd.go before a Store handle is even opened).
func dispatch(ctx context.Context, s *control.Surface, args []string) int {
	var err error
	switch args[0] {
	case "enqueue":
		err = cmdEnqueue(ctx, s, args[1:])
	case "status":
		err = cmdStatus(ctx, s)
	case "list":
		err = cmdList(ctx, s, args[1:])
	case "dlq":
		err = cmdDlq(ctx, s, args[1:])
	case "config":
		err = cmdConfig(s, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "queuectl: unknown command %q\n", args[0])
		return 1
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "queuectl:", err)
		return exitCodeFor(err)
	}
	return 0
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, control.ErrInvalidInput):
		return 2
	case errors.Is(err, store.ErrDuplicateId):
		return 3
	case errors.Is(err, store.ErrNotFound):
		return 4
	case errors.Is(err, supervisor.ErrAlreadyRunning):
		return 5
	case errors.Is(err, supervisor.ErrNotRunning):
		return 6
	case errors.Is(err, store.ErrStorageError):
		return 7
	default:
		return 1
	}
}

func cmdEnqueue(ctx context.Context, s *control.Surface, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: enqueue <json>", control.ErrInvalidInput)
	}
	id, err := s.Enqueue(ctx, []byte(args[0]))
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func cmdStatus(ctx context.Context, s *control.Surface) error {
	report, err := s.Status(ctx)
	if err != nil {
		return err
	}
	state := "stopped"
	if report.WorkerRunning {
		state = fmt.Sprintf("running (pid %d)", report.WorkerPid)
	}
	fmt.Printf("worker: %s\n", state)
	fmt.Printf("pending: %d\n", report.Counts.Pending)
	fmt.Printf("processing: %d\n", report.Counts.Processing)
	fmt.Printf("failed: %d\n", report.Counts.Failed)
	fmt.Printf("completed: %d\n", report.Counts.Completed)
	fmt.Printf("dead: %d\n", report.Counts.Dead)
	return nil
}

func cmdList(ctx context.Context, s *control.Surface, args []string) error {
	status := job.Unknown
	if len(args) == 2 && args[0] == "--state" {
		parsed, err := job.ParseStatus(args[1])
		if err != nil {
			return fmt.Errorf("%w: %v", control.ErrInvalidInput, err)
		}
		status = parsed
	} else if len(args) != 0 {
		return fmt.Errorf("%w: usage: list [--state S]", control.ErrInvalidInput)
	}

	rows, err := s.List(ctx, status)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tATTEMPTS\tCOMMAND\tUPDATED_AT")
	for _, j := range rows {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", j.Id, j.Status, j.Attempts, j.Command, j.UpdatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func cmdDlq(ctx context.Context, s *control.Surface, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: usage: dlq <list|retry> ...", control.ErrInvalidInput)
	}
	switch args[0] {
	case "list":
		entries, err := s.DlqList(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tATTEMPTS\tFAILED_AT\tCOMMAND")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", e.Id, e.Attempts, e.FailedAt.Format(time.RFC3339), e.Command)
		}
		return w.Flush()
	case "retry":
		if len(args) != 2 {
			return fmt.Errorf("%w: usage: dlq retry <id>", control.ErrInvalidInput)
		}
		if err := s.DlqRetry(ctx, args[1]); err != nil {
			return err
		}
		fmt.Printf("retried %s\n", args[1])
		return nil
	default:
		return fmt.Errorf("%w: unknown dlq subcommand %q", control.ErrInvalidInput, args[0])
	}
}

func cmdConfig(s *control.Surface, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: usage: config <show|set> ...", control.ErrInvalidInput)
	}
	switch args[0] {
	case "show":
		cfg, err := s.ConfigGet()
		if err != nil {
			return err
		}
		enc, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(enc))
		return nil
	case "set":
		if len(args) != 3 {
			return fmt.Errorf("%w: usage: config set <key> <value>", control.ErrInvalidInput)
		}
		cfg, err := s.ConfigSet(args[1], args[2])
		if err != nil {
			return err
		}
		switch args[1] {
		case "max_retries":
			fmt.Printf("max_retries = %d\n", cfg.MaxRetries)
		case "backoff_base":
			fmt.Printf("backoff_base = %d\n", cfg.BackoffBase)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown config subcommand %q", control.ErrInvalidInput, args[0])
	}
}
