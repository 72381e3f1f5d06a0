package control_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/kkpjssks/queuectl/internal/control"
	"github.com/kkpjssks/queuectl/internal/store"
	"github.com/kkpjssks/queuectl/job"
)

func newSurface(t *testing.T) *control.Surface {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(context.Background(), filepath.Join(dir, "queue.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return control.New(st, dir, nil)
}

func TestEnqueueRejectsMissingCommand(t *testing.T) {
	s := newSurface(t)
	_, err := s.Enqueue(context.Background(), []byte(`{"id":"x"}`))
	if !errors.Is(err, control.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEnqueueAndStatus(t *testing.T) {
	s := newSurface(t)
	ctx := context.Background()

	id, err := s.Enqueue(ctx, []byte(`{"id":"j1","command":"true"}`))
	if err != nil {
		t.Fatal(err)
	}
	if id != "j1" {
		t.Fatalf("expected id j1, got %s", id)
	}

	report, err := s.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if report.WorkerRunning {
		t.Fatal("expected no worker running in a fresh state dir")
	}
	if report.Counts.Pending != 1 {
		t.Fatalf("expected 1 pending job, got %d", report.Counts.Pending)
	}
}

func TestConfigSetAndGet(t *testing.T) {
	s := newSurface(t)

	cfg, err := s.ConfigSet("max_retries", "5")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxRetries != 5 {
		t.Fatalf("expected max_retries=5, got %d", cfg.MaxRetries)
	}

	reloaded, err := s.ConfigGet()
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.MaxRetries != 5 {
		t.Fatalf("expected persisted max_retries=5, got %d", reloaded.MaxRetries)
	}
}

func TestConfigSetUnknownKey(t *testing.T) {
	s := newSurface(t)
	if _, err := s.ConfigSet("nope", "1"); !errors.Is(err, control.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDlqRetryRequiresId(t *testing.T) {
	s := newSurface(t)
	if err := s.DlqRetry(context.Background(), ""); !errors.Is(err, control.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestWorkerStopWithoutPidfile(t *testing.T) {
	s := newSurface(t)
	if err := s.WorkerStop(); err == nil {
		t.Fatal("expected an error when no supervisor is running")
	}
}

func TestListFiltersByStatus(t *testing.T) {
	s := newSurface(t)
	ctx := context.Background()
	if _, err := s.Enqueue(ctx, []byte(`{"command":"true"}`)); err != nil {
		t.Fatal(err)
	}
	rows, err := s.List(ctx, job.Pending)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 pending job, got %d", len(rows))
	}
}
