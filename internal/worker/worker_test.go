package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kkpjssks/queuectl/internal/executor"
	"github.com/kkpjssks/queuectl/internal/policy"
	"github.com/kkpjssks/queuectl/internal/stopflag"
	"github.com/kkpjssks/queuectl/internal/store"
	"github.com/kkpjssks/queuectl/job"
)

func newTestWorker(t *testing.T) (*Worker, *store.Store, *stopflag.Flag) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(context.Background(), filepath.Join(dir, "queue.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })

	flag := stopflag.New(filepath.Join(dir, "stop.flag"))
	w := New(st, flag, 0, policy.Config{MaxRetries: 3, BackoffBase: 2}, nil)
	w.poll = 10 * time.Millisecond
	return w, st, flag
}

func TestWorkerCompletesSuccessfulJob(t *testing.T) {
	w, st, flag := newTestWorker(t)
	ctx := context.Background()

	w.execFn = func(context.Context, string, executor.Stdio) executor.Outcome {
		return executor.Outcome{Success: true}
	}

	if _, err := st.Enqueue(ctx, "j1", "true"); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	waitForStatus(t, st, "j1", job.Completed)
	flag.Set()
	<-done
}

func TestWorkerRetriesThenGivesUp(t *testing.T) {
	w, st, flag := newTestWorker(t)
	ctx := context.Background()

	w.pol = policy.Config{MaxRetries: 2, BackoffBase: 1} // two retries, each after a 1s delay
	w.execFn = func(context.Context, string, executor.Stdio) executor.Outcome {
		return executor.Outcome{Success: false, Reason: "boom"}
	}

	if _, err := st.Enqueue(ctx, "jf", "exit 1"); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		dlq, err := st.DlqList(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(dlq) == 1 {
			if dlq[0].Attempts != 3 {
				t.Fatalf("expected attempts=3 in dlq (max_retries+1), got %d", dlq[0].Attempts)
			}
			flag.Set()
			<-done
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job never reached the dlq within the deadline")
}

func TestWorkerStopsAtLoopBoundary(t *testing.T) {
	w, _, flag := newTestWorker(t)
	ctx := context.Background()

	flag.Set()
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not exit promptly when stop flag was already set")
	}
}

func waitForStatus(t *testing.T, st *store.Store, id string, want job.Status) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		rows, err := st.List(context.Background(), want)
		if err != nil {
			t.Fatal(err)
		}
		for _, r := range rows {
			if r.Id == id {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %v", id, want)
}
