package store_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/kkpjssks/queuectl/internal/store"
	"github.com/kkpjssks/queuectl/job"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(context.Background(), filepath.Join(dir, "queue.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEnqueueAndClaim(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Enqueue(ctx, "j1", "true")
	if err != nil {
		t.Fatal(err)
	}
	if id != "j1" {
		t.Fatalf("expected id j1, got %s", id)
	}

	jb, err := s.FetchAndClaim(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if jb == nil {
		t.Fatal("expected a job, got nil")
	}
	if jb.Status != job.Processing {
		t.Fatalf("expected processing, got %v", jb.Status)
	}
	if jb.Command != "true" {
		t.Fatalf("expected command true, got %s", jb.Command)
	}
}

func TestEnqueueGeneratesId(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Enqueue(ctx, "", "true")
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}
}

func TestEnqueueDuplicateId(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Enqueue(ctx, "dup", "true"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Enqueue(ctx, "dup", "true"); !errors.Is(err, store.ErrDuplicateId) {
		t.Fatalf("expected ErrDuplicateId, got %v", err)
	}

	jobs, err := s.List(ctx, job.Unknown)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected exactly one row after rejected duplicate, got %d", len(jobs))
	}
}

func TestFetchAndClaimRespectsRunAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Enqueue(ctx, "future", "true"); err != nil {
		t.Fatal(err)
	}

	jb, err := s.FetchAndClaim(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if jb == nil {
		t.Fatal("expected immediate eligibility on first claim")
	}
	if err := s.Reschedule(ctx, "future", time.Hour); err != nil {
		t.Fatal(err)
	}

	again, err := s.FetchAndClaim(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if again != nil {
		t.Fatal("job scheduled an hour out must not be claimable yet")
	}
}

func TestCompleteAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Enqueue(ctx, "j1", "true"); err != nil {
		t.Fatal(err)
	}
	jb, err := s.FetchAndClaim(ctx, 0)
	if err != nil || jb == nil {
		t.Fatal(err)
	}
	if err := s.Complete(ctx, jb.Id); err != nil {
		t.Fatal(err)
	}

	rows, err := s.List(ctx, job.Completed)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Attempts != 0 {
		t.Fatalf("expected one completed row with attempts=0, got %+v", rows)
	}
}

func TestRescheduleIncrementsAttempts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Enqueue(ctx, "j1", "false"); err != nil {
		t.Fatal(err)
	}
	jb, _ := s.FetchAndClaim(ctx, 0)
	if err := s.Reschedule(ctx, jb.Id, 0); err != nil {
		t.Fatal(err)
	}

	rows, err := s.List(ctx, job.Failed)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Attempts != 1 {
		t.Fatalf("expected attempts=1 after first failure, got %+v", rows)
	}
}

func TestGiveUpMovesToDLQ(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Enqueue(ctx, "jf", "exit 1"); err != nil {
		t.Fatal(err)
	}
	jb, _ := s.FetchAndClaim(ctx, 0)
	if err := s.GiveUp(ctx, jb.Id, "boom"); err != nil {
		t.Fatal(err)
	}

	jobs, err := s.List(ctx, job.Unknown)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected jobs table empty after give up, got %d rows", len(jobs))
	}

	dlq, err := s.DlqList(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(dlq) != 1 || dlq[0].Id != "jf" || dlq[0].Attempts != 1 || dlq[0].LastError != "boom" {
		t.Fatalf("unexpected dlq contents: %+v", dlq)
	}
}

func TestDlqRetryReadmitsAsPending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Enqueue(ctx, "jf", "exit 1"); err != nil {
		t.Fatal(err)
	}
	jb, _ := s.FetchAndClaim(ctx, 0)
	if err := s.GiveUp(ctx, jb.Id, "boom"); err != nil {
		t.Fatal(err)
	}

	if err := s.DlqRetry(ctx, "jf"); err != nil {
		t.Fatal(err)
	}

	dlq, err := s.DlqList(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(dlq) != 0 {
		t.Fatalf("expected dlq empty after retry, got %d", len(dlq))
	}

	rows, err := s.List(ctx, job.Pending)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Attempts != 0 {
		t.Fatalf("expected one pending row with attempts=0, got %+v", rows)
	}
}

func TestDlqRetryNotFound(t *testing.T) {
	s := newTestStore(t)
	if err := s.DlqRetry(context.Background(), "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Enqueue(ctx, "a", "true"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Enqueue(ctx, "b", "true"); err != nil {
		t.Fatal(err)
	}
	jb, _ := s.FetchAndClaim(ctx, 0)
	if err := s.Complete(ctx, jb.Id); err != nil {
		t.Fatal(err)
	}

	counts, err := s.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts.Completed != 1 || counts.Pending != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

// TestFetchAndClaimIsAtMostOnce exercises invariant 1 ("At-most-once
// claim", spec.md §8): with N goroutines racing FetchAndClaim over the same
// Store, no job id is ever handed to more than one caller.
func TestFetchAndClaimIsAtMostOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const jobCount = 40
	const workerCount = 8

	for i := 0; i < jobCount; i++ {
		if _, err := s.Enqueue(ctx, fmt.Sprintf("j%02d", i), "true"); err != nil {
			t.Fatal(err)
		}
	}

	var (
		mu     sync.Mutex
		claims = make(map[string]int)
		wg     sync.WaitGroup
	)
	for w := 0; w < workerCount; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				jb, err := s.FetchAndClaim(ctx, w)
				if err != nil {
					t.Errorf("worker %d: FetchAndClaim: %v", w, err)
					return
				}
				if jb == nil {
					return
				}
				mu.Lock()
				claims[jb.Id]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(claims) != jobCount {
		t.Fatalf("expected %d distinct ids claimed, got %d", jobCount, len(claims))
	}
	for id, n := range claims {
		if n != 1 {
			t.Fatalf("job %s claimed %d times, want exactly once", id, n)
		}
	}
}
