package control

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kkpjssks/queuectl/internal/config"
	"github.com/kkpjssks/queuectl/internal/store"
	"github.com/kkpjssks/queuectl/internal/supervisor"
	"github.com/kkpjssks/queuectl/job"
	"github.com/kkpjssks/queuectl/message"
)

// Surface composes the Store and the on-disk config/pidfile into the set
// of operations the CLI invokes directly (spec.md §6's "thin operations
// invoked by the CLI collaborator").
type Surface struct {
	St       *store.Store
	StateDir string
	Log      *slog.Logger
}

// New constructs a Surface bound to an already-open Store and a state
// directory (holding config.json and worker.pid).
func New(st *store.Store, stateDir string, log *slog.Logger) *Surface {
	if log == nil {
		log = slog.Default()
	}
	return &Surface{St: st, StateDir: stateDir, Log: log.With("component", "control")}
}

// StatusReport answers the `status` CLI verb.
type StatusReport struct {
	WorkerRunning bool
	WorkerPid     int
	Counts        store.Counts
}

// Enqueue decodes a raw submission envelope and inserts it as a pending
// job. ErrInvalidInput wraps message.Decode's validation failure.
func (s *Surface) Enqueue(ctx context.Context, raw []byte) (string, error) {
	sub, err := message.Decode(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	id, err := s.St.Enqueue(ctx, sub.Id, sub.Command)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Status reports whether a worker fleet is running and current job counts.
func (s *Surface) Status(ctx context.Context) (StatusReport, error) {
	running, pid, err := supervisor.IsRunning(s.StateDir)
	if err != nil {
		s.Log.Warn("cannot probe worker liveness", "err", err)
	}
	counts, err := s.St.Counts(ctx)
	if err != nil {
		return StatusReport{}, err
	}
	return StatusReport{WorkerRunning: running, WorkerPid: pid, Counts: counts}, nil
}

// List returns jobs filtered by status; job.Unknown means all statuses.
func (s *Surface) List(ctx context.Context, status job.Status) ([]*job.Job, error) {
	return s.St.List(ctx, status)
}

// DlqList returns every dead-lettered job.
func (s *Surface) DlqList(ctx context.Context) ([]*job.DLQEntry, error) {
	return s.St.DlqList(ctx)
}

// DlqRetry readmits a dead-lettered job as pending.
func (s *Surface) DlqRetry(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.St.DlqRetry(ctx, id)
}

// ConfigGet loads the persisted config, or defaults if none exists yet.
func (s *Surface) ConfigGet() (config.Config, error) {
	return config.Load(supervisor.ConfigPath(s.StateDir))
}

// ConfigSet validates key/value, persists the result, and returns the
// updated config.
func (s *Surface) ConfigSet(key, value string) (config.Config, error) {
	cur, err := config.Load(supervisor.ConfigPath(s.StateDir))
	if err != nil {
		return config.Config{}, err
	}
	next, err := cur.Set(key, value)
	if err != nil {
		return config.Config{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := next.Save(supervisor.ConfigPath(s.StateDir)); err != nil {
		return config.Config{}, err
	}
	return next, nil
}

// WorkerStop signals the running supervisor, if any, to begin a graceful
// shutdown. It does not wait for workers to finish.
func (s *Surface) WorkerStop() error {
	return supervisor.Stop(s.StateDir)
}
