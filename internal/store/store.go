package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/kkpjssks/queuectl/job"

	_ "modernc.org/sqlite"
)

// Counts summarizes job.Job rows by status plus the size of the dlq table.
type Counts struct {
	Pending    int64
	Processing int64
	Failed     int64
	Completed  int64
	Dead       int64
}

// Store is the durable, transactional queue backing queuectl. It wraps a
// single SQLite file opened in WAL mode and guarantees that FetchAndClaim
// hands any one job to at most one caller (invariant 2).
type Store struct {
	db  *bun.DB
	log *slog.Logger
}

// Open opens (creating if absent) the SQLite file at path, configures WAL
// mode and a busy timeout, and initializes the schema. The returned Store
// owns the connection; call Close when done.
func Open(ctx context.Context, path string, log *slog.Logger) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	if err := InitDB(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{db: db, log: log.With("component", "store")}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.DB.Close()
}

func wrapStorageErr(err error) error {
	if err == nil {
		return nil
	}
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Unwrap()
	}
	// backoff.Retry hands back a Permanent error's inner error, so the
	// domain errors raised that way are passed through unwrapped here too.
	if errors.Is(err, ErrDuplicateId) || errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorageError, err)
}

// Enqueue inserts a new pending job. If id is empty, a fresh unique token
// is generated. Enqueue fails with ErrDuplicateId if id already exists in
// either jobs or dlq.
func (s *Store) Enqueue(ctx context.Context, id, command string) (string, error) {
	if id == "" {
		id = uuid.New().String()
	}
	_, err := withBusyRetry(ctx, func() (struct{}, error) {
		return struct{}{}, s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			exists, err := tx.NewSelect().Model((*jobModel)(nil)).Where("id = ?", id).Exists(ctx)
			if err != nil {
				return err
			}
			if !exists {
				exists, err = tx.NewSelect().Model((*dlqModel)(nil)).Where("id = ?", id).Exists(ctx)
				if err != nil {
					return err
				}
			}
			if exists {
				return backoff.Permanent(ErrDuplicateId)
			}
			_, err = tx.NewInsert().Model(newJobModel(id, command)).Exec(ctx)
			return err
		})
	})
	if err != nil {
		return "", wrapStorageErr(err)
	}
	return id, nil
}

// FetchAndClaim selects the earliest-eligible job (ordered by run_at, then
// created_at, then id) and atomically transitions it to processing,
// returning nil if none are eligible. workerTag is used only for logging.
func (s *Store) FetchAndClaim(ctx context.Context, workerTag int) (*job.Job, error) {
	jb, err := withBusyRetry(ctx, func() (*job.Job, error) {
		var result *job.Job
		err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			now := time.Now()
			subQuery := tx.NewSelect().
				Model((*jobModel)(nil)).
				Column("id").
				Where("run_at <= ?", now).
				Where("status IN (?, ?)", job.Pending, job.Failed).
				Order("run_at ASC", "created_at ASC", "id ASC").
				Limit(1)
			var rows []*jobModel
			err := tx.NewUpdate().
				Model((*jobModel)(nil)).
				Set("status = ?", job.Processing).
				Set("updated_at = ?", now).
				Where("id IN (?)", subQuery).
				Returning("*").
				Scan(ctx, &rows)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return nil
			}
			result = rows[0].toJob()
			return nil
		})
		return result, err
	})
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	if jb != nil {
		s.log.Debug("claimed job", "worker", workerTag, "id", jb.Id)
	}
	return jb, nil
}

// Complete transitions a processing job to completed. If the row is not
// currently processing, Complete logs the anomaly and returns nil rather
// than propagating an error, per spec.md §4.1.
func (s *Store) Complete(ctx context.Context, id string) error {
	_, err := withBusyRetry(ctx, func() (struct{}, error) {
		res, err := s.db.NewUpdate().
			Model((*jobModel)(nil)).
			Set("status = ?", job.Completed).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", id).
			Where("status = ?", job.Processing).
			Exec(ctx)
		if err != nil {
			return struct{}{}, err
		}
		if !isAffected(res) {
			s.log.Warn("complete called on non-processing job", "id", id)
		}
		return struct{}{}, nil
	})
	return wrapStorageErr(err)
}

// Reschedule transitions a processing job back to failed, increments
// attempts, and sets run_at to now+delay.
func (s *Store) Reschedule(ctx context.Context, id string, delay time.Duration) error {
	_, err := withBusyRetry(ctx, func() (struct{}, error) {
		now := time.Now()
		res, err := s.db.NewUpdate().
			Model((*jobModel)(nil)).
			Set("status = ?", job.Failed).
			Set("attempts = attempts + 1").
			Set("run_at = ?", now.Add(delay)).
			Set("updated_at = ?", now).
			Where("id = ?", id).
			Where("status = ?", job.Processing).
			Exec(ctx)
		if err != nil {
			return struct{}{}, err
		}
		if !isAffected(res) {
			s.log.Warn("reschedule called on non-processing job", "id", id)
		}
		return struct{}{}, nil
	})
	return wrapStorageErr(err)
}

// GiveUp atomically increments attempts, removes the job from jobs, and
// inserts a row into dlq carrying the final attempt count and lastErr.
func (s *Store) GiveUp(ctx context.Context, id string, lastErr string) error {
	_, err := withBusyRetry(ctx, func() (struct{}, error) {
		return struct{}{}, s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			var jm jobModel
			err := tx.NewSelect().Model(&jm).Where("id = ?", id).Where("status = ?", job.Processing).Scan(ctx)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return backoff.Permanent(ErrNotFound)
				}
				return err
			}
			attempts := jm.Attempts + 1
			if _, err := tx.NewDelete().Model((*jobModel)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
				return err
			}
			entry := &dlqModel{
				Id:        jm.Id,
				Command:   jm.Command,
				Attempts:  attempts,
				FailedAt:  time.Now(),
				LastError: lastErr,
			}
			_, err = tx.NewInsert().Model(entry).Exec(ctx)
			return err
		})
	})
	return wrapStorageErr(err)
}

// List returns jobs ordered by updated_at descending, optionally filtered
// by status. job.Unknown means no filter.
func (s *Store) List(ctx context.Context, status job.Status) ([]*job.Job, error) {
	rows, err := withBusyRetry(ctx, func() ([]*jobModel, error) {
		var rows []*jobModel
		q := s.db.NewSelect().Model(&rows).Order("updated_at DESC")
		if status != job.Unknown {
			q = q.Where("status = ?", status)
		}
		return rows, q.Scan(ctx)
	})
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	ret := make([]*job.Job, 0, len(rows))
	for _, r := range rows {
		ret = append(ret, r.toJob())
	}
	return ret, nil
}

// DlqList returns dead letter entries ordered by failed_at descending.
func (s *Store) DlqList(ctx context.Context) ([]*job.DLQEntry, error) {
	rows, err := withBusyRetry(ctx, func() ([]*dlqModel, error) {
		var rows []*dlqModel
		err := s.db.NewSelect().Model(&rows).Order("failed_at DESC").Scan(ctx)
		return rows, err
	})
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	ret := make([]*job.DLQEntry, 0, len(rows))
	for _, r := range rows {
		ret = append(ret, r.toEntry())
	}
	return ret, nil
}

// DlqRetry moves a dlq entry back into jobs as pending with attempts=0 and
// run_at=now. Returns ErrNotFound if id is absent from dlq.
func (s *Store) DlqRetry(ctx context.Context, id string) error {
	_, err := withBusyRetry(ctx, func() (struct{}, error) {
		return struct{}{}, s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			var dm dlqModel
			err := tx.NewSelect().Model(&dm).Where("id = ?", id).Scan(ctx)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return backoff.Permanent(ErrNotFound)
				}
				return err
			}
			if _, err := tx.NewDelete().Model((*dlqModel)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
				return err
			}
			_, err = tx.NewInsert().Model(newJobModel(dm.Id, dm.Command)).Exec(ctx)
			return err
		})
	})
	return wrapStorageErr(err)
}

// Counts aggregates job counts by status plus the dlq row count.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	c, err := withBusyRetry(ctx, func() (Counts, error) {
		var rows []struct {
			Status job.Status `bun:"status"`
			N      int64      `bun:"n"`
		}
		err := s.db.NewSelect().
			Model((*jobModel)(nil)).
			ColumnExpr("status, count(*) AS n").
			Group("status").
			Scan(ctx, &rows)
		if err != nil {
			return Counts{}, err
		}
		var c Counts
		for _, r := range rows {
			switch r.Status {
			case job.Pending:
				c.Pending = r.N
			case job.Processing:
				c.Processing = r.N
			case job.Failed:
				c.Failed = r.N
			case job.Completed:
				c.Completed = r.N
			}
		}
		dead, err := s.db.NewSelect().Model((*dlqModel)(nil)).Count(ctx)
		if err != nil {
			return Counts{}, err
		}
		c.Dead = int64(dead)
		return c, nil
	})
	if err != nil {
		return Counts{}, wrapStorageErr(err)
	}
	return c, nil
}
