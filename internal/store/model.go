package store

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/kkpjssks/queuectl/job"
)

type jobModel struct {
	bun.BaseModel `bun:"table:jobs"`
	Id            string `bun:"id,pk"`
	Command       string `bun:"command,notnull"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	Status   job.Status `bun:"status,notnull,default:1"`
	Attempts int        `bun:"attempts,notnull,default:0"`
	RunAt    time.Time  `bun:"run_at,notnull"`
}

func (jm *jobModel) toJob() *job.Job {
	return &job.Job{
		Id:        jm.Id,
		Command:   jm.Command,
		Status:    jm.Status,
		Attempts:  jm.Attempts,
		RunAt:     jm.RunAt,
		CreatedAt: jm.CreatedAt,
		UpdatedAt: jm.UpdatedAt,
	}
}

func newJobModel(id, command string) *jobModel {
	now := time.Now()
	return &jobModel{
		Id:        id,
		Command:   command,
		CreatedAt: now,
		UpdatedAt: now,
		Status:    job.Pending,
		Attempts:  0,
		RunAt:     now,
	}
}

type dlqModel struct {
	bun.BaseModel `bun:"table:dlq"`
	Id            string `bun:"id,pk"`
	Command       string `bun:"command,notnull"`
	Attempts      int    `bun:"attempts,notnull"`

	FailedAt  time.Time `bun:"failed_at,notnull,default:current_timestamp"`
	LastError string    `bun:"last_error"`
}

func (dm *dlqModel) toEntry() *job.DLQEntry {
	return &job.DLQEntry{
		Id:        dm.Id,
		Command:   dm.Command,
		Attempts:  dm.Attempts,
		FailedAt:  dm.FailedAt,
		LastError: dm.LastError,
	}
}
