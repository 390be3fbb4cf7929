package model

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PullState tracks a background model download.
type PullState string

const (
	// PullRunning indicates the download is in progress.
	PullRunning PullState = "running"
	// PullDone indicates the download finished successfully.
	PullDone PullState = "done"
	// PullFailed indicates the download failed.
	PullFailed PullState = "failed"
)

// PullJob is a snapshot of one background download.
type PullJob struct {
	ID       string    `json:"id"`
	Model    string    `json:"model"`
	State    PullState `json:"state"`
	Output   string    `json:"output,omitempty"`
	Error    string    `json:"error,omitempty"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
}

// Puller downloads models by name.
type Puller interface {
	Pull(ctx context.Context, model string) (string, error)
}

// PullSupervisor runs model downloads in the background and tracks
// them by job ID. Finished jobs stay queryable for the session.
type PullSupervisor struct {
	puller Puller

	mu   sync.Mutex
	jobs map[string]*PullJob
}

// NewPullSupervisor creates a supervisor downloading through p.
func NewPullSupervisor(p Puller) *PullSupervisor {
	return &PullSupervisor{
		puller: p,
		jobs:   make(map[string]*PullJob),
	}
}

// StartPull launches a background download and returns its job ID
// immediately.
func (s *PullSupervisor) StartPull(ctx context.Context, model string) string {
	job := &PullJob{
		ID:      uuid.New().String(),
		Model:   model,
		State:   PullRunning,
		Started: time.Now(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	go func() {
		out, err := s.puller.Pull(ctx, model)

		s.mu.Lock()
		defer s.mu.Unlock()
		job.Finished = time.Now()
		if err != nil {
			job.State = PullFailed
			job.Error = err.Error()
			return
		}
		job.State = PullDone
		job.Output = out
	}()

	return job.ID
}

// Status returns a snapshot of the job with the given ID.
func (s *PullSupervisor) Status(id string) (PullJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return PullJob{}, false
	}
	return *job, true
}

// Jobs returns snapshots of all jobs, oldest first.
func (s *PullSupervisor) Jobs() []PullJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]PullJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, *job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].Started.Before(jobs[j].Started)
	})
	return jobs
}
