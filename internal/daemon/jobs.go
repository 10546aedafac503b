package daemon

import (
	"sync"
	"time"

	"github.com/felixgeelhaar/mathdrill/internal/queue"
)

// DefaultTrackedJobs bounds the tracker when no size is given
const DefaultTrackedJobs = 1000

// JobStatusQueued is reported until a worker result arrives
const JobStatusQueued = "queued"

// JobStatus is the daemon's view of an asynchronous worksheet job
type JobStatus struct {
	ID       string           `json:"id"`
	Status   string           `json:"status"`
	Topic    string           `json:"topic"`
	QueuedAt time.Time        `json:"queued_at"`
	Result   *queue.JobResult `json:"result,omitempty"`
}

// JobTracker remembers queued jobs and their results. The oldest jobs
// are forgotten once the tracker is full.
type JobTracker struct {
	mu    sync.RWMutex
	limit int
	order []string
	jobs  map[string]*JobStatus
}

// NewJobTracker creates a tracker holding at most limit jobs
func NewJobTracker(limit int) *JobTracker {
	if limit <= 0 {
		limit = DefaultTrackedJobs
	}
	return &JobTracker{
		limit: limit,
		jobs:  make(map[string]*JobStatus),
	}
}

// Track registers a freshly published job
func (t *JobTracker) Track(job *queue.WorksheetJob) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := job.ID.String()
	if _, ok := t.jobs[id]; !ok {
		t.order = append(t.order, id)
	}
	t.jobs[id] = &JobStatus{
		ID:       id,
		Status:   JobStatusQueued,
		Topic:    job.Request.Topic,
		QueuedAt: job.CreatedAt,
	}
	for len(t.order) > t.limit {
		delete(t.jobs, t.order[0])
		t.order = t.order[1:]
	}
}

// Complete attaches a worker result. Results for unknown jobs are ignored.
func (t *JobTracker) Complete(result *queue.JobResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	js, ok := t.jobs[result.JobID.String()]
	if !ok {
		return
	}
	js.Status = result.Status
	js.Result = result
}

// Get returns a copy of the job's status
func (t *JobTracker) Get(id string) (JobStatus, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	js, ok := t.jobs[id]
	if !ok {
		return JobStatus{}, false
	}
	return *js, true
}

// Len returns the number of tracked jobs
func (t *JobTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.jobs)
}
