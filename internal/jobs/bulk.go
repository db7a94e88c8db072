package jobs

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leadforge/leadforge/internal/analyzer"
	"github.com/leadforge/leadforge/internal/domain"
)

// BulkJobStatus tracks a bulk analysis job through its lifecycle.
type BulkJobStatus string

const (
	BulkJobStatusPending   BulkJobStatus = "pending"
	BulkJobStatusRunning   BulkJobStatus = "running"
	BulkJobStatusCompleted BulkJobStatus = "completed"
	BulkJobStatusFailed    BulkJobStatus = "failed"
)

// BulkJob is one queued bulk analysis request.
type BulkJob struct {
	ID         string                 `json:"id"`
	URLs       []string               `json:"urls"`
	Status     BulkJobStatus          `json:"status"`
	Outcomes   []analyzer.BulkOutcome `json:"outcomes,omitempty"`
	Error      string                 `json:"error,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	StartedAt  *time.Time             `json:"started_at,omitempty"`
	FinishedAt *time.Time             `json:"finished_at,omitempty"`
}

// BulkQueue holds bulk jobs in memory. Jobs do not survive a restart;
// callers poll job status over the API while the process runs.
type BulkQueue struct {
	mu      sync.Mutex
	jobs    map[string]*BulkJob
	pending []string
}

// NewBulkQueue creates an empty queue.
func NewBulkQueue() *BulkQueue {
	return &BulkQueue{jobs: make(map[string]*BulkJob)}
}

// Submit enqueues a bulk analysis and returns the queued job.
func (q *BulkQueue) Submit(urls []string) (*BulkJob, error) {
	if len(urls) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "no urls to analyze")
	}

	job := &BulkJob{
		ID:        uuid.New().String(),
		URLs:      append([]string{}, urls...),
		Status:    BulkJobStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs[job.ID] = job
	q.pending = append(q.pending, job.ID)
	return job.snapshot(), nil
}

// Get returns the job with the given id.
func (q *BulkQueue) Get(id string) (*BulkJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.jobs[id]
	if !ok {
		return nil, domain.NewDomainError(domain.ErrCodeNotFound, "bulk job not found")
	}
	return job.snapshot(), nil
}

// List returns all known jobs, newest first.
func (q *BulkQueue) List() []*BulkJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*BulkJob, 0, len(q.jobs))
	for _, job := range q.jobs {
		out = append(out, job.snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// claimNext marks the oldest pending job as running and returns it.
func (q *BulkQueue) claimNext() *BulkJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}
	id := q.pending[0]
	q.pending = q.pending[1:]

	job := q.jobs[id]
	now := time.Now().UTC()
	job.Status = BulkJobStatusRunning
	job.StartedAt = &now
	return job
}

// finish records the outcome of a run.
func (q *BulkQueue) finish(id string, outcomes []analyzer.BulkOutcome, runErr error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.jobs[id]
	if !ok {
		return
	}
	now := time.Now().UTC()
	job.Outcomes = outcomes
	job.FinishedAt = &now
	if runErr != nil {
		job.Status = BulkJobStatusFailed
		job.Error = runErr.Error()
		return
	}
	job.Status = BulkJobStatusCompleted
}

func (j *BulkJob) snapshot() *BulkJob {
	cp := *j
	cp.URLs = append([]string{}, j.URLs...)
	cp.Outcomes = append([]analyzer.BulkOutcome{}, j.Outcomes...)
	if len(cp.Outcomes) == 0 {
		cp.Outcomes = nil
	}
	return &cp
}

// BulkProcessor drains the queue, running each job through the analyzer.
type BulkProcessor struct {
	queue    *BulkQueue
	analyzer *analyzer.Analyzer
}

// NewBulkProcessor creates a processor over the queue.
func NewBulkProcessor(queue *BulkQueue, a *analyzer.Analyzer) *BulkProcessor {
	return &BulkProcessor{queue: queue, analyzer: a}
}

// ProcessJobs implements the JobProcessor interface. It runs every
// pending job to completion before returning.
func (p *BulkProcessor) ProcessJobs(ctx context.Context) error {
	for {
		job := p.queue.claimNext()
		if job == nil {
			return nil
		}

		log.Printf("jobs: running bulk job %s (%d urls)", job.ID, len(job.URLs))
		outcomes, err := p.analyzer.AnalyzeBulk(ctx, job.URLs)
		p.queue.finish(job.ID, outcomes, err)

		if err != nil {
			log.Printf("jobs: bulk job %s failed: %v", job.ID, err)
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}
