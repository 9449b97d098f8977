package gui

import (
	"context"
	"errors"
	"sync"
	"time"

	"codeberg.org/snonux/cacheconv/internal/processor"
)

// ErrQueueStopped is set on jobs added after the queue was stopped
var ErrQueueStopped = errors.New("queue is shutting down")

// FileJob represents one cache file waiting to be converted
type FileJob struct {
	ID          int
	Path        string
	Status      JobStatus
	Report      *processor.Report
	Error       error
	StartedAt   time.Time
	CompletedAt time.Time
}

// JobStatus represents the current state of a job
type JobStatus int

const (
	StatusQueued JobStatus = iota
	StatusProcessing
	StatusCompleted
	StatusFailed
)

func (s JobStatus) String() string {
	switch s {
	case StatusQueued:
		return "Queued"
	case StatusProcessing:
		return "Processing"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// ConvertFunc converts the file at path
type ConvertFunc func(path string) (*processor.Report, error)

// FileQueue runs conversions one at a time on a background goroutine so
// the window stays responsive. Files dropped while a conversion runs wait
// their turn.
type FileQueue struct {
	jobs    chan *FileJob
	results map[int]*FileJob
	nextID  int
	mu      sync.RWMutex

	convert ConvertFunc

	// Callbacks for UI updates, called from the worker goroutine
	onStatusUpdate func(job *FileJob)
	onJobComplete  func(job *FileJob)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFileQueue creates a queue and starts its worker
func NewFileQueue(ctx context.Context, convert ConvertFunc) *FileQueue {
	queueCtx, cancel := context.WithCancel(ctx)

	q := &FileQueue{
		jobs:    make(chan *FileJob, 100),
		results: make(map[int]*FileJob),
		nextID:  1,
		convert: convert,
		ctx:     queueCtx,
		cancel:  cancel,
	}

	q.wg.Add(1)
	go q.worker()

	return q
}

// SetCallbacks sets the callback functions for UI updates
func (q *FileQueue) SetCallbacks(onStatusUpdate func(*FileJob), onJobComplete func(*FileJob)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onStatusUpdate = onStatusUpdate
	q.onJobComplete = onJobComplete
}

// AddFile adds a file to the conversion queue
func (q *FileQueue) AddFile(path string) *FileJob {
	q.mu.Lock()
	job := &FileJob{
		ID:     q.nextID,
		Path:   path,
		Status: StatusQueued,
	}
	q.nextID++
	q.results[job.ID] = job
	q.mu.Unlock()

	if q.ctx.Err() != nil {
		q.finish(job, nil, ErrQueueStopped)
		return job
	}

	// Notify before handing the job to the worker, which owns it afterwards
	q.notifyStatus(job)

	select {
	case q.jobs <- job:
	case <-q.ctx.Done():
		q.finish(job, nil, ErrQueueStopped)
	}

	return job
}

// GetJob returns a snapshot of a job by ID
func (q *FileQueue) GetJob(id int) (FileJob, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	job, ok := q.results[id]
	if !ok {
		return FileJob{}, false
	}
	return *job, true
}

// GetQueueStatus returns the current queue statistics
func (q *FileQueue) GetQueueStatus() (queued, processing, completed, failed int) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	for _, job := range q.results {
		switch job.Status {
		case StatusQueued:
			queued++
		case StatusProcessing:
			processing++
		case StatusCompleted:
			completed++
		case StatusFailed:
			failed++
		}
	}

	return
}

// Busy reports whether any job is queued or running
func (q *FileQueue) Busy() bool {
	queued, processing, _, _ := q.GetQueueStatus()
	return queued+processing > 0
}

// Stop shuts down the queue and waits for the running job to finish.
// Jobs still waiting are marked as failed.
func (q *FileQueue) Stop() {
	q.cancel()
	q.wg.Wait()
}

func (q *FileQueue) worker() {
	defer q.wg.Done()

	for {
		select {
		case <-q.ctx.Done():
			q.drain()
			return
		case job := <-q.jobs:
			q.run(job)
		}
	}
}

// drain fails every job left in the channel after shutdown
func (q *FileQueue) drain() {
	for {
		select {
		case job := <-q.jobs:
			q.finish(job, nil, ErrQueueStopped)
		default:
			return
		}
	}
}

func (q *FileQueue) run(job *FileJob) {
	q.mu.Lock()
	job.Status = StatusProcessing
	job.StartedAt = time.Now()
	q.mu.Unlock()
	q.notifyStatus(job)

	report, err := q.convert(job.Path)
	q.finish(job, report, err)
}

func (q *FileQueue) finish(job *FileJob, report *processor.Report, err error) {
	q.mu.Lock()
	job.Report = report
	job.Error = err
	job.CompletedAt = time.Now()
	if err != nil {
		job.Status = StatusFailed
	} else {
		job.Status = StatusCompleted
	}
	callback := q.onJobComplete
	q.mu.Unlock()

	if callback != nil {
		callback(job)
	}
}

func (q *FileQueue) notifyStatus(job *FileJob) {
	q.mu.RLock()
	callback := q.onStatusUpdate
	q.mu.RUnlock()

	if callback != nil {
		callback(job)
	}
}
