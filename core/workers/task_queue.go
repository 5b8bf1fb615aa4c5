// ABOUTME: Background task queue runs fetch-and-extract jobs with a hard concurrency cap
// ABOUTME: Tasks move pending -> processing -> completed|error and are swept after a retention window

package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"newswire-api/core/domain"
	"newswire-api/core/interfaces"
)

// QueueConfig holds configuration for the task queue
type QueueConfig struct {
	// ConcurrencyLimit caps simultaneous in-flight jobs
	ConcurrencyLimit int

	// Retention is how long finished tasks stay visible
	Retention time.Duration

	// MaxPending bounds the number of tasks waiting to start
	MaxPending int

	// SweepInterval is how often the janitor removes expired tasks
	SweepInterval time.Duration
}

// DefaultQueueConfig returns the default queue configuration
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		ConcurrencyLimit: 5,
		Retention:        60 * time.Second,
		MaxPending:       1000,
		SweepInterval:    10 * time.Second,
	}
}

// TaskQueue owns every background task. All state is guarded by mu.
type TaskQueue struct {
	pipeline interfaces.Pipeline
	cache    interfaces.ResultCache
	logger   interfaces.Logger
	config   QueueConfig

	mu         sync.Mutex
	tasks      map[string]*domain.Task
	pending    []string
	processing int
	running    bool
	ctx        context.Context
	cancel     context.CancelFunc
	stopSweep  chan struct{}
	inflight   *sync.WaitGroup // replaced on every Start

	now   func() time.Time
	newID func() string
}

// NewTaskQueue creates a stopped queue; call Start before scheduling
func NewTaskQueue(pipeline interfaces.Pipeline, cache interfaces.ResultCache, logger interfaces.Logger, config QueueConfig) *TaskQueue {
	defaults := DefaultQueueConfig()
	if config.ConcurrencyLimit <= 0 {
		config.ConcurrencyLimit = defaults.ConcurrencyLimit
	}
	if config.Retention <= 0 {
		config.Retention = defaults.Retention
	}
	if config.MaxPending <= 0 {
		config.MaxPending = defaults.MaxPending
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = defaults.SweepInterval
	}
	if logger == nil {
		logger = interfaces.NopLogger{}
	}

	return &TaskQueue{
		pipeline: pipeline,
		cache:    cache,
		logger:   logger,
		config:   config,
		tasks:    make(map[string]*domain.Task),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Start starts the janitor and allows scheduling
func (q *TaskQueue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return nil
	}

	q.ctx, q.cancel = context.WithCancel(context.Background())
	q.stopSweep = make(chan struct{})
	q.inflight = &sync.WaitGroup{}
	q.running = true
	go q.janitor(q.stopSweep)

	// pick up anything left pending by a previous Stop
	q.drainLocked()
	return nil
}

// Stop cancels in-flight jobs and waits for them until ctx expires.
// Pending and cancelled tasks stay pending and resume on the next Start.
func (q *TaskQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	q.cancel()
	close(q.stopSweep)
	inflight := q.inflight
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Schedule creates a pending task for url unless one already exists.
// Returns true when a task was created.
func (q *TaskQueue) Schedule(url string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return false, ErrWorkerNotRunning
	}
	if _, exists := q.tasks[url]; exists {
		return false, nil
	}
	return q.enqueueLocked(url)
}

// Force replaces a finished task with a fresh pending one. Pending or
// processing tasks are left alone.
func (q *TaskQueue) Force(url string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return false, ErrWorkerNotRunning
	}
	if t, exists := q.tasks[url]; exists {
		if !t.State.IsTerminal() {
			return false, nil
		}
		// the finished task keeps serving its result if the queue is full
		if len(q.pending) >= q.config.MaxPending {
			return false, ErrQueueFull
		}
		delete(q.tasks, url)
	}
	return q.enqueueLocked(url)
}

func (q *TaskQueue) enqueueLocked(url string) (bool, error) {
	if len(q.pending) >= q.config.MaxPending {
		return false, ErrQueueFull
	}

	q.tasks[url] = &domain.Task{
		ID:         q.newID(),
		URL:        url,
		State:      domain.TaskPending,
		EnqueuedAt: q.now(),
	}
	q.pending = append(q.pending, url)
	q.drainLocked()
	return true, nil
}

// drainLocked starts the oldest pending tasks while capacity remains
func (q *TaskQueue) drainLocked() {
	for q.running && q.processing < q.config.ConcurrencyLimit && len(q.pending) > 0 {
		url := q.pending[0]
		q.pending = q.pending[1:]

		t, ok := q.tasks[url]
		if !ok || t.State != domain.TaskPending {
			continue
		}
		t.State = domain.TaskProcessing
		t.StartedAt = q.now()
		q.processing++

		q.inflight.Add(1)
		go q.run(q.ctx, q.inflight, t.ID, url)
	}
}

func (q *TaskQueue) run(ctx context.Context, inflight *sync.WaitGroup, id, url string) {
	defer inflight.Done()

	result := q.process(ctx, url)
	cancelled := ctx.Err() != nil
	if !cancelled {
		q.cache.Put(ctx, url, result)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	t, ok := q.tasks[url]
	switch {
	case !ok || t.ID != id:
	case cancelled:
		// cancelled work goes back to pending instead of recording an error
		t.State = domain.TaskPending
		t.StartedAt = time.Time{}
		t.Result = nil
		q.pending = append(q.pending, url)
	default:
		t.Result = &result
		t.FinishedAt = q.now()
		if result.IsSuccess() {
			t.State = domain.TaskCompleted
		} else {
			t.State = domain.TaskError
		}
	}
	q.processing--
	q.drainLocked()

	q.logger.Debug("Task finished", map[string]interface{}{
		"url":        url,
		"status":     string(result.Status),
		"processing": q.processing,
		"pending":    len(q.pending),
	})
}

func (q *TaskQueue) process(ctx context.Context, url string) (result domain.FetchResult) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("Task panicked", map[string]interface{}{
				"url":   url,
				"panic": fmt.Sprint(r),
			})
			result = domain.NewErrorResult(url, 0, fmt.Errorf("task panicked: %v", r), q.now())
		}
	}()
	return q.pipeline.Process(ctx, url)
}

// Lookup returns a copy of the task for url
func (q *TaskQueue) Lookup(url string) (domain.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	t, ok := q.tasks[url]
	if !ok {
		return domain.Task{}, false
	}
	out := *t
	if t.Result != nil {
		r := t.Result.Clone()
		out.Result = &r
	}
	return out, true
}

// Status counts tasks per state
func (q *TaskQueue) Status() domain.QueueStatus {
	q.mu.Lock()
	defer q.mu.Unlock()

	var s domain.QueueStatus
	for _, t := range q.tasks {
		switch t.State {
		case domain.TaskPending:
			s.Pending++
		case domain.TaskProcessing:
			s.Processing++
		case domain.TaskCompleted:
			s.Completed++
		case domain.TaskError:
			s.Error++
		}
	}
	s.Total = len(q.tasks)
	return s
}

// Sweep removes finished tasks older than the retention window
func (q *TaskQueue) Sweep() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	removed := 0
	for url, t := range q.tasks {
		if t.State.IsTerminal() && now.Sub(t.FinishedAt) >= q.config.Retention {
			delete(q.tasks, url)
			removed++
		}
	}
	return removed
}

func (q *TaskQueue) janitor(stop <-chan struct{}) {
	ticker := time.NewTicker(q.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := q.Sweep(); n > 0 {
				q.logger.Debug("Swept finished tasks", map[string]interface{}{"removed": n})
			}
		case <-stop:
			return
		}
	}
}

// Error definitions
var (
	ErrWorkerNotRunning = &WorkerError{Message: "task queue is not running"}
	ErrQueueFull        = &WorkerError{Message: "task queue is full"}
)

// WorkerError represents a queue-specific error
type WorkerError struct {
	Message string
}

func (e *WorkerError) Error() string {
	return e.Message
}
