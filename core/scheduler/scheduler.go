// ABOUTME: Cron scheduler for periodic background refreshes and daily archives
// ABOUTME: Wraps robfig/cron with named jobs, panic recovery and overlap protection

package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"newswire-api/core/interfaces"
)

// JobFunc is a scheduled unit of work. ctx is cancelled when the scheduler stops.
type JobFunc func(ctx context.Context)

// Job describes a registered job
type Job struct {
	Name string    `json:"name"`
	Spec string    `json:"spec"`
	Next time.Time `json:"next"`
	Prev time.Time `json:"prev,omitempty"`
}

type job struct {
	spec string
	id   cron.EntryID
	fn   JobFunc
}

// Scheduler runs named jobs on standard five-field cron expressions
type Scheduler struct {
	cron   *cron.Cron
	logger interfaces.Logger

	mu      sync.Mutex
	jobs    map[string]job
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a scheduler. loc may be nil for the local time zone.
func New(logger interfaces.Logger, loc *time.Location) *Scheduler {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	if loc == nil {
		loc = time.Local
	}

	adapter := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		logger: logger,
		jobs:   make(map[string]job),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers fn under name. An empty spec leaves the job disabled and
// returns nil; re-adding a name replaces the earlier job.
func (s *Scheduler) Add(name, spec string, fn JobFunc) error {
	if spec == "" {
		s.logger.Info("Scheduled job disabled", map[string]interface{}{"job": name})
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[name]; ok {
		s.cron.Remove(existing.id)
	}

	id, err := s.cron.AddFunc(spec, func() {
		s.run(name, fn)
	})
	if err != nil {
		return fmt.Errorf("add cron job %q: %w", name, err)
	}
	s.jobs[name] = job{spec: spec, id: id, fn: fn}

	s.logger.Info("Scheduled job", map[string]interface{}{
		"job":  name,
		"spec": spec,
	})
	return nil
}

func (s *Scheduler) run(name string, fn JobFunc) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	start := time.Now()
	s.logger.Info("Running scheduled job", map[string]interface{}{"job": name})
	fn(ctx)
	s.logger.Info("Scheduled job finished", map[string]interface{}{
		"job":      name,
		"duration": time.Since(start).String(),
	})
}

// RunNow runs a registered job synchronously outside its schedule
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	s.run(name, j.fn)
	return nil
}

// Jobs lists registered jobs sorted by name
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Job, 0, len(s.jobs))
	for name, j := range s.jobs {
		entry := s.cron.Entry(j.id)
		out = append(out, Job{Name: name, Spec: j.spec, Next: entry.Next, Prev: entry.Prev})
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		if s.ctx.Err() != nil {
			s.ctx, s.cancel = context.WithCancel(context.Background())
		}
		s.cron.Start()
		s.started = true
	}
}

// Stop halts the scheduler, cancels running jobs and waits for them until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.cancel()
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts interfaces.Logger to cron.Logger
type cronLogger struct {
	logger interfaces.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, fields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	f := fields(keysAndValues)
	f["error"] = fmt.Sprint(err)
	l.logger.Error("cron: "+msg, f)
}

func fields(keysAndValues []interface{}) map[string]interface{} {
	f := make(map[string]interface{}, len(keysAndValues)/2+1)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
