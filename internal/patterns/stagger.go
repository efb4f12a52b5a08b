package patterns

import (
	"context"
	"sync"
	"time"

	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/metrics"
)

// DefaultStaggerInterval is the spacing between two batch issues
const DefaultStaggerInterval = 300 * time.Millisecond

// Task is one unit of work issued by a Stagger queue
type Task func(ctx context.Context)

// Stagger is a delayed-task queue: tasks are issued in order, each one a fixed
// interval after the previous issue. Issuing never waits for a task to finish.
type Stagger struct {
	interval time.Duration
	name     string
	service  string
}

// NewStagger creates a stagger queue with the given spacing
func NewStagger(interval time.Duration, name, service string) *Stagger {
	if interval < 0 {
		interval = 0
	}
	return &Stagger{
		interval: interval,
		name:     name,
		service:  service,
	}
}

// Interval returns the spacing between issues
func (s *Stagger) Interval() time.Duration {
	return s.interval
}

// StaggerRun tracks one scheduled sequence of tasks
type StaggerRun struct {
	done     chan struct{}
	inflight sync.WaitGroup

	mu       sync.Mutex
	issuedAt []time.Time
	skipped  int
}

// Schedule queues tasks and returns immediately. Cancelling ctx aborts the
// tasks not yet issued; issued tasks keep running with ctx's values but
// without its cancellation.
func (s *Stagger) Schedule(ctx context.Context, tasks []Task) *StaggerRun {
	run := &StaggerRun{done: make(chan struct{})}
	depth := metrics.StaggerQueueDepth.WithLabelValues(s.service, s.name)
	depth.Add(float64(len(tasks)))

	taskCtx := context.WithoutCancel(ctx)

	go func() {
		defer close(run.done)

		for i, task := range tasks {
			if i > 0 && !s.wait(ctx) {
				run.skip(len(tasks) - i)
				depth.Sub(float64(len(tasks) - i))
				return
			}
			if ctx.Err() != nil {
				run.skip(len(tasks) - i)
				depth.Sub(float64(len(tasks) - i))
				return
			}

			depth.Dec()
			run.issue(taskCtx, task)
		}
	}()

	return run
}

// wait blocks for one interval; false means ctx was cancelled first
func (s *Stagger) wait(ctx context.Context) bool {
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (r *StaggerRun) issue(ctx context.Context, task Task) {
	r.mu.Lock()
	r.issuedAt = append(r.issuedAt, time.Now())
	r.mu.Unlock()

	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		task(ctx)
	}()
}

func (r *StaggerRun) skip(n int) {
	r.mu.Lock()
	r.skipped += n
	r.mu.Unlock()
}

// Done is closed once every task has been issued or skipped
func (r *StaggerRun) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until issuing is over and every issued task has returned
func (r *StaggerRun) Wait() {
	<-r.done
	r.inflight.Wait()
}

// Issued returns how many tasks have been issued so far
func (r *StaggerRun) Issued() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.issuedAt)
}

// IssuedAt returns the issue time of every issued task, in issue order
func (r *StaggerRun) IssuedAt() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Time(nil), r.issuedAt...)
}

// Skipped returns how many tasks were dropped by cancellation
func (r *StaggerRun) Skipped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.skipped
}
