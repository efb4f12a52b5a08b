package patterns

import (
	"errors"
	"fmt"
	"time"

	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/metrics"
)

// ErrBulkheadFull is returned when no slot frees up within the wait time
var ErrBulkheadFull = errors.New("bulkhead full")

// Bulkhead caps how many invoices render at once, so a download-all run
// cannot starve single downloads
type Bulkhead struct {
	semaphore chan struct{}
	wait      time.Duration
	name      string
	service   string
}

// NewBulkhead creates a new bulkhead with specified capacity
func NewBulkhead(size int, wait time.Duration, name, service string) *Bulkhead {
	if size <= 0 {
		size = 1
	}
	return &Bulkhead{
		semaphore: make(chan struct{}, size),
		wait:      wait,
		name:      name,
		service:   service,
	}
}

// Execute runs fn within the bulkhead's limits
func (b *Bulkhead) Execute(fn func() error) error {
	timer := time.NewTimer(b.wait)
	defer timer.Stop()

	select {
	case b.semaphore <- struct{}{}:
		metrics.BulkheadActiveRequests.WithLabelValues(b.service, b.name).Inc()

		defer func() {
			<-b.semaphore
			metrics.BulkheadActiveRequests.WithLabelValues(b.service, b.name).Dec()
		}()

		return fn()

	case <-timer.C:
		metrics.BulkheadRejectedRequests.WithLabelValues(b.service, b.name).Inc()
		return fmt.Errorf("bulkhead %s: %w", b.name, ErrBulkheadFull)
	}
}

// Capacity returns the number of slots
func (b *Bulkhead) Capacity() int {
	return cap(b.semaphore)
}
