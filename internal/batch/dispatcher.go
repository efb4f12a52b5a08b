// Package batch generates invoices for many orders at once, issuing one
// generation every interval so a browser-side download-all is not flooded
// with simultaneous large files.
package batch

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/invoice"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/metrics"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/models"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/patterns"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/storage"
)

// Generator produces one invoice artifact per order
type Generator interface {
	Generate(order *models.Order) (*invoice.Artifact, error)
}

// Dispatcher issues generations on a stagger queue. It never waits for, nor
// collects, the outcome of a generation.
type Dispatcher struct {
	generator Generator
	sink      storage.Sink
	stagger   *patterns.Stagger
	bulkhead  *patterns.Bulkhead
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithStagger replaces the default 300ms queue
func WithStagger(s *patterns.Stagger) Option {
	return func(d *Dispatcher) { d.stagger = s }
}

// WithBulkhead bounds how many generations run at once
func WithBulkhead(b *patterns.Bulkhead) Option {
	return func(d *Dispatcher) { d.bulkhead = b }
}

// NewDispatcher creates a dispatcher delivering artifacts to sink
func NewDispatcher(generator Generator, sink storage.Sink, service string, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		generator: generator,
		sink:      sink,
		stagger:   patterns.NewStagger(patterns.DefaultStaggerInterval, "batch", service),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Interval returns the spacing between two issued generations
func (d *Dispatcher) Interval() time.Duration {
	return d.stagger.Interval()
}

// Run is a scheduled download-all
type Run struct {
	ID    string
	Total int
	*patterns.StaggerRun
}

// GenerateAll schedules one generation per order, in input order, and
// returns at once. ok is false when there is nothing to do.
func (d *Dispatcher) GenerateAll(ctx context.Context, orders []*models.Order) (run *Run, ok bool) {
	if len(orders) == 0 {
		metrics.BatchRuns.WithLabelValues(models.BatchStatusNothingToDo).Inc()
		log.Info("No orders to generate invoices for")
		return nil, false
	}

	runID := uuid.NewString()
	tasks := make([]patterns.Task, 0, len(orders))
	for i, order := range orders {
		i, order := i, order
		tasks = append(tasks, func(ctx context.Context) {
			d.invoke(ctx, runID, i, order)
		})
	}

	log.WithFields(log.Fields{
		"run_id":      runID,
		"orders":      len(orders),
		"interval_ms": d.stagger.Interval().Milliseconds(),
	}).Info("Scheduling batch invoice generation")

	run = &Run{
		ID:         runID,
		Total:      len(orders),
		StaggerRun: d.stagger.Schedule(ctx, tasks),
	}
	metrics.BatchRuns.WithLabelValues(models.BatchStatusScheduled).Inc()

	go func() {
		<-run.Done()
		if skipped := run.Skipped(); skipped > 0 {
			metrics.BatchInvocations.WithLabelValues("skipped").Add(float64(skipped))
			log.WithFields(log.Fields{
				"run_id":  runID,
				"issued":  run.Issued(),
				"skipped": skipped,
			}).Warn("Batch invoice generation cancelled")
		}
	}()

	return run, true
}

// invoke runs one generation. Failures are logged and counted only.
func (d *Dispatcher) invoke(ctx context.Context, runID string, index int, order *models.Order) {
	metrics.BatchInvocations.WithLabelValues("issued").Inc()
	logger := log.WithFields(log.Fields{
		"run_id":   runID,
		"index":    index,
		"order_id": orderID(order),
	})

	var artifact *invoice.Artifact
	generate := func() error {
		var err error
		artifact, err = d.generator.Generate(order)
		return err
	}

	var err error
	if d.bulkhead != nil {
		err = d.bulkhead.Execute(generate)
	} else {
		err = generate()
	}
	if err != nil {
		logger.WithError(err).Error("Batch invoice generation failed")
		return
	}

	if err := d.sink.Deliver(ctx, artifact); err != nil {
		logger.WithError(err).WithField("filename", artifact.Filename).Error("Failed to deliver invoice")
		return
	}
	logger.WithField("filename", artifact.Filename).Info("Invoice generated")
}

func orderID(order *models.Order) string {
	if order == nil {
		return ""
	}
	return order.ID
}
