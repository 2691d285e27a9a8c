// Package feed fans observation change events out to downstream sinks
// (the Kafka topic and live WebSocket clients) off the request path.
package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/nivo-observations/internal/domain"
	"github.com/couchcryptid/nivo-observations/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// Sink receives batches of feed events. Name labels its delivery metrics.
type Sink interface {
	Name() string
	PublishBatch(ctx context.Context, events []domain.FeedEvent) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
	maxAttempts    = 4

	// Upper bound on delivering what is still queued once Run is cancelled.
	drainTimeout = 3 * time.Second
)

// Dispatcher buffers feed events and delivers them to every sink in batches.
// A failing sink is retried with backoff and then skipped for that batch, so
// one broken sink never stalls the others.
type Dispatcher struct {
	events    chan domain.FeedEvent
	sinks     []Sink
	logger    *slog.Logger
	metrics   *observability.Metrics
	batchSize int
}

// NewDispatcher creates a Dispatcher holding up to bufferSize pending events.
func NewDispatcher(logger *slog.Logger, metrics *observability.Metrics, batchSize, bufferSize int, sinks ...Sink) *Dispatcher {
	if batchSize <= 0 {
		batchSize = 1
	}
	if bufferSize < batchSize {
		bufferSize = batchSize
	}
	return &Dispatcher{
		events:    make(chan domain.FeedEvent, bufferSize),
		sinks:     sinks,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// Enqueue queues an event without blocking. It reports false and drops the
// event when the buffer is full.
func (d *Dispatcher) Enqueue(event domain.FeedEvent) bool {
	select {
	case d.events <- event:
		return true
	default:
		d.metrics.FeedDropped.Inc()
		d.logger.Warn("feed buffer full, dropping event", "type", event.Type, "id", event.ObservationID)
		return false
	}
}

// Run delivers queued events until the context is cancelled, then flushes
// whatever is still queued within drainTimeout before returning.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("feed dispatcher started", "batch_size", d.batchSize, "sinks", len(d.sinks))
	for {
		batch, ok := d.nextBatch(ctx)
		if !ok || ctx.Err() != nil {
			d.logger.Info("feed dispatcher stopping", "reason", ctx.Err(), "pending", len(batch)+len(d.events))
			d.drain(batch)
			return nil
		}
		d.deliver(ctx, batch)
	}
}

// drain delivers batch and every event still queued under its own deadline.
func (d *Dispatcher) drain(batch []domain.FeedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		batch = d.fill(batch)
		if len(batch) == 0 {
			return
		}
		d.deliver(ctx, batch)
		if ctx.Err() != nil {
			if n := len(d.events); n > 0 {
				d.metrics.FeedDropped.Add(float64(n))
				d.logger.Warn("feed drain timed out, dropping queued events", "pending", n)
			}
			return
		}
		batch = nil
	}
}

// nextBatch blocks for the first event, then drains whatever else is already
// queued up to batchSize. Returns false once the context is done.
func (d *Dispatcher) nextBatch(ctx context.Context) ([]domain.FeedEvent, bool) {
	var first domain.FeedEvent
	select {
	case <-ctx.Done():
		return nil, false
	case first = <-d.events:
	}

	batch := make([]domain.FeedEvent, 1, d.batchSize)
	batch[0] = first
	return d.fill(batch), true
}

// fill appends already-queued events to batch without blocking, up to batchSize.
func (d *Dispatcher) fill(batch []domain.FeedEvent) []domain.FeedEvent {
	for len(batch) < d.batchSize {
		select {
		case ev := <-d.events:
			batch = append(batch, ev)
		default:
			return batch
		}
	}
	return batch
}

func (d *Dispatcher) deliver(ctx context.Context, batch []domain.FeedEvent) {
	for _, sink := range d.sinks {
		name := sink.Name()
		if err := d.publishWithRetry(ctx, sink, batch); err != nil {
			d.metrics.FeedErrors.WithLabelValues(name).Add(float64(len(batch)))
			d.logger.Error("feed publish failed, dropping batch", "sink", name, "error", err, "batch_size", len(batch))
			continue
		}
		d.metrics.FeedPublished.WithLabelValues(name).Add(float64(len(batch)))
	}
}

func (d *Dispatcher) publishWithRetry(ctx context.Context, sink Sink, batch []domain.FeedEvent) error {
	backoff := initialBackoff
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = sink.PublishBatch(ctx, batch); err == nil {
			return nil
		}
		if attempt == maxAttempts || !retry.SleepWithContext(ctx, backoff) {
			break
		}
		d.logger.Warn("feed publish retry", "sink", sink.Name(), "error", err, "attempt", attempt)
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	return err
}
