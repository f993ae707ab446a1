package notification

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"servicematch/internal/logger"
)

const defaultDeliveryTimeout = 10 * time.Second

// Sink is one delivery channel for events.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, e Event) error
}

// Dispatcher delivers events to every sink in the background. Delivery failures
// are logged and dropped; they never reach the caller that produced the event.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks, timeout: defaultDeliveryTimeout}
}

// WithTimeout sets the per-batch delivery deadline.
func (d *Dispatcher) WithTimeout(timeout time.Duration) *Dispatcher {
	if timeout > 0 {
		d.timeout = timeout
	}
	return d
}

// Publish schedules delivery. The request context only contributes values
// (request id, user id) for logging; its cancellation is ignored.
func (d *Dispatcher) Publish(ctx context.Context, events ...Event) {
	if len(events) == 0 || len(d.sinks) == 0 {
		return
	}
	batch := append([]Event(nil), events...)
	base := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(base, batch)
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, events []Event) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	for _, e := range events {
		var g errgroup.Group
		for _, sink := range d.sinks {
			g.Go(func() error {
				if err := sink.Deliver(ctx, e); err != nil {
					logger.CtxWithError(ctx, "notification delivery failed", err,
						"sink", sink.Name(), "kind", e.Kind, "recipient_id", e.UserID)
					return err
				}
				return nil
			})
		}
		_ = g.Wait()
	}
}

// Wait blocks until every published batch has been handled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown waits for in-flight deliveries or gives up when ctx is done.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
