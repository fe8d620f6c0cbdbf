package engine

import (
	"context"
	"log/slog"
)

// Driver serialises fact reports from many goroutines onto one engine.
//
// Game objects call Enqueue from wherever their behaviour runs; Run applies
// the reports one at a time, in FIFO order, on the goroutine that calls it.
//
// Thread-safety model:
//   - Enqueue(), Stop(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - the Engine must not be used directly while Run is active
type Driver struct {
	engine   *Engine
	queue    *factQueue
	onResult func(Fact, Report, error)
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithResultHandler is called on the Run goroutine after every applied report.
func WithResultHandler(fn func(Fact, Report, error)) DriverOption {
	return func(d *Driver) {
		d.onResult = fn
	}
}

// NewDriver creates a driver for e.
func NewDriver(e *Engine, opts ...DriverOption) *Driver {
	d := &Driver{
		engine: e,
		queue:  newFactQueue(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Enqueue submits a fact report. Returns false once the driver is stopped.
func (d *Driver) Enqueue(name string, value bool) bool {
	return d.queue.Enqueue(Fact{Name: name, Value: value})
}

// Pending returns the number of reports not yet applied.
func (d *Driver) Pending() int {
	return d.queue.Len()
}

// Run applies queued reports until ctx is cancelled or Stop is called.
//
// After Stop, reports already queued are drained before Run returns nil.
// Cancellation returns ctx.Err() without draining.
//
// A failed report is logged and processing continues: the engine keeps the
// state it reached, so there is nothing to retry.
func (d *Driver) Run(ctx context.Context) error {
	log := d.engine.logger.With("session", d.engine.session)
	log.Debug("driver starting")

	for {
		if f, ok := d.queue.TryDequeue(); ok {
			d.apply(log, f)
			continue
		}

		select {
		case <-ctx.Done():
			log.Debug("driver stopping: context cancelled")
			d.queue.Close()
			return ctx.Err()

		case _, open := <-d.queue.Wait():
			if !open && d.queue.Len() == 0 {
				log.Debug("driver stopping: queue closed")
				return nil
			}
		}
	}
}

func (d *Driver) apply(log *slog.Logger, f Fact) {
	r, err := d.engine.ReportFact(f.Name, f.Value)
	if err != nil {
		log.Error("fact report failed",
			"name", f.Name,
			"value", f.Value,
			"error", err,
		)
	}
	if d.onResult != nil {
		d.onResult(f, r, err)
	}
}

// Stop closes the queue. Run returns once the queue is drained.
func (d *Driver) Stop() {
	d.queue.Close()
}
