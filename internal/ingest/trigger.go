package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Trigger serializes runs for one source: in-process through Status and
// across processes through Lock. The scheduler, the HTTP API and the CLI all
// go through it.
type Trigger struct {
	Runner  *Runner
	Lock    *Lock // optional
	Status  *Status
	URL     string
	Timeout time.Duration

	wg sync.WaitGroup
}

// RunOnce performs one guarded run. ErrBusy is returned when another run
// holds either guard.
func (t *Trigger) RunOnce(ctx context.Context) (Summary, error) {
	if !t.Status.Begin(time.Now()) {
		return Summary{}, ErrBusy
	}
	return t.run(ctx)
}

// Start claims the run slot and ingests in the background until the run
// finishes or ctx is cancelled. It reports false if a run is already in
// progress in this process.
func (t *Trigger) Start(ctx context.Context) bool {
	if !t.Status.Begin(time.Now()) {
		return false
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if _, err := t.run(ctx); err != nil && t.Runner.Log != nil {
			t.Runner.Log.Warn("background ingest", slog.Any("err", err))
		}
	}()
	return true
}

// Wait blocks until every run started with Start has returned.
func (t *Trigger) Wait() { t.wg.Wait() }

func (t *Trigger) run(ctx context.Context) (Summary, error) {
	if t.Lock != nil {
		if err := t.Lock.TryAcquire(); err != nil {
			t.Status.abort()
			return Summary{}, err
		}
		defer t.Lock.Release()
	}

	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}
	sum, err := t.Runner.Run(ctx, t.URL)
	t.Status.End(sum, err)
	return sum, err
}
