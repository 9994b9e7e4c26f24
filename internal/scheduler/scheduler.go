// Package scheduler runs periodic background tasks.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task right away and then on each tick until ctx ends. Runs never
// overlap: a tick that fires during a slow run is dropped. Task errors are
// logged and do not stop the loop.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	log := slog.Default().With("task", name)
	runOnce := func() {
		start := time.Now()
		if err := task(ctx); err != nil {
			log.Warn("scheduled task failed", "err", err, "took", time.Since(start).Round(time.Millisecond))
			return
		}
		log.Debug("scheduled task done", "took", time.Since(start).Round(time.Millisecond))
	}

	runOnce()

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			runOnce()
		}
	}
}
