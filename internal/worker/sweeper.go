package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kbtale/lease-sentinel/internal/lock"
	"github.com/kbtale/lease-sentinel/internal/sweep"
)

// Sweeper runs scheduled dispatch sweeps until stopped. The schedule is a
// standard 5-field cron spec evaluated in UTC, matching the day arithmetic
// of the sweep itself.
type Sweeper struct {
	Sweep    *sweep.Sweeper
	Lock     *lock.SweepLock
	Schedule string
}

func NewSweeper(sw *sweep.Sweeper, lk *lock.SweepLock, schedule string) *Sweeper {
	return &Sweeper{Sweep: sw, Lock: lk, Schedule: schedule}
}

// RunOnce executes a single guarded sweep. A held lock is a skip, not an
// error; a store-level sweep failure is returned to the caller.
func (w *Sweeper) RunOnce(ctx context.Context) error {
	release, ok := w.Lock.TryLock(ctx)
	if !ok {
		log.Printf("[sweeper] skipped: another sweep holds the lock")
		return nil
	}
	defer release()

	rep, err := w.Sweep.Run(ctx)
	if err != nil {
		return err
	}

	log.Printf("[sweeper] done: date=%s processed=%d fired=%d failed=%d took=%s",
		rep.Date, rep.Processed, rep.Fired, rep.Failed, rep.Duration)
	return nil
}

// Run blocks, firing sweeps on the schedule until ctx is cancelled, then
// waits for a running sweep to finish.
func (w *Sweeper) Run(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc(w.Schedule, func() {
		if err := w.RunOnce(ctx); err != nil {
			log.Printf("[sweeper] sweep failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("parse sweep schedule %q: %w", w.Schedule, err)
	}

	c.Start()
	log.Printf("[sweeper] started schedule=%q", w.Schedule)

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}
