// Package jobs holds background work scheduled with cron.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const sweepTimeout = 2 * time.Minute

// Sweeper closes programs whose application deadline has passed.
type Sweeper interface {
	SweepDeadlines(ctx context.Context) (int64, error)
}

// DeadlineSweeper runs Sweeper on a cron schedule. Overlapping runs are
// skipped and a panicking run does not kill the scheduler.
type DeadlineSweeper struct {
	cron    *cron.Cron
	sweeper Sweeper
	timeout time.Duration
}

func NewDeadlineSweeper(spec string, s Sweeper) (*DeadlineSweeper, error) {
	d := &DeadlineSweeper{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		sweeper: s,
		timeout: sweepTimeout,
	}
	if _, err := d.cron.AddFunc(spec, d.Run); err != nil {
		return nil, fmt.Errorf("deadline sweep schedule %q: %w", spec, err)
	}
	return d, nil
}

// Run performs one sweep. Failures are logged; the next tick retries.
func (d *DeadlineSweeper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if _, err := d.sweeper.SweepDeadlines(ctx); err != nil {
		log.Printf("[DEADLINE-SWEEP] %v", err)
	}
}

func (d *DeadlineSweeper) Start() { d.cron.Start() }

// Stop halts the schedule and returns a context that is done once a
// running sweep has finished.
func (d *DeadlineSweeper) Stop() context.Context { return d.cron.Stop() }
