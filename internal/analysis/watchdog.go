package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rivalscope/rivalscope/internal/config"
	"github.com/rivalscope/rivalscope/internal/store"
)

// staleJobMessage is persisted on jobs the watchdog fails.
const staleJobMessage = "analysis timed out: the job made no progress and was marked as failed"

// Watchdog periodically fails running jobs that have not been updated for
// longer than staleAfter. A crashed server can leave jobs stuck at running
// forever; this is the only path that terminates them.
type Watchdog struct {
	store      store.Store
	interval   time.Duration
	staleAfter time.Duration
	cron       *cron.Cron
}

// NewWatchdog creates a watchdog from config.
func NewWatchdog(st store.Store, cfg config.WatchdogConfig) *Watchdog {
	return &Watchdog{
		store:      st,
		interval:   cfg.Interval,
		staleAfter: cfg.StaleAfter,
	}
}

// Start schedules the sweep. Call Stop on shutdown.
func (w *Watchdog) Start() error {
	w.cron = cron.New()
	if _, err := w.cron.AddFunc(fmt.Sprintf("@every %s", w.interval), w.sweep); err != nil {
		return fmt.Errorf("scheduling watchdog sweep: %w", err)
	}
	w.cron.Start()
	slog.Info("stale job watchdog started", "interval", w.interval, "stale_after", w.staleAfter)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (w *Watchdog) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
}

func (w *Watchdog) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-w.staleAfter)
	n, err := w.store.FailStaleJobs(ctx, cutoff, staleJobMessage)
	if err != nil {
		slog.Error("watchdog sweep failed", "error", err)
		return
	}
	if n > 0 {
		slog.Warn("watchdog failed stale jobs", "count", n, "cutoff", cutoff)
	}
}
