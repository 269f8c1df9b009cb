package worker

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/usecase"
	"github.com/secmon-lab/sortie/pkg/utils/errutil"
	"github.com/secmon-lab/sortie/pkg/utils/logging"
)

// FleetChecker runs one fleet-wide conflict check
type FleetChecker interface {
	CheckFleet(ctx context.Context, from, to time.Time) (*usecase.FleetReport, error)
}

// FleetCheckWorker periodically checks every flight plan departing within the horizon for conflicts
// and keeps the latest report.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - Reports are kept in memory only and lost on restart
type FleetCheckWorker struct {
	checker  FleetChecker
	interval time.Duration
	horizon  time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}

	mu   sync.RWMutex
	last *usecase.FleetReport
}

type FleetCheckOption func(*FleetCheckWorker)

// WithHorizon sets how far ahead of now departures are checked. Default is 24 hours.
func WithHorizon(d time.Duration) FleetCheckOption {
	return func(w *FleetCheckWorker) {
		w.horizon = d
	}
}

func WithNow(now func() time.Time) FleetCheckOption {
	return func(w *FleetCheckWorker) {
		w.now = now
	}
}

// NewFleetCheckWorker creates a new worker for periodic fleet conflict checks
func NewFleetCheckWorker(checker FleetChecker, interval time.Duration, opts ...FleetCheckOption) *FleetCheckWorker {
	w := &FleetCheckWorker{
		checker:  checker,
		interval: interval,
		horizon:  24 * time.Hour,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins the background check loop. The first check runs immediately without blocking.
func (w *FleetCheckWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("fleet check interval must be positive", goerr.V("interval", w.interval.String()))
	}

	logging.Default().Info("Fleet check worker starting",
		"interval", w.interval.String(),
		"horizon", w.horizon.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *FleetCheckWorker) Stop() {
	logging.Default().Info("Fleet check worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Fleet check worker stopped")
}

// LastReport returns the most recent successful report, or nil before the first one
func (w *FleetCheckWorker) LastReport() *usecase.FleetReport {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}

func (w *FleetCheckWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.check(ctx); err != nil {
		_ = errutil.Handle(ctx, err, "Initial fleet check failed (will retry next interval)")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.check(ctx); err != nil {
				_ = errutil.Handle(ctx, err, "Fleet check failed (will retry next interval)")
			}

		case <-w.stopCh:
			logging.Default().Info("Fleet check worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Fleet check worker context cancelled")
			return
		}
	}
}

func (w *FleetCheckWorker) check(ctx context.Context) error {
	from := w.now()
	report, err := w.checker.CheckFleet(ctx, from, from.Add(w.horizon))
	if err != nil {
		return goerr.Wrap(err, "failed to check fleet conflicts")
	}

	for _, f := range report.CrossMission {
		logging.Default().Warn("Cross-mission flight plan conflict",
			"kind", f.Kind,
			"plans", f.PlanIDs,
			"message", f.Message)
	}
	for missionID, findings := range report.ByMission {
		logging.Default().Warn("Mission flight plan conflicts",
			"mission_id", missionID,
			"count", len(findings))
	}

	w.mu.Lock()
	w.last = report
	w.mu.Unlock()
	return nil
}
