package task

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/example/task-approval/modules/cache"
	"github.com/go-monolith/mono/pkg/types"
)

const (
	reconcileLease = "reconcile-counters"
	releaseTimeout = 5 * time.Second
)

// Reconciler periodically repairs project counters. With a Locker, only the
// replica holding the lease runs a pass.
type Reconciler struct {
	service  *Service
	locker   *cache.Locker
	interval time.Duration
	logger   types.Logger

	releaseTimeout time.Duration

	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

// NewReconciler creates a Reconciler. locker may be nil.
func NewReconciler(service *Service, locker *cache.Locker, interval time.Duration, logger types.Logger) *Reconciler {
	return &Reconciler{
		service:  service,
		locker:   locker,
		interval: interval,
		logger:   logger,

		releaseTimeout: releaseTimeout,
	}
}

// Start launches the background loop.
func (r *Reconciler) Start() {
	r.stopChan = make(chan struct{})
	r.doneChan = make(chan struct{})
	go r.run()
	r.logger.Info("Counter reconciler started", "interval", r.interval.String(), "lease", r.locker != nil)
}

func (r *Reconciler) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneChan)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-r.stopChan
		cancel()
	}()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("Counter reconciliation failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single pass. It returns a nil report when another
// replica holds the lease.
func (r *Reconciler) RunOnce(ctx context.Context) (*ReconcileReport, error) {
	if r.locker != nil {
		lease, err := r.locker.Acquire(ctx, reconcileLease, r.interval)
		if errors.Is(err, cache.ErrLeaseHeld) {
			r.logger.Debug("Reconciliation skipped, lease held elsewhere")
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		defer func() {
			// The pass context may already be cancelled by Stop; release on a
			// fresh bounded context so a stalled Redis cannot hold up shutdown.
			releaseCtx, cancel := context.WithTimeout(context.Background(), r.releaseTimeout)
			defer cancel()
			if err := lease.Release(releaseCtx); err != nil {
				r.logger.Warn("Failed to release reconcile lease", "error", err)
			}
		}()
	}

	report, err := r.service.Reconcile(ctx)
	if err != nil {
		return nil, err
	}
	if len(report.Corrected) > 0 || len(report.Failed) > 0 {
		r.logger.Info("Counter reconciliation finished",
			"checked", report.Checked, "corrected", len(report.Corrected), "failed", len(report.Failed))
	}
	return report, nil
}

// Stop ends the loop and waits for an in-flight pass to finish.
func (r *Reconciler) Stop(ctx context.Context) error {
	if r.stopChan == nil {
		return nil
	}
	r.stopOnce.Do(func() {
		close(r.stopChan)
	})

	select {
	case <-r.doneChan:
		r.logger.Info("Counter reconciler stopped")
	case <-ctx.Done():
		r.logger.Warn("Counter reconciler shutdown timeout exceeded")
		return ctx.Err()
	}
	return nil
}
