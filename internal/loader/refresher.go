package loader

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pumprand/pump-client/internal/domain"
	"github.com/pumprand/pump-client/internal/logger"
)

// Refresher re-runs the bulk load on a cron schedule
type Refresher struct {
	loader   *Loader
	schedule string
	limit    int
	sleep    time.Duration

	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewRefresher creates a refresher for the given cron spec, e.g. "@every 5m"
func NewRefresher(loader *Loader, schedule string, limit int, sleep time.Duration) *Refresher {
	return &Refresher{
		loader:    loader,
		schedule:  schedule,
		limit:     limit,
		sleep:     sleep,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the refresher's name
func (r *Refresher) Name() string {
	return "coin-refresher"
}

// Trigger runs a bulk load now. It waits for a load already in progress.
func (r *Refresher) Trigger(ctx context.Context) error {
	return r.loader.FetchAll(ctx, r.limit, r.sleep)
}

// RefreshCoin refetches a single coin outside the schedule
func (r *Refresher) RefreshCoin(ctx context.Context, id int64) (*domain.Coin, error) {
	return r.loader.RefreshCoin(ctx, id)
}

// Start schedules the refresh job and blocks until ctx is canceled or Stop is called
func (r *Refresher) Start(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return fmt.Errorf("refresher already running")
	}
	defer close(r.stoppedCh)

	cl := cronLogger{log: logger.Default().Sugar()}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	if _, err := c.AddFunc(r.schedule, func() {
		if err := r.Trigger(ctx); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("job", r.Name()))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule refresh %q: %w", r.schedule, err)
	}

	logger.InfoCtx(ctx, "Starting coin refresher", zap.String("schedule", r.schedule))
	c.Start()

	select {
	case <-ctx.Done():
	case <-r.stopChan:
	}

	<-c.Stop().Done()
	logger.InfoCtx(ctx, "Coin refresher stopped")
	return nil
}

// Stop stops the schedule and waits for a running job to finish
func (r *Refresher) Stop(ctx context.Context) error {
	if !r.running.CompareAndSwap(true, false) {
		return nil
	}
	close(r.stopChan)

	select {
	case <-r.stoppedCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
