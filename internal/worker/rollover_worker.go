package worker

import (
	"context"
	"time"

	"housebudget/internal/log"
)

// Roller opens the clock's month on the ledger when needed.
type Roller interface {
	Rollover(ctx context.Context) (bool, error)
}

// RolloverWorker checks for a new month on a fixed interval.
type RolloverWorker struct {
	roller   Roller
	interval time.Duration
	logger   *log.Logger
}

func NewRolloverWorker(roller Roller, interval time.Duration, logger *log.Logger) *RolloverWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &RolloverWorker{
		roller:   roller,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Tick runs one rollover check.
func (w *RolloverWorker) Tick(ctx context.Context) error {
	changed, err := w.roller.Rollover(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Month rollover failed",
			log.FieldOperation, log.OpRollover,
			log.FieldError, err)
		return err
	}
	if changed {
		w.logger.InfoContext(ctx, "Opened new budget month", log.FieldOperation, log.OpRollover)
	}
	return nil
}

// Run ticks immediately and then on every interval until ctx is done.
// Tick errors are logged and do not stop the loop.
func (w *RolloverWorker) Run(ctx context.Context) error {
	return RunEvery(ctx, w.interval, func(ctx context.Context) {
		_ = w.Tick(ctx)
	})
}

// RunEvery calls fn now and after every interval until ctx is done.
func RunEvery(ctx context.Context, interval time.Duration, fn func(context.Context)) error {
	fn(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn(ctx)
		}
	}
}
