package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// ReconcileWorker runs the reconciliation function on a fixed interval.
// SkipIfStillRunning makes each period single-flight: a tick still working
// when the next fires is left alone and the new tick is dropped, so the
// same ledger transaction can never be submitted twice by overlapping runs.
type ReconcileWorker struct {
	cron     *cron.Cron
	interval time.Duration
	job      func(ctx context.Context)
}

func NewReconcileWorker(interval time.Duration, job func(ctx context.Context)) *ReconcileWorker {
	logger := &cronSlogAdapter{}
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(logger),
		cron.Recover(logger),
	))

	w := &ReconcileWorker{
		cron:     c,
		interval: interval,
		job:      job,
	}

	c.Schedule(cron.Every(interval), cron.FuncJob(w.runOnce))
	return w
}

func (w *ReconcileWorker) runOnce() {
	w.job(context.Background())
}

func (w *ReconcileWorker) Start() {
	slog.Info("Reconcile worker started", "interval", w.interval)
	w.cron.Start()
}

// Stop halts scheduling and waits for an in-flight tick to finish.
func (w *ReconcileWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	slog.Info("Reconcile worker stopped")
}

// cronSlogAdapter bridges the cron logger interface onto slog.
type cronSlogAdapter struct{}

func (a *cronSlogAdapter) Info(msg string, keysAndValues ...interface{}) {
	slog.Info(fmt.Sprintf("cron: %s", msg), keysAndValues...)
}

func (a *cronSlogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{"error", err}, keysAndValues...)
	slog.Error(fmt.Sprintf("cron: %s", msg), args...)
}
