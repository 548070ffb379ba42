package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Runner drives the scan job on a fixed interval. Passes run strictly one
// after another on a single loop, so two passes can never race on the same
// chain's watermark.
type Runner struct {
	job      *Job
	interval time.Duration
	logger   zerolog.Logger
}

// NewRunner creates a runner for the job.
func NewRunner(job *Job, interval time.Duration, logger zerolog.Logger) *Runner {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Runner{
		job:      job,
		interval: interval,
		logger:   logger.With().Str("component", "scan_runner").Logger(),
	}
}

// Start runs one pass immediately, then one per tick until the context is
// cancelled.
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info().
		Dur("interval", r.interval).
		Msg("scan runner started")

	r.runOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("scan runner stopped")
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	start := time.Now()
	if err := r.job.Run(ctx); err != nil {
		r.logger.Error().Err(err).Msg("scan pass aborted")
		return
	}
	r.logger.Debug().
		Dur("took", time.Since(start)).
		Msg("scan pass completed")
}
