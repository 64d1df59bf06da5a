package sync

import (
	"time"

	"go.uber.org/zap"
)

// Report summarizes one reconciliation run. Every strategy returns one,
// and a run always ends by logging it, successful or not.
type Report struct {
	// Mode names the strategy that produced the report.
	Mode string
	// Targets is how many targets the strategy actually visited.
	Targets int
	// New, Updated, Unchanged count per-comment classifications.
	New       int
	Updated   int
	Unchanged int
	// Empty counts targets confirmed to have zero comments.
	Empty int
	// Failed counts targets whose fetch errored or came back partial.
	// Failed targets are not marked scraped, so the next run retries them.
	Failed int
	// Absent counts point-fetched IDs upstream confirmed do not exist
	// (gap-fill only).
	Absent int
	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// Log writes the end-of-run summary.
func (r *Report) Log(l *zap.Logger) {
	l.Info("Run complete",
		zap.String("mode", r.Mode),
		zap.Int("targets", r.Targets),
		zap.Int("new", r.New),
		zap.Int("updated", r.Updated),
		zap.Int("unchanged", r.Unchanged),
		zap.Int("empty", r.Empty),
		zap.Int("failed", r.Failed),
		zap.Int("absent", r.Absent),
		zap.Duration("elapsed", r.Elapsed),
	)
}
