package sync

import (
	"context"
	"fmt"
	"time"

	"comment-mirror/core/pool"
	"comment-mirror/feature/comments/api"
	"comment-mirror/feature/comments/models"

	"go.uber.org/zap"
)

// Backfill visits every catalog media ID not yet marked scraped and appends
// the comments it finds. Append mode is safe here because targets are
// filtered against the scraped set, so the pass never revisits existing
// records.
func (o *Orchestrator) Backfill(ctx context.Context, catalog []int64) (*Report, error) {
	report := &Report{Mode: "backfill"}
	start := time.Now()

	var targets []int64
	for _, id := range catalog {
		if !o.store.IsScraped(id) {
			targets = append(targets, id)
		}
	}
	report.Targets = len(targets)

	if len(targets) == 0 {
		o.log.Info("All catalog media already in the mirror")
		report.Elapsed = time.Since(start)
		return report, nil
	}
	o.log.Info("Starting backfill",
		zap.Int("targets", len(targets)),
		zap.Int("workers", o.cfg.BackfillWorkers),
	)

	appender, err := o.store.NewAppender()
	if err != nil {
		return nil, err
	}
	defer appender.Close()

	results := pool.Run(ctx, targets, o.cfg.BackfillWorkers,
		func(ctx context.Context, mediaID int64) (api.FetchResult, error) {
			return o.fetcher.FetchMediaComments(ctx, mediaID)
		})

	done := 0
	for _, r := range results {
		done++
		if r.Err != nil {
			report.Failed++
			o.log.Warn("Media fetch failed",
				zap.Int64("media_id", r.Target), zap.Error(r.Err))
			continue
		}

		res := r.Value
		appended := 0
		for _, raw := range res.Comments {
			c := models.Normalize(raw)
			if o.store.Has(c.ID) {
				continue
			}
			c, _ = models.Classify(c, nil)
			wrote, werr := appender.Append(c)
			if werr != nil {
				return nil, fmt.Errorf("append failed for media %d: %w", r.Target, werr)
			}
			if wrote {
				appended++
			}
		}
		report.New += appended

		switch {
		case res.Partial:
			// Keep what was fetched but count the target as failed; if it
			// got no rows it stays unscraped and is retried next run.
			report.Failed++
		case appended == 0 && len(res.Comments) == 0:
			if err := appender.AppendEmptyMarker(r.Target); err != nil {
				return nil, fmt.Errorf("empty marker failed for media %d: %w", r.Target, err)
			}
			report.Empty++
		}

		o.log.Info("Media scraped",
			zap.Int64("media_id", r.Target),
			zap.Int("comments", appended),
			zap.Int("done", done),
			zap.Int("total", len(targets)),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	report.Elapsed = time.Since(start)
	return report, nil
}
