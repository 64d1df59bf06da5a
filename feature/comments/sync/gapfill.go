package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"comment-mirror/core/pool"
	"comment-mirror/feature/comments/api"
	"comment-mirror/feature/comments/models"

	"go.uber.org/zap"
)

// GapFill point-fetches every comment ID in [1, max known ID] that is not
// yet in the mirror. IDs confirmed absent upstream get a sentinel row so
// later runs skip them; the strategy is terminal once every gap is either
// filled or confirmed absent. Failed fetches stay in the work list.
func (o *Orchestrator) GapFill(ctx context.Context) (*Report, error) {
	report := &Report{Mode: "gapfill"}
	start := time.Now()

	if o.store.Len() == 0 {
		return nil, errors.New("mirror is empty; run a backfill before gap-fill")
	}

	missing := o.store.MissingIDs()
	report.Targets = len(missing)
	if len(missing) == 0 {
		o.log.Info("Comment ID sequence is complete",
			zap.Int64("max_id", o.store.MaxID()))
		report.Elapsed = time.Since(start)
		return report, nil
	}

	o.log.Info("Starting gap-fill",
		zap.Int64("max_id", o.store.MaxID()),
		zap.Int("missing", len(missing)),
		zap.Int("workers", o.cfg.GapWorkers),
	)

	appender, err := o.store.NewAppender()
	if err != nil {
		return nil, err
	}
	defer appender.Close()

	results := pool.Run(ctx, missing, o.cfg.GapWorkers,
		func(ctx context.Context, commentID int64) (models.Raw, error) {
			return o.fetcher.FetchComment(ctx, commentID)
		})

	checked := 0
	for _, r := range results {
		checked++
		if r.Err != nil {
			if errors.Is(r.Err, api.ErrNotFound) {
				if werr := appender.AppendAbsentMarker(r.Target); werr != nil {
					return nil, fmt.Errorf("absent marker failed for comment %d: %w", r.Target, werr)
				}
				report.Absent++
			} else {
				report.Failed++
				o.log.Warn("Comment fetch failed",
					zap.Int64("comment_id", r.Target), zap.Error(r.Err))
			}
			continue
		}

		c := models.Normalize(r.Value)
		c, _ = models.Classify(c, nil)
		wrote, werr := appender.Append(c)
		if werr != nil {
			return nil, fmt.Errorf("append failed for comment %d: %w", r.Target, werr)
		}
		if wrote {
			report.New++
		}

		if checked%20 == 0 || checked == len(missing) {
			o.log.Info("Gap-fill progress",
				zap.Int("checked", checked),
				zap.Int("total", len(missing)),
				zap.Int("found", report.New),
				zap.Duration("elapsed", time.Since(start)),
			)
		}
	}

	report.Elapsed = time.Since(start)
	return report, nil
}
