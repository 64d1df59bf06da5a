package sync

import (
	"context"
	"time"

	"comment-mirror/core/pool"
	"comment-mirror/feature/comments/api"
	"comment-mirror/feature/comments/models"

	"go.uber.org/zap"
)

// Incremental re-fetches media and merges the results against the full
// index with field-level change detection, then rewrites the mirror in one
// atomic pass. activeMedia narrows the run to targets an external activity
// signal flagged; when nil,
// every media with stored comments is re-scanned. deletionHints marks
// comment IDs an external signal saw deleted upstream; hinted rows are
// flipped to deleted rather than removed.
func (o *Orchestrator) Incremental(ctx context.Context, activeMedia []int64, deletionHints []int64) (*Report, error) {
	report := &Report{Mode: "incremental"}
	start := time.Now()

	targets := activeMedia
	if targets == nil {
		targets = o.store.MediaWithComments()
	}
	report.Targets = len(targets)

	if len(targets) == 0 && len(deletionHints) == 0 {
		o.log.Info("No active media to sync")
		report.Elapsed = time.Since(start)
		return report, nil
	}

	o.log.Info("Starting incremental sync",
		zap.Int("targets", len(targets)),
		zap.Int("deletion_hints", len(deletionHints)),
		zap.Int("workers", o.cfg.DailyWorkers),
		zap.Int("batch_size", o.cfg.BatchSize),
	)

	// Batched so a mirror-wide re-scan does not submit thousands of
	// targets to the pool at once.
	for i := 0; i < len(targets); i += o.cfg.BatchSize {
		end := i + o.cfg.BatchSize
		if end > len(targets) {
			end = len(targets)
		}
		batch := targets[i:end]
		o.log.Info("Processing batch",
			zap.Int("batch", i/o.cfg.BatchSize+1),
			zap.Int("batches", (len(targets)+o.cfg.BatchSize-1)/o.cfg.BatchSize),
		)

		results := pool.Run(ctx, batch, o.cfg.DailyWorkers,
			func(ctx context.Context, mediaID int64) (api.FetchResult, error) {
				return o.fetcher.FetchMediaComments(ctx, mediaID)
			})

		for _, r := range results {
			if r.Err != nil {
				report.Failed++
				o.log.Warn("Media fetch failed",
					zap.Int64("media_id", r.Target), zap.Error(r.Err))
				continue
			}

			res := r.Value
			for _, raw := range res.Comments {
				o.mergeFetched(raw, report)
			}

			switch {
			case res.Partial:
				report.Failed++
			case len(res.Comments) == 0:
				if !o.store.IsScraped(r.Target) {
					o.store.MarkEmpty(r.Target)
					report.Empty++
				}
			}
		}
	}

	o.applyDeletionHints(deletionHints, report)

	if err := o.store.CommitRewrite(); err != nil {
		return nil, err
	}

	report.Elapsed = time.Since(start)
	return report, nil
}

func (o *Orchestrator) mergeFetched(raw models.Raw, report *Report) {
	incoming := models.Normalize(raw)

	var existing *models.Comment
	if cur, ok := o.store.Get(incoming.ID); ok {
		existing = &cur
	}

	kept, kind := models.Classify(incoming, existing)
	o.store.Merge(kept, kind)

	switch kind {
	case models.ChangeNew:
		report.New++
	case models.ChangeUpdated:
		report.Updated++
	default:
		report.Unchanged++
	}
}

// applyDeletionHints flips hinted comments to deleted. The rows stay in the
// mirror; only the flag and the change marker move.
func (o *Orchestrator) applyDeletionHints(hints []int64, report *Report) {
	for _, id := range hints {
		cur, ok := o.store.Get(id)
		if !ok || cur.Deleted {
			continue
		}
		upd := cur
		upd.Deleted = true
		kept, kind := models.Classify(upd, &cur)
		o.store.Merge(kept, kind)
		if kind == models.ChangeUpdated {
			report.Updated++
			o.log.Info("Comment flagged deleted", zap.Int64("comment_id", id))
		}
	}
}
