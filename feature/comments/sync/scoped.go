package sync

import (
	"context"
	"time"

	"comment-mirror/feature/comments/mirror"
	"comment-mirror/feature/comments/models"

	"go.uber.org/zap"
)

// SyncAuthor fetches every comment by one author and writes them to a
// separate mirror at outPath, leaving the shared store untouched.
func (o *Orchestrator) SyncAuthor(ctx context.Context, userID int64, outPath string) (*Report, error) {
	report := &Report{Mode: "author", Targets: 1}
	start := time.Now()

	o.log.Info("Starting author sync",
		zap.Int64("user_id", userID), zap.String("out", outPath))

	res, err := o.fetcher.FetchUserComments(ctx, userID)
	if err != nil {
		return nil, err
	}
	if res.Partial {
		report.Failed++
	}

	out, err := mirror.Open(outPath, o.log)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	for _, raw := range res.Comments {
		incoming := models.Normalize(raw)

		var existing *models.Comment
		if cur, ok := out.Get(incoming.ID); ok {
			existing = &cur
		}
		kept, kind := models.Classify(incoming, existing)
		out.Merge(kept, kind)

		switch kind {
		case models.ChangeNew:
			report.New++
		case models.ChangeUpdated:
			report.Updated++
		default:
			report.Unchanged++
		}
	}

	if err := out.CommitRewrite(); err != nil {
		return nil, err
	}

	report.Elapsed = time.Since(start)
	return report, nil
}

// SyncWindow re-fetches one media ID and merges only the comments whose
// timestamp falls inside [from, to]. Rewrite mode, since existing rows may
// be updated.
func (o *Orchestrator) SyncWindow(ctx context.Context, mediaID int64, from, to time.Time) (*Report, error) {
	report := &Report{Mode: "window", Targets: 1}
	start := time.Now()

	o.log.Info("Starting window sync",
		zap.Int64("media_id", mediaID),
		zap.Time("from", from),
		zap.Time("to", to),
	)

	res, err := o.fetcher.FetchMediaComments(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	if res.Partial {
		report.Failed++
	}

	for _, raw := range res.Comments {
		incoming := models.Normalize(raw)

		ts, ok := models.ParseTimestamp(incoming.Timestamp)
		if !ok || ts.Before(from) || ts.After(to) {
			continue
		}
		o.mergeFetched(raw, report)
	}

	if err := o.store.CommitRewrite(); err != nil {
		return nil, err
	}

	report.Elapsed = time.Since(start)
	return report, nil
}
