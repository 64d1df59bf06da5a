package activity

import "context"

// Activity is what a feed scan found inside its time window.
type Activity struct {
	// MediaIDs are media that saw comment activity, deduplicated.
	MediaIDs []int64
	// DeletedCommentIDs are comments the feed reported as removed upstream.
	DeletedCommentIDs []int64
}

// Feed produces the set of recently active targets so an incremental sync
// can skip everything that did not change.
type Feed interface {
	Scan(ctx context.Context) (*Activity, error)
}
