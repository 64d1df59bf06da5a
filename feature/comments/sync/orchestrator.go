package sync

import (
	"context"

	"comment-mirror/feature/comments/api"
	"comment-mirror/feature/comments/mirror"
	"comment-mirror/feature/comments/models"

	"go.uber.org/zap"
)

// Fetcher is the slice of the upstream client the strategies need.
// *api.Client satisfies it; tests substitute a scripted fake.
type Fetcher interface {
	FetchMediaComments(ctx context.Context, mediaID int64) (api.FetchResult, error)
	FetchUserComments(ctx context.Context, userID int64) (api.FetchResult, error)
	FetchComment(ctx context.Context, commentID int64) (models.Raw, error)
}

// Orchestrator composes the fetcher, the store, and the worker pool into
// named reconciliation strategies. It is the only mutator of the store's
// index: workers fetch, the orchestrator merges.
type Orchestrator struct {
	cfg     Config
	fetcher Fetcher
	store   *mirror.Store
	log     *zap.Logger
}

// New creates an orchestrator over an opened store.
func New(cfg Config, fetcher Fetcher, store *mirror.Store, log *zap.Logger) *Orchestrator {
	if cfg.BackfillWorkers < 1 {
		cfg.BackfillWorkers = 3
	}
	if cfg.GapWorkers < 1 {
		cfg.GapWorkers = 5
	}
	if cfg.DailyWorkers < 1 {
		cfg.DailyWorkers = 3
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 50
	}
	return &Orchestrator{cfg: cfg, fetcher: fetcher, store: store, log: log}
}
