package sync

// Config holds tuning for the reconciliation strategies.
type Config struct {
	// CatalogPath is the flat JSON array of candidate media IDs consumed
	// by the backfill strategy.
	CatalogPath string `mapstructure:"catalog_path" default:"dantotsu_unique_media.json"`
	// BackfillWorkers sizes the pool for paginated media fetches. Kept
	// narrow to avoid upstream throttling across many multi-page targets.
	BackfillWorkers int `mapstructure:"backfill_workers" default:"3"`
	// GapWorkers sizes the pool for single-comment point fetches, which
	// are cheap enough to run wider.
	GapWorkers int `mapstructure:"gap_workers" default:"5"`
	// DailyWorkers sizes the pool for incremental re-scans.
	DailyWorkers int `mapstructure:"daily_workers" default:"3"`
	// BatchSize is how many media IDs an incremental pass processes per
	// batch, to avoid submitting the whole mirror at once.
	BatchSize int `mapstructure:"batch_size" default:"50"`
}
