// Package sync composes the fetcher, the worker pool, and the mirror store
// into the named reconciliation strategies:
//
//   - Backfill: catalog media IDs not yet scraped, append-mode commit.
//   - GapFill: point-fetch of every missing comment ID up to the highest
//     known ID, append-mode commit. Terminal once the sequence is complete.
//   - Incremental: re-scan of known or activity-flagged media with full
//     change detection, atomic rewrite commit, optional deletion hints.
//   - SyncAuthor / SyncWindow: scoped passes, by author (to a separate
//     output mirror) or by time window.
//
// The orchestrator alone mutates the store; workers only fetch. A failed
// target is logged, counted, and isolated from its siblings, and every run
// ends by logging the Report.
package sync
