// Package mirror owns the durable tab-delimited store of comments.
//
// The file has one header row, one row per comment keyed by comment_id, and
// reserved sentinel rows: one per media confirmed to have zero comments and
// one per comment ID confirmed to not exist upstream. A run
// opens the store under an exclusive advisory lock, loads everything into an
// in-memory index, and commits in one of two modes:
//
//   - append mode (backfill, gap-fill): newly observed rows are appended
//     and flushed one by one; existing rows are never touched.
//   - rewrite mode (incremental sync): the merged index is written to a
//     temporary file and atomically renamed over the mirror, so a crash
//     mid-commit cannot truncate the store.
//
// Rows are never physically deleted; upstream deletions are recorded by the
// deleted flag on the row.
package mirror
