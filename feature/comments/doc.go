// Package comments exposes the local mirror over a read-only HTTP API:
// per-comment lookup, per-media listing, and the integrity report.
//
// The heavy lifting lives in the subpackages: models (record schema and
// change detection), api (upstream client), mirror (the flat-file store),
// and sync (the reconciliation strategies).
package comments
