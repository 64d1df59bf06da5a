// Package database provides the relational connection used by the export
// feature.
//
// The mirror itself lives in a tab-delimited file; the export command copies
// it into a proper database for ad hoc querying. SQLite is the default
// (single analysis file next to the mirror), MySQL is supported for shared
// deployments.
package database
