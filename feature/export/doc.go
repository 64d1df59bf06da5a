// Package export mirrors the flat-file comment store into a relational
// database for SQL access.
package export
