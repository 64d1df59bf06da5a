// Package storage provides the S3/MinIO client used for mirror snapshots.
//
// The mirror file is plain text on local disk; after a successful rewrite
// commit a run can push a copy to object storage so the history of the feed
// survives the machine it was scraped on. The Client interface exists so
// tests can substitute a mock (see the mocks subpackage).
package storage
