// Package models defines the canonical comment row, its fixed tab-delimited
// schema, and the two pure transformations the reconciler is built on:
// normalization of raw upstream payloads and field-level change detection
// against the stored mirror.
package models
