// Package server holds configuration for the read-only HTTP API the serve
// command exposes over the mirror.
package server
