// Package utils provides type conversion helpers.
//
// The upstream comment API is loosely typed: numeric fields arrive as JSON
// numbers, strings, or are missing entirely, and boolean flags vary between
// true/false and 0/1. These helpers coerce any of those shapes into the
// canonical Go type, defaulting to the zero value when the input is absent.
package utils
