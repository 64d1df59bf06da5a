// Package activity narrows daily syncs to targets that actually changed,
// by scanning an external event feed for recent comment activity.
package activity
