// Package pool provides a bounded worker pool for per-target fetch tasks.
//
// A reconciliation run hands the pool a list of target IDs and a worker
// function; the pool runs at most N workers at a time and collects one
// result per target in completion order. Failures are isolated: a worker
// error is recorded in that target's result and never cancels the batch.
//
// Ordering is only guaranteed within a single worker invocation (a target's
// pages are fetched sequentially by the worker itself); consumers must not
// assume results arrive in submission order.
package pool
