// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the scheduling core, allowing it to remain independent of specific
// database technologies. The persisted field contract is fixed: due and
// last-review timestamps round-trip with at-least-millisecond precision,
// stability/difficulty/elapsed/scheduled as floats, counters as
// non-negative integers, and state as one of its four names.
package store
