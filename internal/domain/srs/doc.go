// Package srs implements the spaced-repetition scheduling engine: a
// pure memory model (stability, difficulty, retrievability) and a
// Scheduler state machine over the card review phases New, Learning,
// Review, and Relearning.
//
// The Scheduler's Apply is deterministic for identical inputs and
// configuration; interval jitter is driven by an injectable Seeder so
// previews, commits, and tests all agree.
package srs
