// Package review sequences practice sessions over due cards.
//
// The package has two halves. The collector half (dueset.go) is pure:
// it filters an ordered candidate list down to the keys due at a given
// time and joins them back into session entries. The session half
// (session.go) is a single-threaded state machine that walks those
// entries one at a time, applies the scheduler on each rating, persists
// the outcome, and aggregates per-rating statistics.
//
// The controller is not safe for concurrent use; one goroutine owns a
// session from Start to Complete or Cancel.
package review
