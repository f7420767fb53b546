// Package mocks provides centralized mock implementations for testing.
//
// Each collaborator interface gets one file with a mock that behaves
// like a working in-memory implementation by default; tests override
// the Fn fields to inject custom behavior or failures. Keeping them
// here instead of inline in individual test files lets the session,
// source, and command tests share one set of behaviors.
//
// Usage:
//
//	cards := mocks.NewMockCardStore()
//	cards.SaveFn = func(ctx context.Context, key string, card *domain.Card) error {
//	    return errors.New("disk full")
//	}
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Back the default behavior with in-memory state where that makes sense
package mocks
