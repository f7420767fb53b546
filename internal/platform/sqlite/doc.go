// Package sqlite implements the store interfaces on a local SQLite
// database file. It is the default backend: zero setup, one file,
// WAL mode for concurrent readers, schema versioned through the
// user_version pragma.
//
// Stored cards follow the persistence contract of the store package:
// timestamps as UTC milliseconds, numeric fields as-is, state by name.
// Reads degrade corrupt fields instead of failing the row, so one bad
// record never takes down a collection pass.
package sqlite
