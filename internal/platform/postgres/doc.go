// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package. It is the opt-in
// backend for shared or multi-machine collections; the sqlite package remains
// the zero-setup default. Schema management runs through embedded goose
// migrations.
package postgres
