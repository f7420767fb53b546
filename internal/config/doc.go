// Package config handles configuration loading, merging, and validation.
// Settings come from layered sources (defaults, global and project YAML
// files, ROTE_* environment variables, CLI flags bound through viper) and
// are validated before any component sees them, keeping configuration
// details separate from business logic.
package config
