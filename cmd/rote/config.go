package main

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Flag names for Viper binding. Persistent flags bind to their config
// paths so files, ROTE_* env vars, and flags resolve through one tree.
const (
	// Global flags
	FlagConfig   = "config"
	FlagLogLevel = "log-level"

	// Practice command flags
	FlagPlain    = "plain"
	FlagNewLimit = "new-limit"

	// Stats command flags
	FlagSince = "since"

	// Migrate command flags
	FlagStatus = "status"
)

// Config keys the flags above bind to.
const (
	keyLogLevel = "logging.level"
	keyPlain    = "practice.plain"
	keyNewLimit = "practice.new_limit"
)

// flagKeys maps flag names onto nested config keys. Flags not listed
// here bind under their own name.
var flagKeys = map[string]string{
	FlagLogLevel: keyLogLevel,
	FlagPlain:    keyPlain,
	FlagNewLimit: keyNewLimit,
}

// bindFlags binds every flag in the set to viper, routing names
// through flagKeys so nested config paths resolve correctly.
func bindFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		key := f.Name
		if mapped, ok := flagKeys[f.Name]; ok {
			key = mapped
		}
		_ = viper.BindPFlag(key, f)
	})
}
