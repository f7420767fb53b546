package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Storage     StorageConfig     `mapstructure:"storage" validate:"required"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler" validate:"required"`
	Source      SourceConfig      `mapstructure:"source" validate:"required"`
	Practice    PracticeConfig    `mapstructure:"practice"`
	Logging     LoggingConfig     `mapstructure:"logging" validate:"required"`
	LogRotation LogRotationConfig `mapstructure:"log_rotation"`
}

// StorageConfig selects and configures the card store backend.
type StorageConfig struct {
	// Backend is "sqlite" (local file, the default) or "postgres".
	Backend string `mapstructure:"backend" validate:"required,oneof=sqlite postgres"`
	// Path is the sqlite database file. Created on first open.
	Path string `mapstructure:"path" validate:"required_if=Backend sqlite"`
	// URL is the postgres connection string, required for the postgres backend.
	URL string `mapstructure:"url" validate:"required_if=Backend postgres,omitempty,url"`
}

// SchedulerConfig tunes the scheduling engine.
type SchedulerConfig struct {
	// TargetRetention is the recall probability intervals aim for.
	TargetRetention float64 `mapstructure:"target_retention" validate:"required,gt=0,lt=1"`
	// MaximumInterval caps scheduled intervals, in days.
	MaximumInterval int `mapstructure:"maximum_interval" validate:"required,gte=1"`
	// LearningSteps are the sub-day steps for cards in Learning.
	// An empty list skips stepped learning entirely.
	LearningSteps []time.Duration `mapstructure:"learning_steps" validate:"omitempty,dive,gt=0"`
	// RelearningSteps are the sub-day steps after a lapse.
	RelearningSteps []time.Duration `mapstructure:"relearning_steps" validate:"omitempty,dive,gt=0"`
	// SkipShortTerm routes new cards straight to Review.
	SkipShortTerm bool `mapstructure:"skip_short_term"`
	// DisableFuzz turns off interval jitter.
	DisableFuzz bool `mapstructure:"disable_fuzz"`
	// Weights overrides the default model weights. Must be all 17 when set.
	Weights []float64 `mapstructure:"weights" validate:"omitempty,len=17"`
}

// SourceConfig configures where review material is read from.
type SourceConfig struct {
	// Dir is the root directory scanned for source documents.
	Dir string `mapstructure:"dir" validate:"required"`
	// Extensions lists the file extensions treated as source documents.
	Extensions []string `mapstructure:"extensions" validate:"omitempty,dive,startswith=."`
}

// PracticeConfig tunes practice sessions.
type PracticeConfig struct {
	// NewLimit caps how many untracked candidates a single practice run
	// seeds as new cards. Zero disables seeding.
	NewLimit int `mapstructure:"new_limit" validate:"gte=0"`
	// Plain forces line mode even on a TTY.
	Plain bool `mapstructure:"plain"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	// Dir is where the rotating debug log lives when the TUI owns the terminal.
	Dir string `mapstructure:"dir" validate:"required"`
}

// LogRotationConfig holds settings for debug log rotation.
type LogRotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int  `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int  `mapstructure:"max_age_days" validate:"gte=0"`
	Compress   bool `mapstructure:"compress"`
}

// Default returns a Config with working defaults: a project-local sqlite
// store under .rote/, markdown sources in the current directory, and the
// stock scheduler parameters.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "sqlite",
			Path:    ".rote/rote.db",
		},
		Scheduler: SchedulerConfig{
			TargetRetention: 0.9,
			MaximumInterval: 365,
			LearningSteps:   []time.Duration{time.Minute, 10 * time.Minute},
			RelearningSteps: []time.Duration{10 * time.Minute},
		},
		Source: SourceConfig{
			Dir:        ".",
			Extensions: []string{".md"},
		},
		Practice: PracticeConfig{
			NewLimit: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   ".rote",
		},
		LogRotation: LogRotationConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}
