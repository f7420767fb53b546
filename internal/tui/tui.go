// Package tui provides the interactive review interface using bubbletea.
//
// The TUI is a thin presenter over review.Controller: it renders the
// controller's phase and translates key presses into controller calls.
// Because the controller is single-threaded, every call into it happens
// on the bubbletea program goroutine inside Update.
package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/phrazzld/rote/internal/service/review"
)

// TUI runs a review session in the terminal.
type TUI struct {
	ctrl   *review.Controller
	logger *slog.Logger
}

// Option configures the TUI.
type Option func(*TUI)

// WithLogger sets the logger. The TUI owns the terminal, so this should
// write to a file, never to stdout.
func WithLogger(l *slog.Logger) Option {
	return func(t *TUI) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates a TUI over an already-started session controller.
// Panics if ctrl is nil.
func New(ctrl *review.Controller, opts ...Option) *TUI {
	if ctrl == nil {
		panic("ctrl cannot be nil")
	}

	t := &TUI{
		ctrl:   ctrl,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With(slog.String("component", "tui"))

	return t
}

// Run starts the TUI and blocks until the session ends or the user
// quits. It returns the session tally, which is preserved even when the
// user quits mid-session (Cancel resets the controller's own tally).
func (t *TUI) Run(ctx context.Context) (review.Tally, error) {
	m := newModel(ctx, t.ctrl, t.logger)

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if fm, ok := final.(model); ok {
		return fm.tally, err
	}
	return t.ctrl.Stats(), err
}
