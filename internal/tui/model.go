package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/phrazzld/rote/internal/service/review"
)

// Layout size constants.
const (
	// maxCardWidth is the widest the card column is allowed to grow.
	maxCardWidth = 72
	// maxProgressWidth caps the progress bar length.
	maxProgressWidth = 40
)

// model is the bubbletea model for a review session. All controller
// calls happen inside Update on the program goroutine; commands only
// carry tea.Quit.
type model struct {
	ctrl   *review.Controller
	ctx    context.Context
	logger *slog.Logger

	// UI state
	progress progress.Model
	width    int
	height   int

	// saveErr holds the most recent persistence failure. It is shown
	// until the next rating replaces or clears it.
	saveErr error

	// tally mirrors the controller's tally after every rating, so the
	// summary survives Cancel (which resets the controller).
	tally review.Tally
}

// newModel creates a model driving the given controller. The session
// must already be started.
func newModel(ctx context.Context, ctrl *review.Controller, logger *slog.Logger) model {
	prog := progress.New(
		progress.WithSolidFill("63"),
		progress.WithoutPercentage(),
	)
	prog.Width = maxProgressWidth

	return model{
		ctrl:     ctrl,
		ctx:      ctx,
		logger:   logger,
		progress: prog,
	}
}

// Init implements tea.Model. The session is driven entirely by key
// input, so there are no initial commands.
func (m model) Init() tea.Cmd {
	return nil
}

// cardWidth returns the width of the centered card column.
func (m model) cardWidth() int {
	w := m.width - 8
	if w > maxCardWidth {
		w = maxCardWidth
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Update and handleKey are implemented in update.go
// View is implemented in view.go
