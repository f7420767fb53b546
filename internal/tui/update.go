package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/phrazzld/rote/internal/domain"
	"github.com/phrazzld/rote/internal/service/review"
)

// Update implements tea.Model. It handles all message types and updates the model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(maxProgressWidth, m.cardWidth())
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input and returns the updated model and command.
// The controller is single-threaded, so every call into it happens here,
// on the program goroutine, never inside a tea.Cmd.
func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global keys: always work regardless of phase
	if key == "ctrl+c" {
		m.ctrl.Cancel()
		return m, tea.Quit
	}

	switch m.ctrl.Phase() {
	case review.PhaseShowingHidden:
		switch key {
		case " ", "enter":
			m.ctrl.Reveal()
			return m, nil

		case "q", "esc":
			m.ctrl.Cancel()
			return m, tea.Quit
		}

	case review.PhaseShowingRevealed:
		switch key {
		case "1":
			return m.rate(domain.RatingAgain)

		case "2":
			return m.rate(domain.RatingHard)

		case "3":
			return m.rate(domain.RatingGood)

		case "4":
			return m.rate(domain.RatingEasy)

		case "q", "esc":
			m.ctrl.Cancel()
			return m, tea.Quit
		}

	case review.PhaseComplete:
		switch key {
		case "q", "esc", "enter", " ":
			return m, tea.Quit
		}
	}

	return m, nil
}

// rate applies the rating to the current entry and records the
// persistence outcome for the next render.
func (m model) rate(rating domain.Rating) (tea.Model, tea.Cmd) {
	result, err := m.ctrl.Rate(m.ctx, rating)
	if err != nil {
		// Racing key presses can slip past the phase check; the
		// controller rejects them and the session state is unchanged.
		return m, nil
	}

	m.saveErr = result.SaveErr
	m.tally = m.ctrl.Stats()
	if result.SaveErr != nil {
		m.logger.Warn("review saved in memory only",
			slog.String("key", result.Key),
			slog.String("error", result.SaveErr.Error()))
	}

	return m, nil
}
