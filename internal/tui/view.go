package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/phrazzld/rote/internal/domain"
	"github.com/phrazzld/rote/internal/service/review"
)

const (
	minWidth  = 40
	minHeight = 12
)

// View implements tea.Model. This renders the current session phase.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Handle too small terminal
	if m.width < minWidth || m.height < minHeight {
		return m.renderTooSmall()
	}

	switch m.ctrl.Phase() {
	case review.PhaseShowingHidden:
		return m.renderCard(false)
	case review.PhaseShowingRevealed:
		return m.renderCard(true)
	case review.PhaseComplete:
		return m.renderComplete()
	default:
		return ""
	}
}

// renderCard renders the current entry, hidden or revealed.
func (m model) renderCard(revealed bool) string {
	entry, ok := m.ctrl.Current()
	if !ok {
		return ""
	}

	w := m.cardWidth()

	var sections []string
	sections = append(sections, m.renderHeader(w))
	sections = append(sections, "")
	sections = append(sections, styles.Front.Width(w).Render(entry.Front))

	if revealed {
		sections = append(sections, m.renderDivider(w))
		sections = append(sections, styles.Back.Width(w).Render(entry.Back))
		sections = append(sections, "")
		sections = append(sections, m.renderRatings())
	}

	if m.saveErr != nil {
		sections = append(sections, "")
		sections = append(sections, styles.Error.Width(w).Render(
			fmt.Sprintf("save failed: %v", m.saveErr)))
	}

	sections = append(sections, "")
	if revealed {
		sections = append(sections, styles.Footer.Render("1-4: rate  q: quit"))
	} else {
		sections = append(sections, styles.Footer.Render("space: reveal  q: quit"))
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// renderComplete renders the end-of-session summary.
func (m model) renderComplete() string {
	tally := m.tally

	var sections []string
	sections = append(sections, styles.Title.Render("session complete"))
	sections = append(sections, "")
	sections = append(sections, styles.Count.Render(fmt.Sprintf("%d reviewed", tally.Total())))

	if tally.Total() > 0 {
		counts := []string{
			styles.Again.Render(fmt.Sprintf("again %d", tally.Again)),
			styles.Hard.Render(fmt.Sprintf("hard %d", tally.Hard)),
			styles.Good.Render(fmt.Sprintf("good %d", tally.Good)),
			styles.Easy.Render(fmt.Sprintf("easy %d", tally.Easy)),
		}
		sections = append(sections, styles.Summary.Render(strings.Join(counts, "   ")))
	}

	sections = append(sections, "")
	sections = append(sections, styles.Footer.Render("q: quit"))

	content := strings.Join(sections, "\n")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// renderHeader renders the title line with position and progress.
func (m model) renderHeader(w int) string {
	title := styles.Title.Render("rote")
	position := styles.Position.Render(
		fmt.Sprintf("%d/%d", m.ctrl.Reviewed()+1, m.ctrl.Len()))

	titleLine := lipgloss.JoinHorizontal(
		lipgloss.Top,
		title,
		strings.Repeat(" ", max(1, w-lipgloss.Width(title)-lipgloss.Width(position))),
		position,
	)

	frac := 0.0
	if total := m.ctrl.Len(); total > 0 {
		frac = float64(m.ctrl.Reviewed()) / float64(total)
	}

	return titleLine + "\n" + m.progress.ViewAs(frac)
}

// renderRatings renders the rating choices with projected intervals.
func (m model) renderRatings() string {
	previews, ok := m.ctrl.Preview()
	if !ok {
		return ""
	}
	now := m.ctrl.Now()

	parts := make([]string, 0, len(previews))
	for i, rating := range domain.Ratings() {
		card, ok := previews[rating]
		if !ok {
			continue
		}
		label := fmt.Sprintf("%d %s", i+1, strings.ToLower(rating.String()))
		interval := FormatInterval(card.Due.Sub(now))
		parts = append(parts,
			ratingStyle(rating).Render(label)+" "+styles.Interval.Render(interval))
	}

	return strings.Join(parts, "   ")
}

// renderDivider renders a horizontal divider line.
func (m model) renderDivider(w int) string {
	return styles.Divider.Render(strings.Repeat("─", w))
}

// renderTooSmall renders a minimal message for terminals that are too small.
func (m model) renderTooSmall() string {
	return fmt.Sprintf("Terminal too small (%dx%d). Need %dx%d minimum.",
		m.width, m.height, minWidth, minHeight)
}

// ratingStyle returns the style for a rating's label.
func ratingStyle(rating domain.Rating) lipgloss.Style {
	switch rating {
	case domain.RatingAgain:
		return styles.Again
	case domain.RatingHard:
		return styles.Hard
	case domain.RatingGood:
		return styles.Good
	case domain.RatingEasy:
		return styles.Easy
	default:
		return styles.Interval
	}
}

// FormatInterval renders a projected interval in compact form: minutes
// under an hour, hours under a day, then days, months, years. The line
// mode prompt uses it too, so both presenters describe intervals the
// same way.
func FormatInterval(d time.Duration) string {
	if d < time.Minute {
		return "<1m"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	days := int(d.Hours() / 24)
	if days < 30 {
		return fmt.Sprintf("%dd", days)
	}
	if days < 365 {
		return fmt.Sprintf("%dmo", days/30)
	}
	return fmt.Sprintf("%.1fy", float64(days)/365)
}
