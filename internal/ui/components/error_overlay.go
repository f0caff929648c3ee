package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazyprod/internal/ui/theme"
)

// ErrorOverlay shows a dismissible error box
type ErrorOverlay struct {
	Title   string
	Message string
	Width   int
	Theme   theme.Theme
}

// NewErrorOverlay creates a new error overlay
func NewErrorOverlay(th theme.Theme) *ErrorOverlay {
	return &ErrorOverlay{
		Width: 60,
		Theme: th,
	}
}

// SetError sets the error to display
func (e *ErrorOverlay) SetError(title, message string) {
	e.Title = title
	e.Message = message
}

// View renders the overlay
func (e *ErrorOverlay) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(e.Theme.Error).
		Bold(true)

	messageStyle := lipgloss.NewStyle().
		Foreground(e.Theme.Foreground).
		Width(e.Width - 4)

	hintStyle := lipgloss.NewStyle().
		Foreground(e.Theme.Metadata).
		Italic(true)

	title := e.Title
	if title == "" {
		title = "Error"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("✗ " + title))
	b.WriteString("\n\n")
	b.WriteString(messageStyle.Render(e.Message))
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("Press Esc or Enter to dismiss"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(e.Theme.Error).
		Padding(1, 2).
		Width(e.Width).
		Render(b.String())
}
