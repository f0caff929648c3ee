package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazyprod/internal/ui/theme"
)

// Panel is a bordered box with a title, a body clipped to its height and an
// optional footer line
type Panel struct {
	Title   string
	Content string
	Footer  string
	Width   int
	Height  int
	Focused bool
	Theme   theme.Theme
}

// NewPanel creates an unfocused panel
func NewPanel(title string, th theme.Theme) Panel {
	return Panel{Title: title, Theme: th}
}

// BodyHeight is the number of lines left for Content
func (p *Panel) BodyHeight() int {
	h := p.Height
	if p.Title != "" {
		h--
	}
	if p.Footer != "" {
		h--
	}
	if h < 0 {
		return 0
	}
	return h
}

// View renders the panel
func (p *Panel) View() string {
	if p.Width <= 0 || p.Height <= 0 {
		return ""
	}

	border := p.Theme.Border
	if p.Focused {
		border = p.Theme.BorderFocused
	}
	style := lipgloss.NewStyle().
		Width(p.Width).
		Height(p.Height).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border)

	var parts []string
	if p.Title != "" {
		titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
		if p.Focused {
			titleStyle = titleStyle.Foreground(p.Theme.BorderFocused)
		}
		parts = append(parts, titleStyle.Render(p.Title))
	}
	parts = append(parts, fitLines(p.Content, p.BodyHeight()))
	if p.Footer != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(p.Theme.Metadata).Render(p.Footer))
	}

	return style.Render(strings.Join(parts, "\n"))
}

// fitLines cuts or pads s to exactly n lines so the footer stays at the bottom
func fitLines(s string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	for len(lines) < n {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
