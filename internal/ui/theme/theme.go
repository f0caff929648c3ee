package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazyprod/internal/models"
)

// Theme defines the color scheme and styling
type Theme struct {
	Name string

	// Background colors
	Background lipgloss.Color
	Foreground lipgloss.Color

	// UI elements
	Border        lipgloss.Color
	BorderFocused lipgloss.Color
	Selection     lipgloss.Color
	Cursor        lipgloss.Color

	// Status colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// Value colors
	String   lipgloss.Color
	Number   lipgloss.Color
	Missing  lipgloss.Color
	Operator lipgloss.Color
	Property lipgloss.Color

	// Table colors
	TableHeader      lipgloss.Color
	TableRowEven     lipgloss.Color
	TableRowOdd      lipgloss.Color
	TableRowSelected lipgloss.Color

	Metadata lipgloss.Color
}

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha", "catppuccin":
		return CatppuccinMochaTheme()
	default:
		return DefaultTheme()
	}
}

// ValueColor is the foreground for a value of type t
func (t Theme) ValueColor(typ models.PropertyType) lipgloss.Color {
	switch typ {
	case models.TypeString:
		return t.String
	case models.TypeNumber:
		return t.Number
	default:
		return t.Missing
	}
}
