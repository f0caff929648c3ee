package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazyprod/internal/models"
	"github.com/rebeliceyang/lazyprod/internal/selection"
	"github.com/rebeliceyang/lazyprod/internal/ui/theme"
)

// PropertySelectedMsg is sent when a property is picked
type PropertySelectedMsg struct {
	ID int
}

// OperatorSelectedMsg is sent when an operator is picked
type OperatorSelectedMsg struct {
	ID models.OperatorID
}

// ValuesSelectedMsg is sent when one value (or, for multi-select operators,
// a set of values) is confirmed. Keys are candidate display strings.
type ValuesSelectedMsg struct {
	Keys  []string
	Multi bool
}

// ClearFiltersMsg is sent when the filter should be discarded
type ClearFiltersMsg struct{}

// FilterBar walks the user through property, operator and value pickers
type FilterBar struct {
	Width  int
	Height int
	Theme  theme.Theme

	// Picker state
	editMode string // "", "property", "operator", "value"
	cursor   int
	picked   map[string]bool
	query    textinput.Model

	// Mirrored from the selection controller
	properties []models.Property
	operators  []models.Operator
	candidates []models.PropertyValue
	property   *models.Property
	operator   *models.Operator
	values     []models.Value
	summary    string
	stage      selection.Stage
}

// NewFilterBar creates a new filter bar
func NewFilterBar(th theme.Theme) *FilterBar {
	ti := textinput.New()
	ti.Placeholder = "type to narrow, ! to exclude"
	ti.Prompt = "/ "
	ti.CharLimit = 128
	ti.Width = 24

	return &FilterBar{
		Width:  30,
		Height: 20,
		Theme:  th,
		picked: map[string]bool{},
		query:  ti,
	}
}

// Sync copies the controller state into the bar
func (fb *FilterBar) Sync(c *selection.Controller) {
	fb.properties = c.Properties()
	fb.operators = c.AvailableOperators()
	fb.candidates = c.Candidates()
	fb.values = c.SelectedValues()
	fb.summary = c.Describe()
	fb.stage = c.Stage()

	fb.property = nil
	if p, ok := c.SelectedProperty(); ok {
		fb.property = &p
	}
	fb.operator = nil
	if op, ok := c.SelectedOperator(); ok {
		fb.operator = &op
	}

	fb.clampCursor()
}

// Active reports whether a picker is open and keys belong to the bar
func (fb *FilterBar) Active() bool {
	return fb.editMode != ""
}

// Mode returns the open picker, "" when none
func (fb *FilterBar) Mode() string {
	return fb.editMode
}

// Open starts the property picker
func (fb *FilterBar) Open() {
	if len(fb.properties) == 0 {
		return
	}
	fb.editMode = "property"
	fb.cursor = 0
	if fb.property != nil {
		for i, p := range fb.properties {
			if p.ID == fb.property.ID {
				fb.cursor = i
				break
			}
		}
	}
}

// Close leaves any open picker
func (fb *FilterBar) Close() {
	fb.editMode = ""
	fb.query.Blur()
}

// Update handles input
func (fb *FilterBar) Update(msg tea.Msg) (*FilterBar, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if fb.editMode == "value" {
			var cmd tea.Cmd
			fb.query, cmd = fb.query.Update(msg)
			return fb, cmd
		}
		return fb, nil
	}

	switch fb.editMode {
	case "":
		return fb.handleNavigationMode(keyMsg)
	case "property":
		return fb.handlePropertyMode(keyMsg)
	case "operator":
		return fb.handleOperatorMode(keyMsg)
	case "value":
		return fb.handleValueMode(keyMsg)
	}
	return fb, nil
}

func (fb *FilterBar) handleNavigationMode(msg tea.KeyMsg) (*FilterBar, tea.Cmd) {
	switch msg.String() {
	case "f", "enter", "a":
		fb.Open()
	case "o":
		if fb.property != nil {
			fb.editMode = "operator"
			fb.cursor = 0
		}
	case "v":
		if fb.operator != nil && fb.operator.TakesValue() {
			fb.openValues()
		}
	case "x", "ctrl+r":
		return fb, func() tea.Msg {
			return ClearFiltersMsg{}
		}
	}
	return fb, nil
}

func (fb *FilterBar) handlePropertyMode(msg tea.KeyMsg) (*FilterBar, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fb.Close()
	case "up", "k":
		fb.moveCursor(-1, len(fb.properties))
	case "down", "j":
		fb.moveCursor(1, len(fb.properties))
	case "enter":
		if fb.cursor >= len(fb.properties) {
			return fb, nil
		}
		id := fb.properties[fb.cursor].ID
		fb.editMode = "operator"
		fb.cursor = 0
		return fb, func() tea.Msg {
			return PropertySelectedMsg{ID: id}
		}
	}
	return fb, nil
}

func (fb *FilterBar) handleOperatorMode(msg tea.KeyMsg) (*FilterBar, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fb.Open()
	case "up", "k":
		fb.moveCursor(-1, len(fb.operators))
	case "down", "j":
		fb.moveCursor(1, len(fb.operators))
	case "enter":
		if fb.cursor >= len(fb.operators) {
			return fb, nil
		}
		op := fb.operators[fb.cursor]
		if op.TakesValue() {
			fb.openValues()
		} else {
			fb.Close()
		}
		return fb, func() tea.Msg {
			return OperatorSelectedMsg{ID: op.ID}
		}
	}
	return fb, nil
}

func (fb *FilterBar) handleValueMode(msg tea.KeyMsg) (*FilterBar, tea.Cmd) {
	visible := fb.VisibleCandidates()

	switch msg.String() {
	case "esc":
		fb.query.Blur()
		fb.editMode = "operator"
		fb.cursor = 0
		return fb, nil
	case "up", "ctrl+p":
		fb.moveCursor(-1, len(visible))
		return fb, nil
	case "down", "ctrl+n":
		fb.moveCursor(1, len(visible))
		return fb, nil
	case "tab":
		if fb.multi() && fb.cursor < len(visible) {
			key := visible[fb.cursor].Value.String()
			fb.picked[key] = !fb.picked[key]
		}
		return fb, nil
	case "enter":
		keys := fb.confirmedKeys(visible)
		if len(keys) == 0 && !fb.multi() {
			return fb, nil
		}
		multi := fb.multi()
		fb.Close()
		return fb, func() tea.Msg {
			return ValuesSelectedMsg{Keys: keys, Multi: multi}
		}
	}

	var cmd tea.Cmd
	fb.query, cmd = fb.query.Update(msg)
	fb.clampCursor()
	return fb, cmd
}

// confirmedKeys returns the toggled keys in candidate order. With nothing
// toggled the value under the cursor is used.
func (fb *FilterBar) confirmedKeys(visible []models.PropertyValue) []string {
	var keys []string
	if fb.multi() {
		for _, c := range fb.candidates {
			if key := c.Value.String(); fb.picked[key] {
				keys = append(keys, key)
			}
		}
		if len(keys) > 0 {
			return keys
		}
	}
	if fb.cursor < len(visible) {
		return []string{visible[fb.cursor].Value.String()}
	}
	return keys
}

func (fb *FilterBar) openValues() {
	fb.editMode = "value"
	fb.cursor = 0
	fb.picked = map[string]bool{}
	fb.query.SetValue("")
	fb.query.Focus()
}

func (fb *FilterBar) multi() bool {
	return fb.operator != nil && fb.operator.MultiValue()
}

func (fb *FilterBar) moveCursor(delta, n int) {
	fb.cursor += delta
	if fb.cursor >= n {
		fb.cursor = n - 1
	}
	if fb.cursor < 0 {
		fb.cursor = 0
	}
}

func (fb *FilterBar) clampCursor() {
	n := 0
	switch fb.editMode {
	case "property":
		n = len(fb.properties)
	case "operator":
		n = len(fb.operators)
	case "value":
		n = len(fb.VisibleCandidates())
	default:
		return
	}
	fb.moveCursor(0, n)
}

// VisibleCandidates returns the candidates matching the typed query
func (fb *FilterBar) VisibleCandidates() []models.PropertyValue {
	return FilterCandidates(fb.candidates, fb.query.Value())
}

// View renders the filter bar
func (fb *FilterBar) View() string {
	var sections []string

	labelStyle := lipgloss.NewStyle().Foreground(fb.Theme.Metadata).Width(10)
	propertyStyle := lipgloss.NewStyle().Foreground(fb.Theme.Property).Bold(true)
	operatorStyle := lipgloss.NewStyle().Foreground(fb.Theme.Operator).Bold(true)
	placeholder := lipgloss.NewStyle().Foreground(fb.Theme.Missing).Italic(true)

	property := placeholder.Render("none")
	if fb.property != nil {
		property = propertyStyle.Render(fb.property.Name)
	}
	sections = append(sections, labelStyle.Render("Property")+property)

	operator := placeholder.Render("none")
	if fb.operator != nil {
		operator = operatorStyle.Render(fb.operator.Text)
	}
	sections = append(sections, labelStyle.Render("Operator")+operator)

	if fb.operator == nil || fb.operator.TakesValue() {
		values := placeholder.Render("none")
		if len(fb.values) > 0 {
			parts := make([]string, len(fb.values))
			for i, v := range fb.values {
				parts[i] = fb.renderValue(v)
			}
			values = strings.Join(parts, ", ")
		}
		sections = append(sections, labelStyle.Render("Value")+values)
	}

	if fb.editMode != "" {
		sections = append(sections, "")
		sections = append(sections, fb.renderPicker()...)
	} else if fb.summary != "" {
		sections = append(sections, "")
		sections = append(sections, lipgloss.NewStyle().
			Foreground(fb.Theme.Info).
			Italic(true).
			Render(fb.summary))
	}

	sections = append(sections, "", lipgloss.NewStyle().
		Foreground(fb.Theme.Metadata).
		Render(fb.instructions()))

	return lipgloss.NewStyle().
		Width(fb.Width).
		Height(fb.Height).
		Render(strings.Join(sections, "\n"))
}

func (fb *FilterBar) instructions() string {
	switch fb.editMode {
	case "property":
		return "↑↓ select property, Enter confirm, Esc cancel"
	case "operator":
		return "↑↓ select operator, Enter confirm, Esc back"
	case "value":
		if fb.multi() {
			return "Type to narrow, Tab toggle, Enter apply, Esc back"
		}
		return "Type to narrow, ↑↓ select, Enter apply, Esc back"
	default:
		if fb.stage == selection.StageUnfiltered {
			return "f filter"
		}
		return "f filter, o operator, x clear"
	}
}

func (fb *FilterBar) renderPicker() []string {
	var lines []string

	selected := lipgloss.NewStyle().
		Background(fb.Theme.Selection).
		Foreground(fb.Theme.Foreground).
		Bold(true)
	normal := lipgloss.NewStyle()

	row := func(i int, text string) string {
		if i == fb.cursor {
			return selected.Render("▸ " + text)
		}
		return normal.Render("  " + text)
	}

	switch fb.editMode {
	case "property":
		for i, p := range fb.properties {
			lines = append(lines, row(i, fmt.Sprintf("%s (%s)", p.Name, p.Type)))
		}
	case "operator":
		if len(fb.operators) == 0 {
			lines = append(lines, "  No operators for this property")
		}
		for i, op := range fb.operators {
			lines = append(lines, row(i, op.Text))
		}
	case "value":
		lines = append(lines, fb.query.View())
		visible := fb.VisibleCandidates()
		if len(visible) == 0 {
			lines = append(lines, lipgloss.NewStyle().Foreground(fb.Theme.Missing).Render("  No matching values"))
		}
		for i, c := range visible {
			text := fb.renderValue(c.Value)
			if fb.multi() {
				mark := "[ ] "
				if fb.picked[c.Value.String()] {
					mark = "[x] "
				}
				text = mark + text
			}
			lines = append(lines, row(i, text))
		}
	}

	return lines
}

func (fb *FilterBar) renderValue(v models.Value) string {
	return lipgloss.NewStyle().Foreground(fb.Theme.ValueColor(v.Type())).Render(v.String())
}
