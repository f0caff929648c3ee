package components

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazyprod/internal/models"
	"github.com/rebeliceyang/lazyprod/internal/ui/theme"
)

// TableView displays products with virtual scrolling, one column per property
type TableView struct {
	Columns []string
	Rows    [][]string
	Width   int
	Height  int
	Style   lipgloss.Style
	Theme   theme.Theme

	// MaxCellWidth caps column widths; 0 means the default of 50
	MaxCellWidth int

	// Virtual scrolling state
	TopRow      int
	VisibleRows int
	SelectedRow int
	TotalRows   int

	// Column widths (calculated)
	ColumnWidths []int

	products []models.Product
}

// NewTableView creates a new table view
func NewTableView(th theme.Theme) *TableView {
	return &TableView{
		Columns:      []string{},
		Rows:         [][]string{},
		ColumnWidths: []int{},
		Theme:        th,
	}
}

// SetProducts renders products against the property catalog. total is the
// size of the unfiltered list, shown in the status line.
func (tv *TableView) SetProducts(properties []models.Property, products []models.Product, total int) {
	columns := make([]string, 0, len(properties)+1)
	columns = append(columns, "ID")
	for _, p := range properties {
		columns = append(columns, headerName(p.Name))
	}

	rows := make([][]string, 0, len(products))
	for _, product := range products {
		row := make([]string, 0, len(columns))
		row = append(row, strconv.Itoa(product.ID))
		for _, p := range properties {
			cell := ""
			if pv, ok := product.ValueFor(p.ID); ok {
				cell = pv.Value.String()
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}

	tv.products = products
	tv.SetData(columns, rows, total)
}

// SetData sets the table data
func (tv *TableView) SetData(columns []string, rows [][]string, totalRows int) {
	tv.Columns = columns
	tv.Rows = rows
	tv.TotalRows = totalRows
	tv.calculateColumnWidths()

	if tv.SelectedRow >= len(tv.Rows) {
		tv.SelectedRow = len(tv.Rows) - 1
	}
	if tv.SelectedRow < 0 {
		tv.SelectedRow = 0
	}
	if tv.TopRow > tv.SelectedRow {
		tv.TopRow = tv.SelectedRow
	}
}

// SelectedProduct returns the product under the cursor
func (tv *TableView) SelectedProduct() (models.Product, bool) {
	if tv.SelectedRow < 0 || tv.SelectedRow >= len(tv.products) {
		return models.Product{}, false
	}
	return tv.products[tv.SelectedRow], true
}

// calculateColumnWidths calculates optimal column widths
func (tv *TableView) calculateColumnWidths() {
	if len(tv.Columns) == 0 {
		return
	}

	tv.ColumnWidths = make([]int, len(tv.Columns))

	for i, col := range tv.Columns {
		tv.ColumnWidths[i] = lipgloss.Width(col)
	}

	for _, row := range tv.Rows {
		for i, cell := range row {
			if i < len(tv.ColumnWidths) {
				cellLen := lipgloss.Width(cell)
				if cellLen > tv.ColumnWidths[i] {
					tv.ColumnWidths[i] = cellLen
				}
			}
		}
	}

	maxWidth := tv.MaxCellWidth
	if maxWidth <= 0 {
		maxWidth = 50
	}
	for i := range tv.ColumnWidths {
		if tv.ColumnWidths[i] > maxWidth {
			tv.ColumnWidths[i] = maxWidth
		}
		if tv.ColumnWidths[i] < 6 {
			tv.ColumnWidths[i] = 6
		}
	}
}

// View renders the table
func (tv *TableView) View() string {
	if len(tv.Columns) == 0 {
		return tv.Style.Render("No products loaded")
	}

	var b strings.Builder

	b.WriteString(tv.renderHeader())
	b.WriteString("\n")
	b.WriteString(tv.renderSeparator())
	b.WriteString("\n")

	tv.VisibleRows = tv.Height - 3 // Header + separator + status
	if tv.VisibleRows < 1 {
		tv.VisibleRows = 1
	}

	if len(tv.Rows) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(tv.Theme.Missing).Italic(true).Render(" No products match the filter"))
	}

	endRow := tv.TopRow + tv.VisibleRows
	if endRow > len(tv.Rows) {
		endRow = len(tv.Rows)
	}

	for i := tv.TopRow; i < endRow; i++ {
		isSelected := i == tv.SelectedRow
		b.WriteString(tv.renderRow(tv.Rows[i], i, isSelected))
		if i < endRow-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(tv.renderStatus())

	return tv.Style.Width(tv.Width).Height(tv.Height).Render(b.String())
}

func (tv *TableView) renderHeader() string {
	var parts []string
	for i, col := range tv.Columns {
		parts = append(parts, tv.pad(col, tv.ColumnWidths[i]))
	}
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(tv.Theme.TableHeader).
		Background(tv.Theme.TableRowOdd)
	return headerStyle.Render(" " + strings.Join(parts, " │ ") + " ")
}

func (tv *TableView) renderSeparator() string {
	var parts []string
	for _, width := range tv.ColumnWidths {
		parts = append(parts, strings.Repeat("─", width))
	}
	return lipgloss.NewStyle().
		Foreground(tv.Theme.Border).
		Render("─" + strings.Join(parts, "─┼─") + "─")
}

func (tv *TableView) renderRow(row []string, index int, selected bool) string {
	var parts []string
	for i, cell := range row {
		if i >= len(tv.ColumnWidths) {
			break
		}
		parts = append(parts, tv.pad(cell, tv.ColumnWidths[i]))
	}

	line := " " + strings.Join(parts, " │ ") + " "

	if selected {
		return lipgloss.NewStyle().
			Background(tv.Theme.TableRowSelected).
			Foreground(lipgloss.Color("15")).
			Bold(true).
			Render(line)
	}
	if index%2 == 1 {
		return lipgloss.NewStyle().Background(tv.Theme.TableRowOdd).Render(line)
	}
	return line
}

func (tv *TableView) renderStatus() string {
	return lipgloss.NewStyle().
		Foreground(tv.Theme.Metadata).
		Italic(true).
		Render(" " + tv.StatusText())
}

// StatusText summarises how many products are shown
func (tv *TableView) StatusText() string {
	return fmt.Sprintf("%d of %d products", len(tv.Rows), tv.TotalRows)
}

func (tv *TableView) pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		if width <= 3 {
			return string(runes[:width])
		}
		return string(runes[:width-3]) + "..."
	}
	return s + strings.Repeat(" ", width-len(runes))
}

// MoveSelection moves the selection up or down
func (tv *TableView) MoveSelection(delta int) {
	if len(tv.Rows) == 0 {
		tv.SelectedRow = 0
		return
	}

	tv.SelectedRow += delta

	if tv.SelectedRow < 0 {
		tv.SelectedRow = 0
	}
	if tv.SelectedRow >= len(tv.Rows) {
		tv.SelectedRow = len(tv.Rows) - 1
	}

	if tv.SelectedRow < tv.TopRow {
		tv.TopRow = tv.SelectedRow
	}
	if tv.VisibleRows > 0 && tv.SelectedRow >= tv.TopRow+tv.VisibleRows {
		tv.TopRow = tv.SelectedRow - tv.VisibleRows + 1
	}
}

// PageUp/PageDown
func (tv *TableView) PageUp() {
	tv.SelectedRow -= tv.VisibleRows
	if tv.SelectedRow < 0 {
		tv.SelectedRow = 0
	}
	tv.TopRow = tv.SelectedRow
}

func (tv *TableView) PageDown() {
	if len(tv.Rows) == 0 {
		return
	}
	tv.SelectedRow += tv.VisibleRows
	if tv.SelectedRow >= len(tv.Rows) {
		tv.SelectedRow = len(tv.Rows) - 1
	}
	tv.TopRow = tv.SelectedRow
	if tv.TopRow+tv.VisibleRows > len(tv.Rows) {
		tv.TopRow = len(tv.Rows) - tv.VisibleRows
		if tv.TopRow < 0 {
			tv.TopRow = 0
		}
	}
}

// Home/End jump to the first or last product
func (tv *TableView) Home() {
	tv.SelectedRow = 0
	tv.TopRow = 0
}

func (tv *TableView) End() {
	if len(tv.Rows) == 0 {
		return
	}
	tv.MoveSelection(len(tv.Rows))
}

// headerName upper-cases the first letter of a property name
func headerName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
