package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/rebeliceyang/lazyprod/internal/config"
	"github.com/rebeliceyang/lazyprod/internal/datastore"
	"github.com/rebeliceyang/lazyprod/internal/export"
	"github.com/rebeliceyang/lazyprod/internal/logger"
	"github.com/rebeliceyang/lazyprod/internal/models"
	"github.com/rebeliceyang/lazyprod/internal/selection"
	"github.com/rebeliceyang/lazyprod/internal/ui/components"
	"github.com/rebeliceyang/lazyprod/internal/ui/help"
	"github.com/rebeliceyang/lazyprod/internal/ui/theme"
)

const loadTimeout = 10 * time.Second

// App is the main application model
type App struct {
	state      models.AppState
	config     *config.Config
	theme      theme.Theme
	logger     *log.Logger
	leftPanel  components.Panel
	rightPanel components.Panel

	source  datastore.Source
	changes <-chan struct{}
	session *selection.Session

	filterBar *components.FilterBar
	tableView *components.TableView

	// Error overlay
	showError    bool
	errorOverlay *components.ErrorOverlay

	status string
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Title   string
	Message string
}

// SnapshotLoadedMsg is sent when the datastore has been read
type SnapshotLoadedMsg struct {
	Snapshot *datastore.Snapshot
	Err      error
}

// DatastoreChangedMsg is sent when the watched datastore file changes
type DatastoreChangedMsg struct{}

// ExportDoneMsg is sent when an export finishes
type ExportDoneMsg struct {
	Path  string
	Count int
	Err   error
}

// New creates a new App reading products from src
func New(cfg *config.Config, src datastore.Source, l *log.Logger) *App {
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	if l == nil {
		l = logger.Discard()
	}

	state := models.NewAppState()
	if cfg.UI.PanelWidthRatio > 0 && cfg.UI.PanelWidthRatio < 100 {
		state.LeftPanelWidth = cfg.UI.PanelWidthRatio
	}
	state.Source = sourceLabel(cfg, src)

	th := theme.GetTheme(cfg.UI.Theme)

	tableView := components.NewTableView(th)
	tableView.MaxCellWidth = cfg.UI.MaxCellWidth

	app := &App{
		state:        state,
		config:       cfg,
		theme:        th,
		logger:       l,
		source:       src,
		filterBar:    components.NewFilterBar(th),
		tableView:    tableView,
		errorOverlay: components.NewErrorOverlay(th),
		leftPanel:    components.NewPanel("Filter", th),
		rightPanel:   components.NewPanel("Products", th),
	}

	app.updatePanelDimensions()
	app.updatePanelStyles()

	return app
}

// WatchChanges makes the app reload whenever ch delivers
func (a *App) WatchChanges(ch <-chan struct{}) {
	a.changes = ch
}

// Session returns the active filtering session, nil until the first load
func (a *App) Session() *selection.Session {
	return a.session
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadSnapshot, a.watchDatastore())
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ErrorMsg:
		a.ShowError(msg.Title, msg.Message)
		return a, nil

	case SnapshotLoadedMsg:
		if msg.Err != nil {
			a.logger.Error("failed to load datastore", "source", a.state.Source, "err", msg.Err)
			a.ShowError("Load Failed", fmt.Sprintf("Could not load products from %s\n\n%v", a.state.Source, msg.Err))
			return a, nil
		}
		a.session = selection.NewSession(msg.Snapshot, a.logger)
		a.state.SessionID = a.session.ID
		a.state.Loaded = true
		a.filterBar.Close()
		if a.state.ViewMode == models.FilterMode {
			a.state.ViewMode = models.NormalMode
		}
		a.refresh()
		a.status = fmt.Sprintf("Loaded %d products", len(msg.Snapshot.Products))
		return a, nil

	case DatastoreChangedMsg:
		a.logger.Info("datastore changed, reloading", "source", a.state.Source)
		return a, tea.Batch(a.loadSnapshot, a.watchDatastore())

	case ExportDoneMsg:
		if msg.Err != nil {
			a.logger.Error("export failed", "path", msg.Path, "err", msg.Err)
			a.ShowError("Export Failed", msg.Err.Error())
			return a, nil
		}
		a.logger.Info("exported products", "path", msg.Path, "count", msg.Count)
		a.status = fmt.Sprintf("Exported %d products to %s", msg.Count, msg.Path)
		return a, nil

	case components.PropertySelectedMsg:
		return a.applySelection(func(c *selection.Controller) error {
			return c.SelectProperty(msg.ID)
		})

	case components.OperatorSelectedMsg:
		return a.applySelection(func(c *selection.Controller) error {
			return c.SelectOperator(msg.ID)
		})

	case components.ValuesSelectedMsg:
		return a.applySelection(func(c *selection.Controller) error {
			if msg.Multi {
				return c.SelectValues(msg.Keys)
			}
			if len(msg.Keys) == 0 {
				return nil
			}
			return c.SelectValue(msg.Keys[0])
		})

	case components.ClearFiltersMsg:
		return a.applySelection(func(c *selection.Controller) error {
			c.Clear()
			return nil
		})

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.state.Width = msg.Width
		a.state.Height = msg.Height
		a.updatePanelDimensions()
		return a, nil
	}

	// Cursor blink and other input plumbing for the value picker
	if a.filterBar.Active() {
		return a, a.updateFilterBar(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.showError {
		if key == "esc" || key == "enter" {
			a.DismissError()
			return a, nil
		}
		// Allow quit keys to pass through even when error is showing
		if key == "q" || key == "ctrl+c" {
			return a, tea.Quit
		}
		return a, nil
	}

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	// An open picker takes every other key
	if a.filterBar.Active() {
		return a, a.updateFilterBar(msg)
	}

	if a.state.ViewMode == models.HelpMode {
		if key == "?" || key == "esc" || key == "q" {
			a.state.ViewMode = models.NormalMode
		}
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "?":
		a.state.ViewMode = models.HelpMode
		return a, nil
	case "tab":
		if a.state.FocusedPanel == models.LeftPanel {
			a.state.FocusedPanel = models.RightPanel
		} else {
			a.state.FocusedPanel = models.LeftPanel
		}
		a.updatePanelStyles()
		return a, nil
	case "r", "f5":
		a.status = "Reloading..."
		return a, a.loadSnapshot
	case "e":
		return a, a.exportDisplayed("csv")
	case "E":
		return a, a.exportDisplayed("json")
	case "f":
		a.state.FocusedPanel = models.LeftPanel
		a.updatePanelStyles()
	}

	if a.session == nil {
		return a, nil
	}

	if a.state.FocusedPanel == models.LeftPanel || key == "f" || key == "x" || key == "ctrl+r" {
		return a, a.updateFilterBar(msg)
	}

	switch key {
	case "up", "k":
		a.tableView.MoveSelection(-1)
	case "down", "j":
		a.tableView.MoveSelection(1)
	case "pgup", "ctrl+u":
		a.tableView.PageUp()
	case "pgdown", "ctrl+d":
		a.tableView.PageDown()
	case "g", "home":
		a.tableView.Home()
	case "G", "end":
		a.tableView.End()
	}
	return a, nil
}

func (a *App) updateFilterBar(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	a.filterBar, cmd = a.filterBar.Update(msg)
	if a.filterBar.Active() {
		a.state.ViewMode = models.FilterMode
	} else {
		a.state.ViewMode = models.NormalMode
	}
	return cmd
}

// applySelection runs one controller transition and re-renders from its state
func (a *App) applySelection(step func(*selection.Controller) error) (tea.Model, tea.Cmd) {
	if a.session == nil {
		return a, nil
	}

	ctrl := a.session.Controller
	if err := step(ctrl); err != nil {
		a.logger.Warn("filter step rejected", "stage", ctrl.Stage(), "err", err)
		a.refresh()
		a.ShowError("Filter Error", err.Error())
		return a, nil
	}

	a.refresh()
	if summary := ctrl.Describe(); summary != "" && ctrl.Stage() == selection.StageFiltered {
		a.status = fmt.Sprintf("%s: %s", summary, a.tableView.StatusText())
	} else {
		a.status = a.tableView.StatusText()
	}
	return a, nil
}

// refresh re-renders the filter bar and table from the controller
func (a *App) refresh() {
	if a.session == nil {
		return
	}
	ctrl := a.session.Controller
	a.filterBar.Sync(ctrl)
	a.tableView.SetProducts(ctrl.Properties(), ctrl.Products(), len(ctrl.AllProducts()))
}

// View implements tea.Model
func (a *App) View() string {
	if a.showError {
		return lipgloss.Place(
			a.state.Width, a.state.Height,
			lipgloss.Center, lipgloss.Center,
			a.errorOverlay.View(),
		)
	}

	if a.state.ViewMode == models.HelpMode {
		return help.Render(a.state.Width, a.state.Height, a.theme.BorderFocused)
	}

	return a.renderNormalView()
}

// renderNormalView renders the normal application view
func (a *App) renderNormalView() string {
	topBarRight := a.state.Source
	if a.session != nil {
		topBarRight = fmt.Sprintf("%s │ %s", a.state.Source, a.session.Controller.Stage())
	}
	topBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.BorderFocused).
		Foreground(lipgloss.Color("230")).
		Padding(0, 2).
		Render(a.formatStatusBar("lazyprod", topBarRight))

	bottomBarLeft := "[f] Filter | [x] Clear | [e] Export | [tab] Switch panel | [q] Quit"
	if a.status != "" {
		bottomBarLeft = a.status
	}
	bottomBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.Selection).
		Foreground(a.theme.Foreground).
		Padding(0, 2).
		Render(a.formatStatusBar(bottomBarLeft, "[?] Help"))

	a.leftPanel.Footer = ""
	if id := a.state.SessionID; id != "" {
		a.leftPanel.Footer = "session " + shortID(id)
	}
	a.filterBar.Width = a.leftPanel.Width
	a.filterBar.Height = a.leftPanel.BodyHeight()
	a.leftPanel.Content = a.filterBar.View()

	a.tableView.Width = a.rightPanel.Width
	a.tableView.Height = a.rightPanel.BodyHeight()
	if a.state.Loaded {
		a.rightPanel.Content = a.tableView.View()
	} else {
		a.rightPanel.Content = lipgloss.NewStyle().Foreground(a.theme.Metadata).Render("Loading products...")
	}

	panels := lipgloss.JoinHorizontal(
		lipgloss.Top,
		a.leftPanel.View(),
		a.rightPanel.View(),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		topBar,
		panels,
		bottomBar,
	)
}

// updatePanelDimensions calculates panel sizes based on window size
func (a *App) updatePanelDimensions() {
	if a.state.Width <= 0 || a.state.Height <= 0 {
		return
	}

	// Top bar, bottom bar and the panel borders
	contentHeight := a.state.Height - 4
	if contentHeight < 5 {
		contentHeight = 5
	}

	leftWidth := (a.state.Width * a.state.LeftPanelWidth) / 100
	if leftWidth < 20 {
		leftWidth = 20
	}

	// Subtract 4 to account for borders on both panels (2 chars each)
	rightWidth := a.state.Width - leftWidth - 4
	if rightWidth < 20 {
		rightWidth = 20
		leftWidth = a.state.Width - rightWidth - 4
	}

	a.leftPanel.Width = leftWidth
	a.leftPanel.Height = contentHeight
	a.rightPanel.Width = rightWidth
	a.rightPanel.Height = contentHeight
}

// updatePanelStyles moves the focus border to the focused panel
func (a *App) updatePanelStyles() {
	a.leftPanel.Focused = a.state.FocusedPanel == models.LeftPanel
	a.rightPanel.Focused = a.state.FocusedPanel == models.RightPanel
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatStatusBar formats a status bar with left and right aligned content
func (a *App) formatStatusBar(left, right string) string {
	// Account for padding (2 chars on each side = 4 total)
	availableWidth := a.state.Width - 4
	if availableWidth < 0 {
		availableWidth = 0
	}

	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)

	if leftLen+rightLen > availableWidth {
		if availableWidth > rightLen {
			return truncate(left, availableWidth-rightLen) + right
		}
		return truncate(left, availableWidth)
	}

	spacing := availableWidth - leftLen - rightLen
	return left + lipgloss.NewStyle().Width(spacing).Render("") + right
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}

// loadSnapshot reads the datastore in the background
func (a *App) loadSnapshot() tea.Msg {
	if a.source == nil {
		return SnapshotLoadedMsg{Err: fmt.Errorf("no datastore configured")}
	}

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	start := time.Now()
	snap, err := datastore.Load(ctx, a.source)
	if err != nil {
		return SnapshotLoadedMsg{Err: err}
	}
	a.logger.Debug("datastore loaded", "source", a.state.Source, "took", time.Since(start))
	return SnapshotLoadedMsg{Snapshot: snap}
}

// watchDatastore waits for the next change notification
func (a *App) watchDatastore() tea.Cmd {
	if a.changes == nil {
		return nil
	}
	ch := a.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return DatastoreChangedMsg{}
	}
}

// exportDisplayed writes the products currently shown to the export directory
func (a *App) exportDisplayed(format string) tea.Cmd {
	if a.session == nil {
		return nil
	}

	ctrl := a.session.Controller
	properties := ctrl.Properties()
	products := ctrl.Products()

	dir := a.config.Export.Dir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, fmt.Sprintf("products-%s.%s", time.Now().Format("20060102-150405"), format))

	return func() tea.Msg {
		var err error
		switch format {
		case "json":
			err = export.ExportToJSON(properties, products, path)
		default:
			err = export.ExportToCSV(properties, products, path)
		}
		return ExportDoneMsg{Path: path, Count: len(products), Err: err}
	}
}

// ShowError displays an error overlay with the given title and message
func (a *App) ShowError(title, message string) {
	a.errorOverlay.SetError(title, message)
	a.showError = true
}

// DismissError hides the error overlay
func (a *App) DismissError() {
	a.showError = false
}

func sourceLabel(cfg *config.Config, src datastore.Source) string {
	if path := datastore.WatchPath(src); path != "" {
		return filepath.Base(path)
	}
	if cfg.Datastore.Driver == "postgres" || cfg.Datastore.Driver == "postgresql" {
		pg := cfg.Datastore.Postgres
		return fmt.Sprintf("%s@%s/%s", pg.User, pg.Host, pg.Database)
	}
	return cfg.Datastore.Driver
}
