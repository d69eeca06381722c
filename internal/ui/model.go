// Package ui implements the workdeck terminal dashboard: a sidebar with
// an overview and a projects pane, forms for adding and editing
// projects, and a loading indicator driven by the synchronizer's
// tracker. All backend work runs in commands; the model itself never
// blocks.
package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/workdeck/internal/logging"
	"github.com/fyrsmithlabs/workdeck/internal/projects"
	"github.com/fyrsmithlabs/workdeck/internal/uistate"
)

// Sidebar views, in display order.
const (
	viewOverview = iota
	viewProjects
)

var viewNames = []string{"Overview", "Projects"}

// Projects pane modes. The list is the home mode; the others are modal
// and take over the key handling until they close back to the list.
const (
	modeList = iota
	modeAdd
	modeEdit
	modeConfirm
)

const (
	defaultWidth       = 100
	defaultTableHeight = 12
)

// Options configures a dashboard model.
type Options struct {
	Synchronizer *projects.Synchronizer
	Store        *uistate.Store
	Logger       *logging.Logger

	// Env is shown in the header so it is always obvious which backend
	// the dashboard is pointed at.
	Env string

	RefreshInterval time.Duration
	ConfirmDelete   bool

	// InitialState restores the sidebar and view selection from the
	// previous run.
	InitialState uistate.State
}

// Model is the BubbleTea model for the workdeck dashboard.
type Model struct {
	sync          *projects.Synchronizer
	store         *uistate.Store
	log           *logging.Logger
	env           string
	interval      time.Duration
	confirmDelete bool

	width  int
	height int

	activeView       int
	sidebarCollapsed bool
	mode             int

	table   table.Model
	inputs  []textinput.Model
	focus   int
	formErr error
	session projects.EditSession

	deleteTarget string

	spin           spinner.Model
	loadingVisible bool

	help         help.Model
	listKeys     listKeyMap
	overviewKeys overviewKeyMap
	formKeys     formKeyMap
	confirmKeys  confirmKeyMap

	status     string
	statusErr  bool
	lastErr    error
	lastSync   string
	syncFailed bool
	lastUpdate time.Time

	quitting bool
}

// New creates a dashboard model.
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 30 * time.Second
	}

	t := table.New(
		table.WithColumns(projectColumns(defaultWidth)),
		table.WithFocused(true),
		table.WithHeight(defaultTableHeight),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("238")).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color("51"))
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("51")).
		Bold(true)
	t.SetStyles(ts)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	m := Model{
		sync:          opts.Synchronizer,
		store:         opts.Store,
		log:           opts.Logger,
		env:           opts.Env,
		interval:      opts.RefreshInterval,
		confirmDelete: opts.ConfirmDelete,
		width:         defaultWidth,
		table:         t,
		spin:          sp,
		help:          help.New(),
		listKeys:      newListKeyMap(),
		overviewKeys:  newOverviewKeyMap(),
		formKeys:      newFormKeyMap(),
		confirmKeys:   newConfirmKeyMap(),
	}

	m.activeView = viewFromStateName(opts.InitialState.ActiveView)
	m.sidebarCollapsed = opts.InitialState.SidebarCollapsed
	return m
}

// viewFromStateName maps a persisted view name back to its index.
// Unknown names fall back to the overview.
func viewFromStateName(name string) int {
	if name == "projects" {
		return viewProjects
	}
	return viewOverview
}

func viewStateName(view int) string {
	if view == viewProjects {
		return "projects"
	}
	return "overview"
}

func (m Model) persistedState() uistate.State {
	return uistate.State{
		ActiveView:       viewStateName(m.activeView),
		SidebarCollapsed: m.sidebarCollapsed,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tick(m.interval),
		loadProjects(m.sync),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetColumns(projectColumns(m.contentWidth()))
		m.table.SetHeight(m.tableHeight())
		return m, nil

	case tickMsg:
		// Auto-refresh triggered
		return m, tea.Batch(
			tick(m.interval),
			loadProjects(m.sync),
		)

	case LoadingMsg:
		m.loadingVisible = msg.Visible
		if msg.Visible {
			return m, m.spin.Tick
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loadingVisible {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case projectsLoadedMsg:
		m = m.setTableRows(msg)
		m.lastUpdate = time.Now()
		m.lastErr = nil
		return m, nil

	case projectSavedMsg:
		m.mode = modeList
		m = m.setTableRows(m.sync.Projects())
		m.status = fmt.Sprintf("added %q", msg.Title)
		m.statusErr = false
		m.lastErr = nil
		return m, nil

	case commitDoneMsg:
		m.mode = modeList
		m = m.setTableRows(m.sync.Projects())
		if msg.err != nil && len(msg.results) == 0 {
			m.status = msg.err.Error()
		} else {
			m.status = FormatFieldResults(msg.results)
		}
		m.statusErr = msg.err != nil
		if msg.err == nil {
			m.lastErr = nil
		}
		return m, nil

	case deleteDoneMsg:
		m.mode = modeList
		m = m.setTableRows(m.sync.Projects())
		m.status = fmt.Sprintf("deleted %q", string(msg))
		m.statusErr = false
		m.lastErr = nil
		return m, nil

	case syncDoneMsg:
		// A sync the server declined still carries its message; only
		// transport or decode failures land on the error line.
		if msg.err != nil && !errors.Is(msg.err, projects.ErrSyncFailed) {
			m.lastErr = msg.err
			return m, nil
		}
		m.lastSync = msg.message
		m.syncFailed = msg.err != nil
		m.lastErr = nil
		return m, nil

	case errMsg:
		m.lastErr = error(msg)
		return m, nil
	}

	return m, nil
}

// handleKey routes key presses by mode: modal modes own the keyboard,
// everything else lands on the shared navigation keys first.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// ctrl+c quits from anywhere, including inside a text field.
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.mode {
	case modeAdd, modeEdit:
		return m.handleFormKey(msg)
	case modeConfirm:
		return m.handleConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, m.listKeys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.listKeys.Tab):
		m.activeView = (m.activeView + 1) % len(viewNames)
		m.status = ""
		return m, saveState(m.store, m.persistedState())

	case msg.String() == "1":
		m.activeView = viewOverview
		return m, saveState(m.store, m.persistedState())

	case msg.String() == "2":
		m.activeView = viewProjects
		return m, saveState(m.store, m.persistedState())

	case key.Matches(msg, m.listKeys.Sidebar):
		m.sidebarCollapsed = !m.sidebarCollapsed
		return m, saveState(m.store, m.persistedState())

	case key.Matches(msg, m.listKeys.Reload):
		return m, loadProjects(m.sync)
	}

	if m.activeView == viewOverview {
		if key.Matches(msg, m.overviewKeys.Sync) {
			return m, syncWeekly(m.sync)
		}
		return m, nil
	}

	return m.handleListKey(msg)
}

// handleListKey handles keys specific to the projects table.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.listKeys.Add):
		m = m.openAddForm()
		return m, textinput.Blink

	case key.Matches(msg, m.listKeys.Edit):
		row := m.table.SelectedRow()
		if row == nil {
			return m, nil
		}
		p, ok := m.sync.Get(row[1])
		if !ok {
			return m, nil
		}
		m = m.openEditForm(p)
		return m, textinput.Blink

	case key.Matches(msg, m.listKeys.Delete):
		row := m.table.SelectedRow()
		if row == nil {
			return m, nil
		}
		if !m.confirmDelete {
			return m, deleteProject(m.sync, row[1])
		}
		m.mode = modeConfirm
		m.deleteTarget = row[1]
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleConfirmKey handles the delete confirmation prompt.
func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.confirmKeys.Yes):
		title := m.deleteTarget
		m.mode = modeList
		m.deleteTarget = ""
		return m, deleteProject(m.sync, title)

	case key.Matches(msg, m.confirmKeys.No):
		m.mode = modeList
		m.deleteTarget = ""
		return m, nil
	}
	return m, nil
}
