package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/workdeck/internal/projects"
)

const (
	sidebarWidth = 16
	chartHeight  = 8
)

// View renders the dashboard
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch {
	case m.mode == modeAdd, m.mode == modeEdit:
		content = m.renderForm()
	case m.mode == modeConfirm:
		content = m.renderConfirm()
	case m.activeView == viewOverview:
		content = m.renderOverview()
	default:
		content = m.renderProjects()
	}

	body := content
	if !m.sidebarCollapsed {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), content)
	}

	return m.renderHeader() + "\n" + body + "\n" + m.renderFooter()
}

// renderHeader renders the title bar with the environment, the loading
// indicator, and the last refresh time.
func (m Model) renderHeader() string {
	line := headerStyle.Render(" workdeck ")
	if m.env != "" {
		line += "  " + dimStyle.Render(m.env)
	}
	if m.loadingVisible {
		line += "  " + m.spin.View() + " " + spinnerStyle.Render("syncing")
	}
	if !m.lastUpdate.IsZero() {
		line += "  " + dimStyle.Render("updated "+m.lastUpdate.Format("3:04:05 PM"))
	}
	return line
}

// renderSidebar renders the view switcher.
func (m Model) renderSidebar() string {
	lines := make([]string, 0, len(viewNames))
	for i, name := range viewNames {
		entry := fmt.Sprintf("%d %s", i+1, name)
		if i == m.activeView {
			lines = append(lines, sidebarActiveStyle.Render("▸ "+entry))
		} else {
			lines = append(lines, sidebarItemStyle.Render("  "+entry))
		}
	}
	return sidebarStyle.Render(strings.Join(lines, "\n"))
}

// renderOverview renders the portfolio summary with the hours chart.
func (m Model) renderOverview() string {
	list := m.sync.Projects()

	total := 0
	for _, p := range list {
		total += p.WeeklyHours
	}

	var content string
	content += sectionStyle.Render("┃ Portfolio") + "\n"
	content += labelStyle.Render("  Projects: ") + valueStyle.Render(strconv.Itoa(len(list))) + "\n"
	content += labelStyle.Render("  Planned:  ") + valueStyle.Render(FormatHours(total))
	if len(list) > 0 {
		avg := float64(total) / float64(len(list))
		content += " " + dimStyle.Render(fmt.Sprintf("(%.1f avg)", avg))
	}
	content += "\n"

	content += "\n" + sectionStyle.Render("┃ Hours Per Project") + "\n"
	content += m.renderHoursChart(list) + "\n"

	content += "\n" + sectionStyle.Render("┃ Weekly Sync") + "\n"
	content += m.renderSyncLine() + "\n"

	return containerStyle.Render(content)
}

// renderHoursChart renders a bar per project scaled by weekly hours.
func (m Model) renderHoursChart(list []projects.Project) string {
	if len(list) == 0 {
		return dimStyle.Render("  no projects yet")
	}

	total := 0
	data := make([]barchart.BarData, 0, len(list))
	for _, p := range list {
		total += p.WeeklyHours
		data = append(data, barchart.BarData{
			Label: Truncate(p.Title, 10),
			Values: []barchart.BarValue{
				{Name: "hours", Value: float64(p.WeeklyHours), Style: barStyle},
			},
		})
	}
	if total == 0 {
		return dimStyle.Render("  no hours planned yet")
	}

	bc := barchart.New(m.chartWidth(), chartHeight)
	bc.PushAll(data)
	bc.Draw()
	return bc.View()
}

// renderSyncLine renders the outcome of the last weekly sync.
func (m Model) renderSyncLine() string {
	if m.lastSync == "" {
		return dimStyle.Render("  not run yet, press s to sync with Todoist")
	}
	if m.syncFailed {
		return warningStyle.Render("  ⚠ ") + valueStyle.Render(m.lastSync)
	}
	return healthyStyle.Render("  ✓ ") + valueStyle.Render(m.lastSync)
}

// renderProjects renders the project table.
func (m Model) renderProjects() string {
	var content string
	content += sectionStyle.Render(fmt.Sprintf("┃ Projects (%d)", m.sync.Len())) + "\n"
	if m.sync.Len() == 0 {
		content += dimStyle.Render("  no projects yet, press a to add one") + "\n"
		return containerStyle.Render(content)
	}
	content += m.table.View()
	return containerStyle.Render(content)
}

// renderForm renders the add or edit form.
func (m Model) renderForm() string {
	title := "┃ Add Project"
	if m.mode == modeEdit {
		title = "┃ Edit Project"
	}

	var content string
	content += sectionStyle.Render(title) + "\n\n"
	for i := range m.inputs {
		content += formLabelStyle.Render(fieldLabels[i]) + m.inputs[i].View() + "\n"
	}
	if m.mode == modeEdit {
		content += "\n" + dimStyle.Render(fmt.Sprintf("  editing %q, changed fields commit one by one", m.session.OriginalTitle)) + "\n"
	}
	if m.formErr != nil {
		content += "\n" + errorStyle.Render("  ✗ "+m.formErr.Error()) + "\n"
	}
	return containerStyle.Render(content)
}

// renderConfirm renders the delete confirmation prompt.
func (m Model) renderConfirm() string {
	var content string
	content += sectionStyle.Render("┃ Delete Project") + "\n\n"
	content += labelStyle.Render("  Delete ") + valueStyle.Render(fmt.Sprintf("%q", m.deleteTarget)) + labelStyle.Render(" from the tracker?") + "\n\n"
	content += "  " + footerKeyStyle.Render("[y]") + footerStyle.Render(" delete  ") +
		footerKeyStyle.Render("[n]") + footerStyle.Render(" keep") + "\n"
	return containerStyle.Render(content)
}

// renderFooter renders the status line, the error line, and the key help.
func (m Model) renderFooter() string {
	var lines []string
	if m.status != "" {
		if m.statusErr {
			lines = append(lines, errorStyle.Render("✗ "+m.status))
		} else {
			lines = append(lines, healthyStyle.Render("✓ "+m.status))
		}
	}
	if m.lastErr != nil {
		lines = append(lines, errorStyle.Render("✗ "+m.lastErr.Error()))
	}
	lines = append(lines, footerStyle.Render(m.help.View(m.currentKeys())))
	return strings.Join(lines, "\n")
}

// currentKeys returns the key map for the active mode and view.
func (m Model) currentKeys() help.KeyMap {
	switch m.mode {
	case modeAdd, modeEdit:
		return m.formKeys
	case modeConfirm:
		return m.confirmKeys
	}
	if m.activeView == viewOverview {
		return m.overviewKeys
	}
	return m.listKeys
}

// setTableRows rebuilds the table from a project list. Row cells keep
// the full values; the table clips them to the column widths, and the
// title cell doubles as the row key for edit and delete.
func (m Model) setTableRows(list []projects.Project) Model {
	rows := make([]table.Row, 0, len(list))
	for _, p := range list {
		rows = append(rows, table.Row{
			strconv.FormatInt(p.ID, 10),
			p.Title,
			p.Description,
			p.TechStack,
			strconv.Itoa(p.WeeklyHours),
		})
	}
	m.table.SetRows(rows)
	return m
}

// projectColumns sizes the table columns for the given content width.
func projectColumns(width int) []table.Column {
	flex := width - 4 - 7 - 10
	if flex < 36 {
		flex = 36
	}
	title := flex * 30 / 100
	tech := flex * 25 / 100
	desc := flex - title - tech

	return []table.Column{
		{Title: "ID", Width: 4},
		{Title: "Title", Width: title},
		{Title: "Description", Width: desc},
		{Title: "Tech Stack", Width: tech},
		{Title: "Hrs/wk", Width: 7},
	}
}

// contentWidth is the width left for the content pane.
func (m Model) contentWidth() int {
	w := m.width
	if !m.sidebarCollapsed {
		w -= sidebarWidth
	}
	w -= 4 // container border and padding
	if w < 40 {
		w = 40
	}
	return w
}

// tableHeight fits the table under the header and above the footer.
func (m Model) tableHeight() int {
	if m.height == 0 {
		return defaultTableHeight
	}
	h := m.height - 9
	if h < 5 {
		h = 5
	}
	return h
}

// chartWidth bounds the bar chart so labels stay readable.
func (m Model) chartWidth() int {
	w := m.contentWidth() - 2
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}
