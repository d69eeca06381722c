package ui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/workdeck/internal/projects"
)

// Form fields, top to bottom. The order matches the column apply order
// so the form reads the same way commits are reported.
const (
	fieldTitle = iota
	fieldDescription
	fieldTechStack
	fieldHours
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Description", "Tech stack", "Hours/week"}

const formInputWidth = 40

// newFormInputs builds the four project fields with the title focused.
func newFormInputs() []textinput.Model {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 200
		ti.Width = formInputWidth
		ti.Cursor.Style = formFocusStyle
		switch i {
		case fieldTitle:
			ti.Placeholder = "project name"
		case fieldDescription:
			ti.Placeholder = "what it is"
		case fieldTechStack:
			ti.Placeholder = "go, postgres, ..."
		case fieldHours:
			ti.Placeholder = "0"
			ti.CharLimit = 3
			ti.Width = 6
		}
		inputs[i] = ti
	}
	return inputs
}

func (m Model) openAddForm() Model {
	m.mode = modeAdd
	m.inputs = newFormInputs()
	m.formErr = nil
	m.status = ""
	return m.setFocus(fieldTitle)
}

func (m Model) openEditForm(p projects.Project) Model {
	m.mode = modeEdit
	m.session = projects.NewEditSession(p)
	m.inputs = newFormInputs()
	m.inputs[fieldTitle].SetValue(p.Title)
	m.inputs[fieldDescription].SetValue(p.Description)
	m.inputs[fieldTechStack].SetValue(p.TechStack)
	m.inputs[fieldHours].SetValue(strconv.Itoa(p.WeeklyHours))
	m.formErr = nil
	m.status = ""
	return m.setFocus(fieldTitle)
}

// setFocus moves the form focus, restyling so only the focused field
// shows the accent color.
func (m Model) setFocus(idx int) Model {
	m.focus = idx
	for i := range m.inputs {
		if i == idx {
			m.inputs[i].Focus()
			m.inputs[i].PromptStyle = formFocusStyle
			m.inputs[i].TextStyle = formFocusStyle
		} else {
			m.inputs[i].Blur()
			m.inputs[i].PromptStyle = lipgloss.NewStyle()
			m.inputs[i].TextStyle = lipgloss.NewStyle()
		}
	}
	return m
}

// handleFormKey handles keys while a form is open. Enter advances
// through the fields and submits from the last one; ctrl+s submits
// from anywhere.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.formKeys.Cancel):
		m.mode = modeList
		m.formErr = nil
		return m, nil

	case key.Matches(msg, m.formKeys.Submit):
		return m.submitForm()

	case key.Matches(msg, m.formKeys.Next):
		return m.setFocus((m.focus + 1) % fieldCount), nil

	case key.Matches(msg, m.formKeys.Prev):
		return m.setFocus((m.focus + fieldCount - 1) % fieldCount), nil

	case msg.Type == tea.KeyEnter:
		if m.focus == fieldCount-1 {
			return m.submitForm()
		}
		return m.setFocus(m.focus + 1), nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submitForm validates the draft locally, then hands it to the backend.
// Validation failures keep the form open with the error shown inline.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	draft, err := m.formProject()
	if err != nil {
		m.formErr = err
		return m, nil
	}

	if m.mode == modeEdit {
		session := m.session
		session.Draft = draft
		return m, commitEdit(m.sync, session)
	}
	return m, addProject(m.sync, draft)
}

// formProject reads the form fields into a project.
func (m Model) formProject() (projects.Project, error) {
	hours, err := projects.ParseWeeklyHours(m.inputs[fieldHours].Value())
	if err != nil {
		return projects.Project{}, err
	}

	p := projects.Project{
		Title:       m.inputs[fieldTitle].Value(),
		Description: m.inputs[fieldDescription].Value(),
		TechStack:   m.inputs[fieldTechStack].Value(),
		WeeklyHours: hours,
	}
	if err := p.Validate(); err != nil {
		return projects.Project{}, err
	}
	return p, nil
}
