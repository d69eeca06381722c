package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fyrsmithlabs/workdeck/internal/projects"
	"github.com/fyrsmithlabs/workdeck/internal/uistate"
)

// requestTimeout bounds every backend call issued from the UI.
const requestTimeout = 5 * time.Second

// LoadingMsg reports a visibility change of the loading indicator. It is
// sent into the program from the tracker callback, so it is exported.
type LoadingMsg struct {
	Visible bool
}

// Message types
type tickMsg time.Time
type projectsLoadedMsg []projects.Project
type projectSavedMsg projects.Project
type commitDoneMsg struct {
	results []projects.FieldResult
	err     error
}
type deleteDoneMsg string
type syncDoneMsg struct {
	message string
	err     error
}
type errMsg error

// tick creates a tick command for auto-refresh
func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadProjects reloads the full project list from the backend.
func loadProjects(sync *projects.Synchronizer) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := sync.Load(ctx); err != nil {
			return errMsg(err)
		}
		return projectsLoadedMsg(sync.Projects())
	}
}

// addProject creates a project on the backend.
func addProject(sync *projects.Synchronizer, p projects.Project) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := sync.Add(ctx, p); err != nil {
			return errMsg(err)
		}
		saved, _ := sync.Get(p.Title)
		return projectSavedMsg(saved)
	}
}

// commitEdit applies an edit session field by field. The message always
// carries the per-field results, including partial ones on failure.
func commitEdit(sync *projects.Synchronizer, session projects.EditSession) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		results, err := sync.CommitEdit(ctx, session)
		return commitDoneMsg{results: results, err: err}
	}
}

// deleteProject removes a project on the backend.
func deleteProject(sync *projects.Synchronizer, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := sync.Delete(ctx, title); err != nil {
			return errMsg(err)
		}
		return deleteDoneMsg(title)
	}
}

// syncWeekly triggers the weekly task sync.
func syncWeekly(sync *projects.Synchronizer) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		message, err := sync.SyncWeekly(ctx)
		return syncDoneMsg{message: message, err: err}
	}
}

// saveState persists the sidebar and view selection in the background.
func saveState(store *uistate.Store, state uistate.State) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		if err := store.Save(state); err != nil {
			return errMsg(err)
		}
		return nil
	}
}
