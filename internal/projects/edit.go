package projects

import (
	"context"
	"fmt"
	"strings"
)

// EditSession captures one open edit form: the project as it looked when
// the form was opened, and the draft the user typed. OriginalTitle is
// the key the first request is addressed to; it survives even when the
// draft renames the project.
type EditSession struct {
	OriginalTitle string
	Original      Project
	Draft         Project
}

// NewEditSession opens an edit session for a project.
func NewEditSession(p Project) EditSession {
	return EditSession{
		OriginalTitle: p.Title,
		Original:      p,
		Draft:         p,
	}
}

// FieldResult reports the outcome of one planned field update. A commit
// returns one result per changed field, in apply order, so callers can
// tell exactly which updates landed when a commit stops partway.
type FieldResult struct {
	Column  string
	Value   any
	Applied bool
	Err     error
}

// CommitEdit applies an edit session one field at a time, in the fixed
// order title, description, tech_stack, weekly_hours. The wire contract
// takes one column per request, so a commit is a sequence, not a
// transaction: on the first failure the remaining fields are not
// attempted, already-applied fields stay applied, and the returned
// results say which was which.
//
// Fields are diffed against the current local entry, not the session's
// snapshot, so a value someone else already brought up to date is not
// re-sent. After a successful rename the remaining requests address the
// new title. A session whose draft changes nothing returns (nil, nil)
// without touching the network.
func (s *Synchronizer) CommitEdit(ctx context.Context, session EditSession) ([]FieldResult, error) {
	current, ok := s.Get(session.OriginalTitle)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, session.OriginalTitle)
	}

	if strings.TrimSpace(session.Draft.Title) == "" {
		return nil, ErrTitleRequired
	}

	var planned []FieldResult
	if session.Draft.Title != current.Title {
		planned = append(planned, FieldResult{Column: ColumnTitle, Value: session.Draft.Title})
	}
	if session.Draft.Description != current.Description {
		planned = append(planned, FieldResult{Column: ColumnDescription, Value: session.Draft.Description})
	}
	if session.Draft.TechStack != current.TechStack {
		planned = append(planned, FieldResult{Column: ColumnTechStack, Value: session.Draft.TechStack})
	}
	if session.Draft.WeeklyHours != current.WeeklyHours {
		planned = append(planned, FieldResult{Column: ColumnWeeklyHours, Value: session.Draft.WeeklyHours})
	}

	if len(planned) == 0 {
		return nil, nil
	}

	key := session.OriginalTitle
	for i := range planned {
		if err := s.UpdateField(ctx, key, planned[i].Column, planned[i].Value); err != nil {
			planned[i].Err = err
			return planned, err
		}
		planned[i].Applied = true

		// The rename changed the addressing key for everything after it.
		if planned[i].Column == ColumnTitle {
			key = session.Draft.Title
		}
	}

	return planned, nil
}
