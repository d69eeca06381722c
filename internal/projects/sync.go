package projects

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/workdeck/internal/api"
	"github.com/fyrsmithlabs/workdeck/internal/loading"
	"github.com/fyrsmithlabs/workdeck/internal/logging"
)

// Response envelopes for the project endpoints. Every payload carries a
// success flag; a missing or false one outside the sync endpoint means
// the server sent something this client does not understand.
type listEnvelope struct {
	Success  bool      `json:"success"`
	Projects []Project `json:"projects"`
}

type projectEnvelope struct {
	Success bool    `json:"success"`
	Project Project `json:"project"`
}

type deleteEnvelope struct {
	Success bool   `json:"success"`
	Deleted bool   `json:"deleted"`
	Title   string `json:"title"`
}

type syncEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// updateRequest is the one-field PATCH body.
type updateRequest struct {
	Title  string `json:"title"`
	Column string `json:"column"`
	Value  any    `json:"value"`
}

// Synchronizer mirrors the backend's project list in memory. The list
// keeps the server's order; additions go to the tail. All mutating
// operations hit the backend first and fold the canonical response into
// the local list, so the mirror never gets ahead of the server.
type Synchronizer struct {
	client  *api.Client
	tracker *loading.Tracker
	log     *logging.Logger

	mu       sync.RWMutex
	projects []Project
}

// NewSynchronizer creates a synchronizer. The tracker may be nil for
// non-interactive callers that have no busy indicator.
func NewSynchronizer(client *api.Client, tracker *loading.Tracker, log *logging.Logger) *Synchronizer {
	if log == nil {
		log = logging.NewNop()
	}
	return &Synchronizer{
		client:  client,
		tracker: tracker,
		log:     log,
	}
}

// Projects returns a copy of the local list in server order.
func (s *Synchronizer) Projects() []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// Get returns the local entry with the given title.
func (s *Synchronizer) Get(title string) (Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.projects {
		if p.Title == title {
			return p, true
		}
	}
	return Project{}, false
}

// Len returns the number of local entries.
func (s *Synchronizer) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}

// Load fetches the full project list and replaces the local mirror.
// On any error the mirror keeps its previous contents.
func (s *Synchronizer) Load(ctx context.Context) error {
	s.begin()
	defer s.end()

	raw, err := s.client.Get(ctx, "/projects/")
	if err != nil {
		return fmt.Errorf("failed to load projects: %w", err)
	}

	var env listEnvelope
	if err := unmarshalEnvelope(raw, &env, "project list"); err != nil {
		return err
	}
	if err := requireSuccess(env.Success, "project list"); err != nil {
		return err
	}

	s.mu.Lock()
	s.projects = env.Projects
	s.mu.Unlock()

	s.log.Debug(ctx, "projects loaded", zap.Int("count", len(env.Projects)))
	return nil
}

// Add creates a project and appends the server's canonical row (with its
// assigned id) to the tail of the local list. A blank title fails before
// any request is made.
func (s *Synchronizer) Add(ctx context.Context, p Project) error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrTitleRequired
	}

	s.begin()
	defer s.end()

	p.ID = 0 // the server assigns ids
	raw, err := s.client.Post(ctx, "/projects/add", p)
	if err != nil {
		return fmt.Errorf("failed to add project: %w", err)
	}

	var env projectEnvelope
	if err := unmarshalEnvelope(raw, &env, "add project"); err != nil {
		return err
	}
	if err := requireSuccess(env.Success, "add project"); err != nil {
		return err
	}

	s.mu.Lock()
	s.projects = append(s.projects, env.Project)
	s.mu.Unlock()

	s.log.Info(ctx, "project added",
		zap.String("title", env.Project.Title),
		zap.Int64("id", env.Project.ID),
	)
	return nil
}

// UpdateField changes one column of the project currently titled title.
// The local entry is replaced with the canonical row the server returns;
// when the column is the title itself, the entry is found under the old
// title and stored under the new one.
func (s *Synchronizer) UpdateField(ctx context.Context, title, column string, value any) error {
	if !ValidColumn(column) {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}

	s.begin()
	defer s.end()

	raw, err := s.client.Patch(ctx, "/projects/update", updateRequest{
		Title:  title,
		Column: column,
		Value:  value,
	})
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", column, err)
	}

	var env projectEnvelope
	if err := unmarshalEnvelope(raw, &env, "update project"); err != nil {
		return err
	}
	if err := requireSuccess(env.Success, "update project"); err != nil {
		return err
	}

	s.replace(title, env.Project)

	s.log.Info(ctx, "project updated",
		zap.String("title", title),
		zap.String("column", column),
	)
	return nil
}

// Delete removes the project with exactly this title, locally and on the
// server. The rest of the list keeps its order.
func (s *Synchronizer) Delete(ctx context.Context, title string) error {
	s.begin()
	defer s.end()

	raw, err := s.client.Delete(ctx, "/projects/delete-project/"+url.PathEscape(title))
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	var env deleteEnvelope
	if err := unmarshalEnvelope(raw, &env, "delete project"); err != nil {
		return err
	}
	if err := requireSuccess(env.Success, "delete project"); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.projects {
		if s.projects[i].Title == title {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.log.Info(ctx, "project deleted", zap.String("title", title))
	return nil
}

// Refresh fetches a single project and folds it into the local list.
func (s *Synchronizer) Refresh(ctx context.Context, title string) (Project, error) {
	s.begin()
	defer s.end()

	raw, err := s.client.Get(ctx, "/projects/"+url.PathEscape(title))
	if err != nil {
		return Project{}, fmt.Errorf("failed to fetch project: %w", err)
	}

	var env projectEnvelope
	if err := unmarshalEnvelope(raw, &env, "fetch project"); err != nil {
		return Project{}, err
	}
	if err := requireSuccess(env.Success, "fetch project"); err != nil {
		return Project{}, err
	}

	s.replace(title, env.Project)
	return env.Project, nil
}

// SyncWeekly triggers the weekly task sync and returns the server's
// message. The endpoint reports failures with HTTP 200 and success=false;
// that outcome comes back as ErrSyncFailed alongside the message.
func (s *Synchronizer) SyncWeekly(ctx context.Context) (string, error) {
	s.begin()
	defer s.end()

	raw, err := s.client.Get(ctx, "/todoist/weekly-sync")
	if err != nil {
		return "", fmt.Errorf("failed to trigger weekly sync: %w", err)
	}

	var env syncEnvelope
	if err := unmarshalEnvelope(raw, &env, "weekly sync"); err != nil {
		return "", err
	}

	if !env.Success {
		s.log.Warn(ctx, "weekly sync rejected", zap.String("message", env.Message))
		return env.Message, fmt.Errorf("%w: %s", ErrSyncFailed, env.Message)
	}

	s.log.Info(ctx, "weekly sync completed", zap.String("message", env.Message))
	return env.Message, nil
}

// replace swaps the local entry titled title for the canonical row, or
// appends the row when the title is not mirrored yet.
func (s *Synchronizer) replace(title string, p Project) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.projects {
		if s.projects[i].Title == title {
			s.projects[i] = p
			return
		}
	}
	s.projects = append(s.projects, p)
}

func (s *Synchronizer) begin() {
	if s.tracker != nil {
		s.tracker.Begin()
	}
}

func (s *Synchronizer) end() {
	if s.tracker != nil {
		s.tracker.End()
	}
}

// unmarshalEnvelope decodes a response envelope. An empty or undecodable
// body is an unexpected shape; the caller still has to interpret the
// success flag.
func unmarshalEnvelope(raw json.RawMessage, v any, what string) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty %s response", ErrUnexpectedResponse, what)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: malformed %s response: %v", ErrUnexpectedResponse, what, err)
	}
	return nil
}

// requireSuccess turns a false success flag into an unexpected-response
// error. The sync endpoint is the one place a false flag is a legitimate
// outcome and does not go through here.
func requireSuccess(success bool, what string) error {
	if !success {
		return fmt.Errorf("%w: %s response reported success=false", ErrUnexpectedResponse, what)
	}
	return nil
}
