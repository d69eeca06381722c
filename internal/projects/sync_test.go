package projects

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/workdeck/internal/api"
	"github.com/fyrsmithlabs/workdeck/internal/loading"
	"github.com/fyrsmithlabs/workdeck/internal/logging"
)

// patchRecord is one recorded PATCH body.
type patchRecord struct {
	Title  string
	Column string
	Value  any
}

// fakeBackend implements the project endpoints with in-memory rows and
// records every call the client makes.
type fakeBackend struct {
	t *testing.T

	mu      sync.Mutex
	rows    []Project
	nextID  int64
	calls   []string
	patches []patchRecord

	failColumn  string // PATCH for this column answers 500
	syncSuccess bool
	syncMessage string

	server *httptest.Server
}

func newFakeBackend(t *testing.T, seed ...Project) *fakeBackend {
	t.Helper()

	fb := &fakeBackend{
		t:           t,
		nextID:      int64(len(seed)) + 1,
		syncSuccess: true,
		syncMessage: "Created 3 tasks for this week",
	}
	for i := range seed {
		seed[i].ID = int64(i) + 1
	}
	fb.rows = seed

	fb.server = httptest.NewServer(http.HandlerFunc(fb.handle))
	t.Cleanup(fb.server.Close)
	return fb
}

func (fb *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	fb.calls = append(fb.calls, r.Method+" "+r.URL.Path)
	fb.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && path == "/projects/":
		fb.writeJSON(w, map[string]any{"success": true, "projects": fb.snapshot()})

	case r.Method == http.MethodPost && path == "/projects/add":
		fb.handleAdd(w, r)

	case r.Method == http.MethodPatch && path == "/projects/update":
		fb.handleUpdate(w, r)

	case r.Method == http.MethodDelete && strings.HasPrefix(path, "/projects/delete-project/"):
		fb.handleDelete(w, strings.TrimPrefix(path, "/projects/delete-project/"))

	case r.Method == http.MethodGet && path == "/todoist/weekly-sync":
		fb.writeJSON(w, map[string]any{"success": fb.syncSuccess, "message": fb.syncMessage})

	case r.Method == http.MethodGet && strings.HasPrefix(path, "/projects/"):
		fb.handleGetOne(w, strings.TrimPrefix(path, "/projects/"))

	default:
		fb.writeError(w, http.StatusNotFound, "Not Found")
	}
}

func (fb *fakeBackend) handleAdd(w http.ResponseWriter, r *http.Request) {
	var p Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		fb.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, row := range fb.rows {
		if row.Title == p.Title {
			fb.writeError(w, http.StatusBadRequest, "Project with this title already exists")
			return
		}
	}

	p.ID = fb.nextID
	fb.nextID++
	fb.rows = append(fb.rows, p)
	fb.writeJSON(w, map[string]any{"success": true, "project": p})
}

func (fb *fakeBackend) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title  string          `json:"title"`
		Column string          `json:"column"`
		Value  json.RawMessage `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fb.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	if fb.failColumn != "" && req.Column == fb.failColumn {
		fb.writeError(w, http.StatusInternalServerError, "update failed")
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i := range fb.rows {
		if fb.rows[i].Title != req.Title {
			continue
		}

		rec := patchRecord{Title: req.Title, Column: req.Column}
		switch req.Column {
		case ColumnTitle:
			var v string
			require.NoError(fb.t, json.Unmarshal(req.Value, &v))
			fb.rows[i].Title = v
			rec.Value = v
		case ColumnDescription:
			var v string
			require.NoError(fb.t, json.Unmarshal(req.Value, &v))
			fb.rows[i].Description = v
			rec.Value = v
		case ColumnTechStack:
			var v string
			require.NoError(fb.t, json.Unmarshal(req.Value, &v))
			fb.rows[i].TechStack = v
			rec.Value = v
		case ColumnWeeklyHours:
			var v int
			require.NoError(fb.t, json.Unmarshal(req.Value, &v))
			fb.rows[i].WeeklyHours = v
			rec.Value = v
		default:
			fb.writeError(w, http.StatusBadRequest, "Invalid column")
			return
		}

		fb.patches = append(fb.patches, rec)
		fb.writeJSON(w, map[string]any{"success": true, "project": fb.rows[i]})
		return
	}

	fb.writeError(w, http.StatusNotFound, "Project not found")
}

func (fb *fakeBackend) handleDelete(w http.ResponseWriter, title string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i := range fb.rows {
		if fb.rows[i].Title == title {
			fb.rows = append(fb.rows[:i], fb.rows[i+1:]...)
			fb.writeJSON(w, map[string]any{"success": true, "deleted": true, "title": title})
			return
		}
	}
	fb.writeError(w, http.StatusNotFound, "Project not found")
}

func (fb *fakeBackend) handleGetOne(w http.ResponseWriter, title string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, row := range fb.rows {
		if row.Title == title {
			fb.writeJSON(w, map[string]any{"success": true, "project": row})
			return
		}
	}
	fb.writeError(w, http.StatusNotFound, "Project not found")
}

func (fb *fakeBackend) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	require.NoError(fb.t, json.NewEncoder(w).Encode(v))
}

func (fb *fakeBackend) writeError(w http.ResponseWriter, code int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

func (fb *fakeBackend) snapshot() []Project {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]Project, len(fb.rows))
	copy(out, fb.rows)
	return out
}

func (fb *fakeBackend) callList() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]string, len(fb.calls))
	copy(out, fb.calls)
	return out
}

func (fb *fakeBackend) patchList() []patchRecord {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]patchRecord, len(fb.patches))
	copy(out, fb.patches)
	return out
}

func newTestSynchronizer(t *testing.T, fb *fakeBackend) *Synchronizer {
	t.Helper()

	client, err := api.New(fb.server.URL, logging.NewNop())
	require.NoError(t, err)
	return NewSynchronizer(client, nil, logging.NewNop())
}

func seedProjects() []Project {
	return []Project{
		{Title: "workdeck", Description: "terminal dashboard", TechStack: "go", WeeklyHours: 6},
		{Title: "home lab", Description: "self hosting", TechStack: "nixos", WeeklyHours: 3},
		{Title: "blog", Description: "writing", TechStack: "hugo", WeeklyHours: 2},
	}
}

func TestSynchronizer_Load(t *testing.T) {
	fb := newFakeBackend(t, seedProjects()...)
	s := newTestSynchronizer(t, fb)

	require.NoError(t, s.Load(context.Background()))

	got := s.Projects()
	require.Len(t, got, 3)
	// Server order is preserved.
	assert.Equal(t, "workdeck", got[0].Title)
	assert.Equal(t, "home lab", got[1].Title)
	assert.Equal(t, "blog", got[2].Title)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, 6, got[0].WeeklyHours)
}

func TestSynchronizer_Load_ReplacesMirror(t *testing.T) {
	fb := newFakeBackend(t, seedProjects()...)
	s := newTestSynchronizer(t, fb)

	require.NoError(t, s.Load(context.Background()))
	require.Equal(t, 3, s.Len())

	// The server list shrinks behind our back; a reload must not merge.
	fb.mu.Lock()
	fb.rows = fb.rows[:1]
	fb.mu.Unlock()

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 1, s.Len())
}

func TestSynchronizer_Load_UnexpectedShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","items":[]}`))
	}))
	defer server.Close()

	client, err := api.New(server.URL, logging.NewNop())
	require.NoError(t, err)
	s := NewSynchronizer(client, nil, logging.NewNop())

	err = s.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
	assert.Equal(t, 0, s.Len(), "a bad response must not clobber the mirror")
}

func TestSynchronizer_Load_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := api.New(server.URL, logging.NewNop())
	require.NoError(t, err)
	s := NewSynchronizer(client, nil, logging.NewNop())

	err = s.Load(context.Background())
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestSynchronizer_Add(t *testing.T) {
	fb := newFakeBackend(t, seedProjects()...)
	s := newTestSynchronizer(t, fb)
	require.NoError(t, s.Load(context.Background()))

	err := s.Add(context.Background(), Project{
		Title:       "garden",
		Description: "plant tracking",
		TechStack:   "go, sqlite",
		WeeklyHours: 4,
	})
	require.NoError(t, err)

	got := s.Projects()
	require.Len(t, got, 4)
	// The canonical row lands at the tail with the server-assigned id.
	assert.Equal(t, "garden", got[3].Title)
	assert.Equal(t, int64(4), got[3].ID)
}

func TestSynchronizer_Add_BlankTitle(t *testing.T) {
	fb := newFakeBackend(t)
	s := newTestSynchronizer(t, fb)

	err := s.Add(context.Background(), Project{Title: "   "})
	require.ErrorIs(t, err, ErrTitleRequired)
	assert.Empty(t, fb.callList(), "a blank title must not reach the network")
}

func TestSynchronizer_Add_DuplicateTitle(t *testing.T) {
	fb := newFakeBackend(t, seedProjects()...)
	s := newTestSynchronizer(t, fb)
	require.NoError(t, s.Load(context.Background()))

	err := s.Add(context.Background(), Project{Title: "blog"})
	require.Error(t, err)

	var statusErr *api.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.Code)
	assert.Equal(t, 3, s.Len(), "a rejected add must not grow the mirror")
}

func TestSynchronizer_UpdateField(t *testing.T) {
	fb := newFakeBackend(t, seedProjects()...)
	s := newTestSynchronizer(t, fb)
	require.NoError(t, s.Load(context.Background()))

	err := s.UpdateField(context.Background(), "blog", ColumnDescription, "long form writing")
	require.NoError(t, err)

	got, ok := s.Get("blog")
	require.True(t, ok)
	assert.Equal(t, "long form writing", got.Description)

	patches := fb.patchList()
	require.Len(t, patches, 1)
	assert.Equal(t, patchRecord{Title: "blog", Column: ColumnDescription, Value: "long form writing"}, patches[0])
}

func TestSynchronizer_UpdateField_Rename(t *testing.T) {
	fb := newFakeBackend(t, seedProjects()...)
	s := newTestSynchronizer(t, fb)
	require.NoError(t, s.Load(context.Background()))

	err := s.UpdateField(context.Background(), "blog", ColumnTitle, "weblog")
	require.NoError(t, err)

	_, ok := s.Get("blog")
	assert.False(t, ok, "the old title must be gone from the mirror")

	got, ok := s.Get("weblog")
	require.True(t, ok)
	assert.Equal(t, int64(3), got.ID, "a rename keeps the row identity")

	// The renamed entry keeps its position in the list.
	assert.Equal(t, "weblog", s.Projects()[2].Title)
}

func TestSynchronizer_UpdateField_UnknownColumn(t *testing.T) {
	fb := newFakeBackend(t, seedProjects()...)
	s := newTestSynchronizer(t, fb)

	err := s.UpdateField(context.Background(), "blog", "owner", "me")
	require.ErrorIs(t, err, ErrUnknownColumn)
	assert.Empty(t, fb.callList())
}

func TestSynchronizer_Delete(t *testing.T) {
	fb := newFakeBackend(t, seedProjects()...)
	s := newTestSynchronizer(t, fb)
	require.NoError(t, s.Load(context.Background()))

	require.NoError(t, s.Delete(context.Background(), "home lab"))

	got := s.Projects()
	require.Len(t, got, 2)
	assert.Equal(t, "workdeck", got[0].Title)
	assert.Equal(t, "blog", got[1].Title)
}

func TestSynchronizer_Delete_EscapesTitle(t *testing.T) {
	var escapedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		escapedPath = r.URL.EscapedPath()
		w.Write([]byte(`{"success": true, "deleted": true, "title": "side project"}`))
	}))
	defer server.Close()

	client, err := api.New(server.URL, logging.NewNop())
	require.NoError(t, err)
	s := NewSynchronizer(client, nil, logging.NewNop())

	require.NoError(t, s.Delete(context.Background(), "side project"))
	assert.Equal(t, "/projects/delete-project/side%20project", escapedPath)
}

func TestSynchronizer_Delete_NotFound(t *testing.T) {
	fb := newFakeBackend(t, seedProjects()...)
	s := newTestSynchronizer(t, fb)
	require.NoError(t, s.Load(context.Background()))

	err := s.Delete(context.Background(), "ghost")
	require.Error(t, err)

	var statusErr *api.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Equal(t, 3, s.Len())
}

func TestSynchronizer_Refresh(t *testing.T) {
	fb := newFakeBackend(t, seedProjects()...)
	s := newTestSynchronizer(t, fb)
	require.NoError(t, s.Load(context.Background()))

	// The row changes server-side without the mirror noticing.
	fb.mu.Lock()
	fb.rows[2].WeeklyHours = 9
	fb.mu.Unlock()

	got, err := s.Refresh(context.Background(), "blog")
	require.NoError(t, err)
	assert.Equal(t, 9, got.WeeklyHours)

	local, ok := s.Get("blog")
	require.True(t, ok)
	assert.Equal(t, 9, local.WeeklyHours)
}

func TestSynchronizer_SyncWeekly(t *testing.T) {
	fb := newFakeBackend(t)
	s := newTestSynchronizer(t, fb)

	msg, err := s.SyncWeekly(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Created 3 tasks for this week", msg)
}

func TestSynchronizer_SyncWeekly_Rejected(t *testing.T) {
	fb := newFakeBackend(t)
	fb.syncSuccess = false
	fb.syncMessage = "Sync already ran this week"

	s := newTestSynchronizer(t, fb)

	msg, err := s.SyncWeekly(context.Background())
	require.ErrorIs(t, err, ErrSyncFailed)
	// The server's explanation travels with the error.
	assert.Equal(t, "Sync already ran this week", msg)
	assert.Contains(t, err.Error(), "Sync already ran this week")
}

func TestSynchronizer_DrivesTracker(t *testing.T) {
	fb := newFakeBackend(t, seedProjects()...)

	client, err := api.New(fb.server.URL, logging.NewNop())
	require.NoError(t, err)

	tracker := loading.NewTracker(20*time.Millisecond, nil)
	s := NewSynchronizer(client, tracker, logging.NewNop())

	require.NoError(t, s.Load(context.Background()))

	// The indicator lingers after the request completes, then fades.
	assert.True(t, tracker.Visible())
	assert.False(t, tracker.Busy())
	require.Eventually(t, func() bool { return !tracker.Visible() }, time.Second, 2*time.Millisecond)
}

func TestSynchronizer_BlankTitleDoesNotTouchTracker(t *testing.T) {
	fb := newFakeBackend(t)

	client, err := api.New(fb.server.URL, logging.NewNop())
	require.NoError(t, err)

	tracker := loading.NewTracker(20*time.Millisecond, nil)
	s := NewSynchronizer(client, tracker, logging.NewNop())

	require.ErrorIs(t, s.Add(context.Background(), Project{Title: ""}), ErrTitleRequired)
	assert.False(t, tracker.Visible())
}
