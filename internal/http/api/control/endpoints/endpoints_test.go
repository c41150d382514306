package endpoints_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CuelineHQ/cueline/internal/db"
	"github.com/CuelineHQ/cueline/internal/http/api"
	controlapi "github.com/CuelineHQ/cueline/internal/http/api/control/endpoints"
	"github.com/CuelineHQ/cueline/internal/http/api/control/packets"
	"github.com/CuelineHQ/cueline/internal/model"
	"github.com/CuelineHQ/cueline/internal/playback"
)

// memStore is an in-memory db.Store so the handlers can be exercised without
// PostgreSQL.
type memStore struct {
	mu       sync.Mutex
	nextID   int
	rundowns map[int]*model.Rundown
}

var _ db.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{nextID: 1, rundowns: make(map[int]*model.Rundown)}
}

func (s *memStore) id() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *memStore) CreateRundown(name string) (model.Rundown, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &model.Rundown{ID: s.id(), Name: name}
	s.rundowns[r.ID] = r
	return *r, nil
}

func (s *memStore) GetRundownByID(id int) (model.Rundown, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rundowns[id]
	if !ok {
		return model.Rundown{}, sql.ErrNoRows
	}
	out := *r
	out.Folders = make([]model.Folder, len(r.Folders))
	for i, f := range r.Folders {
		out.Folders[i] = f
		out.Folders[i].Items = append([]model.Item(nil), f.Items...)
	}
	return out, nil
}

func (s *memStore) ListRundowns() ([]model.Rundown, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.rundowns))
	for id := range s.rundowns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]model.Rundown, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.rundowns[id])
	}
	return out, nil
}

func (s *memStore) UpdateRundown(id int, name *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rundowns[id]
	if !ok {
		return sql.ErrNoRows
	}
	if name != nil {
		r.Name = *name
	}
	return nil
}

func (s *memStore) DeleteRundown(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rundowns, id)
	return nil
}

func (s *memStore) CreateFolder(rundownID int, title string) (model.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rundowns[rundownID]
	if !ok {
		return model.Folder{}, sql.ErrNoRows
	}
	f := model.Folder{ID: s.id(), RundownID: rundownID, Position: len(r.Folders) + 1, Title: title}
	r.Folders = append(r.Folders, f)
	return f, nil
}

func (s *memStore) UpdateFolder(folderID int, title *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.findFolder(folderID)
	if f == nil {
		return sql.ErrNoRows
	}
	if title != nil {
		f.Title = *title
	}
	return nil
}

func (s *memStore) DeleteFolder(folderID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rundowns {
		for i, f := range r.Folders {
			if f.ID == folderID {
				r.Folders = append(r.Folders[:i], r.Folders[i+1:]...)
				return nil
			}
		}
	}
	return sql.ErrNoRows
}

func (s *memStore) ReorderFolders(rundownID int, folderIDs []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rundowns[rundownID]
	if !ok {
		return sql.ErrNoRows
	}
	byID := make(map[int]model.Folder, len(r.Folders))
	for _, f := range r.Folders {
		byID[f.ID] = f
	}
	out := make([]model.Folder, 0, len(r.Folders))
	for i, id := range folderIDs {
		f, ok := byID[id]
		if !ok {
			return sql.ErrNoRows
		}
		f.Position = i + 1
		out = append(out, f)
	}
	r.Folders = out
	return nil
}

func (s *memStore) findFolder(folderID int) *model.Folder {
	for _, r := range s.rundowns {
		for i := range r.Folders {
			if r.Folders[i].ID == folderID {
				return &r.Folders[i]
			}
		}
	}
	return nil
}

func (s *memStore) CreateItem(folderID int, title string, description *string, duration int, color, icon, urgency, reminder *string) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.findFolder(folderID)
	if f == nil {
		return model.Item{}, sql.ErrNoRows
	}
	it := model.Item{
		ID:          s.id(),
		FolderID:    folderID,
		Position:    len(f.Items) + 1,
		Title:       title,
		Description: description,
		Duration:    duration,
		Color:       color,
		Icon:        icon,
		Urgency:     urgency,
		Reminder:    reminder,
	}
	f.Items = append(f.Items, it)
	return it, nil
}

func (s *memStore) UpdateItem(itemID int, title, description *string, duration *int, color, icon, urgency, reminder *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rundowns {
		for fi := range r.Folders {
			for ii := range r.Folders[fi].Items {
				it := &r.Folders[fi].Items[ii]
				if it.ID != itemID {
					continue
				}
				if title != nil {
					it.Title = *title
				}
				if description != nil {
					it.Description = description
				}
				if duration != nil {
					it.Duration = *duration
				}
				return nil
			}
		}
	}
	return sql.ErrNoRows
}

func (s *memStore) DeleteItem(itemID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rundowns {
		for fi := range r.Folders {
			items := r.Folders[fi].Items
			for ii := range items {
				if items[ii].ID == itemID {
					r.Folders[fi].Items = append(items[:ii], items[ii+1:]...)
					return nil
				}
			}
		}
	}
	return sql.ErrNoRows
}

func (s *memStore) ReorderItems(folderID int, itemIDs []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.findFolder(folderID)
	if f == nil {
		return sql.ErrNoRows
	}
	byID := make(map[int]model.Item, len(f.Items))
	for _, it := range f.Items {
		byID[it.ID] = it
	}
	out := make([]model.Item, 0, len(f.Items))
	for i, id := range itemIDs {
		it, ok := byID[id]
		if !ok {
			return sql.ErrNoRows
		}
		it.Position = i + 1
		out = append(out, it)
	}
	f.Items = out
	return nil
}

// ===== harness =====

type harness struct {
	router  *gin.Engine
	store   *memStore
	states  *playback.MemoryStateStore
	manager *playback.Manager
}

func setup(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	states := playback.NewMemoryStateStore()
	manager := playback.NewManager(store, states, nil)

	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/control"},
		controlapi.RundownModule(store, manager),
		controlapi.PlaybackModule(manager),
	)
	return &harness{router: r, store: store, states: states, manager: manager}
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decodeInto[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

// seedRundown creates a rundown with one folder holding items of the given
// durations and returns the rundown id.
func (h *harness) seedRundown(t *testing.T, durations ...int) int {
	t.Helper()
	w := h.do(t, http.MethodPost, "/api/control/rundowns", packets.CreateRundownRequest{Name: "evening show"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rd := decodeInto[packets.RundownResponse](t, w)

	w = h.do(t, http.MethodPost, fmt.Sprintf("/api/control/rundowns/%d/folders", rd.ID),
		packets.CreateFolderRequest{Title: "block a"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	folder := decodeInto[packets.FolderResponse](t, w)

	for i, d := range durations {
		w = h.do(t, http.MethodPost,
			fmt.Sprintf("/api/control/rundowns/%d/folders/%d/items", rd.ID, folder.ID),
			packets.CreateItemRequest{Title: fmt.Sprintf("segment %d", i+1), Duration: d})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	return rd.ID
}

// ===== tests =====

func TestRundownCRUD(t *testing.T) {
	h := setup(t)
	id := h.seedRundown(t, 5, 3)

	w := h.do(t, http.MethodGet, fmt.Sprintf("/api/control/rundowns/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	rd := decodeInto[packets.RundownResponse](t, w)
	require.Len(t, rd.Folders, 1)
	require.Len(t, rd.Folders[0].Items, 2)
	assert.Equal(t, 5, rd.Folders[0].Items[0].Duration)
	assert.Equal(t, 3, rd.Folders[0].Items[1].Duration)

	w = h.do(t, http.MethodGet, "/api/control/rundowns", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeInto[[]packets.RundownResponse](t, w)
	assert.Len(t, list, 1)

	w = h.do(t, http.MethodDelete, fmt.Sprintf("/api/control/rundowns/%d", id), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = h.do(t, http.MethodGet, fmt.Sprintf("/api/control/rundowns/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateItemRejectsNegativeDuration(t *testing.T) {
	h := setup(t)
	id := h.seedRundown(t)

	rd, err := h.store.GetRundownByID(id)
	require.NoError(t, err)
	folderID := rd.Folders[0].ID

	w := h.do(t, http.MethodPost,
		fmt.Sprintf("/api/control/rundowns/%d/folders/%d/items", id, folderID),
		map[string]any{"title": "bad", "duration": -10})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlaybackLifecycleOverHTTP(t *testing.T) {
	h := setup(t)
	id := h.seedRundown(t, 5, 3)
	base := fmt.Sprintf("/api/control/rundowns/%d/playback", id)

	// operations before activation are rejected
	w := h.do(t, http.MethodPost, base+"/play", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(t, http.MethodPost, base+"/activate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap := decodeInto[packets.PlaybackResponse](t, w)
	assert.Equal(t, model.StatusPaused, snap.Status)
	assert.Equal(t, model.Position{Folder: 0, Item: 0}, snap.Position)

	w = h.do(t, http.MethodPost, base+"/play", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap = decodeInto[packets.PlaybackResponse](t, w)
	assert.Equal(t, model.StatusPlaying, snap.Status)
	assert.True(t, snap.Running)

	w = h.do(t, http.MethodPost, base+"/pause", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap = decodeInto[packets.PlaybackResponse](t, w)
	assert.Equal(t, model.StatusPaused, snap.Status)

	w = h.do(t, http.MethodPost, base+"/jump", packets.JumpRequest{Folder: 0, Item: 1})
	require.Equal(t, http.StatusOK, w.Code)
	snap = decodeInto[packets.PlaybackResponse](t, w)
	assert.Equal(t, 5, snap.Elapsed)
	assert.Equal(t, model.Position{Folder: 0, Item: 1}, snap.Position)

	w = h.do(t, http.MethodPost, base+"/jump", packets.JumpRequest{Folder: 4, Item: 4})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// advancing past the last item finishes with the user-visible note
	w = h.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap = decodeInto[packets.PlaybackResponse](t, w)
	assert.Equal(t, model.StatusFinished, snap.Status)
	assert.Equal(t, "end of rundown", snap.Note)

	w = h.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap = decodeInto[packets.PlaybackResponse](t, w)
	assert.Equal(t, model.StatusFinished, snap.Status)
}

func TestDeleteActiveRundownStopsPlayback(t *testing.T) {
	h := setup(t)
	id := h.seedRundown(t, 5, 3)
	base := fmt.Sprintf("/api/control/rundowns/%d/playback", id)

	w := h.do(t, http.MethodPost, base+"/activate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = h.do(t, http.MethodPost, base+"/play", nil)
	require.Equal(t, http.StatusOK, w.Code)

	ctl, ok := h.manager.Get(id)
	require.True(t, ok)

	w = h.do(t, http.MethodDelete, fmt.Sprintf("/api/control/rundowns/%d", id), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// no orphaned ticking, no active controller, no leftover state
	snap := ctl.Snapshot()
	assert.False(t, snap.Running)
	_, ok = h.manager.Get(id)
	assert.False(t, ok)
	_, found, err := h.states.Load(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEditRefreshesActivePlayback(t *testing.T) {
	h := setup(t)
	id := h.seedRundown(t, 5, 3)
	base := fmt.Sprintf("/api/control/rundowns/%d/playback", id)

	w := h.do(t, http.MethodPost, base+"/activate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = h.do(t, http.MethodPost, base+"/jump", packets.JumpRequest{Folder: 0, Item: 1})
	require.Equal(t, http.StatusOK, w.Code)

	// deleting the current item re-resolves the position
	rd, err := h.store.GetRundownByID(id)
	require.NoError(t, err)
	itemID := rd.Folders[0].Items[1].ID
	w = h.do(t, http.MethodDelete,
		fmt.Sprintf("/api/control/rundowns/%d/folders/%d/items/%d", id, rd.Folders[0].ID, itemID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	ctl, ok := h.manager.Get(id)
	require.True(t, ok)
	assert.Equal(t, model.StatusFinished, ctl.Snapshot().Status)
}
