package playback

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/CuelineHQ/cueline/internal/model"
)

// DocumentSource supplies rundown documents to the manager. db.Store
// satisfies it; tests plug in a stub.
type DocumentSource interface {
	GetRundownByID(id int) (model.Rundown, error)
}

// Manager keeps at most one Controller per rundown id and is the only place
// controllers are created or torn down, so every surface that asks for a
// rundown's playback gets the same instance.
type Manager struct {
	docs    DocumentSource
	states  StateStore
	publish EventPublisher

	mu     sync.Mutex
	active map[int]*Controller
}

func NewManager(docs DocumentSource, states StateStore, publish EventPublisher) *Manager {
	return &Manager{
		docs:    docs,
		states:  states,
		publish: publish,
		active:  make(map[int]*Controller),
	}
}

// Activate loads the rundown document and its saved playback state (if any)
// and returns the controller for it. Activating an already-active rundown
// returns the existing controller.
func (m *Manager) Activate(ctx context.Context, rundownID int) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ctl, ok := m.active[rundownID]; ok {
		return ctl, nil
	}

	doc, err := m.docs.GetRundownByID(rundownID)
	if err != nil {
		return nil, err
	}

	var restored *model.PlaybackState
	st, ok, err := m.states.Load(ctx, rundownID)
	if err != nil {
		// Storage being down degrades to a fresh start, never blocks playback.
		log.Warn().Err(err).Int("rundown_id", rundownID).Msg("[playback] state load failed, starting fresh")
	} else if ok {
		restored = &st
	}

	ctl := NewController(rundownID, doc, restored, m.states, m.publish)
	m.active[rundownID] = ctl
	log.Info().Int("rundown_id", rundownID).Msg("[playback] rundown activated")
	return ctl, nil
}

// Get returns the controller for rundownID if it is active.
func (m *Manager) Get(rundownID int) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctl, ok := m.active[rundownID]
	return ctl, ok
}

// Deactivate stops the rundown's clock and drops its controller, keeping the
// persisted state so a later Activate resumes where it stopped.
func (m *Manager) Deactivate(rundownID int) {
	m.mu.Lock()
	ctl, ok := m.active[rundownID]
	if ok {
		delete(m.active, rundownID)
	}
	m.mu.Unlock()

	if ok {
		ctl.Close()
		log.Info().Int("rundown_id", rundownID).Msg("[playback] rundown deactivated")
	}
}

// Delete tears down playback for a deleted rundown: the clock is stopped
// before this returns (no orphaned ticking against a discarded document) and
// all persisted state for the id is cleared.
func (m *Manager) Delete(ctx context.Context, rundownID int) {
	m.mu.Lock()
	ctl, ok := m.active[rundownID]
	if ok {
		delete(m.active, rundownID)
	}
	m.mu.Unlock()

	if ok {
		ctl.Close()
	}
	if err := m.states.Clear(ctx, rundownID); err != nil {
		log.Error().Err(err).Int("rundown_id", rundownID).Msg("[playback] failed to clear state on delete")
	}
}

// Refresh reloads the document into an active controller after an edit.
// Inactive rundowns are left alone; they pick up changes on Activate.
func (m *Manager) Refresh(rundownID int) {
	m.mu.Lock()
	ctl, ok := m.active[rundownID]
	m.mu.Unlock()
	if !ok {
		return
	}

	doc, err := m.docs.GetRundownByID(rundownID)
	if err != nil {
		log.Error().Err(err).Int("rundown_id", rundownID).Msg("[playback] refresh: could not reload rundown")
		return
	}
	ctl.ReplaceDocument(doc)
}
