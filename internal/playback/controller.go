package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/CuelineHQ/cueline/internal/model"
)

// ErrInvalidPosition is returned when a jump target does not address an item
// in the loaded document. Out-of-range targets are rejected, never clamped.
var ErrInvalidPosition = errors.New("position outside rundown")

const saveTimeout = 5 * time.Second

// Snapshot is the read-only view of a controller handed to surfaces. All
// surfaces of one rundown (operator, presenter, mini-view) observe the same
// snapshot stream; none keeps its own clock.
type Snapshot struct {
	RundownID int            `json:"rundown_id"`
	Status    model.Status   `json:"status"`
	Position  model.Position `json:"position"`
	Elapsed   int            `json:"elapsed"`
	Running   bool           `json:"running"`
	Current   *model.Item    `json:"current,omitempty"`
	// Remaining is the seconds left in the current item's window, zero when
	// there is no current item.
	Remaining int `json:"remaining"`
}

// EventPublisher receives item-change and end-of-rundown events for fan-out
// beyond the attached websockets (e.g. MQTT surfaces). May be nil.
type EventPublisher func(rundownID int, snap Snapshot)

// Controller owns the playback state of one active rundown: the document
// snapshot, the current position and the elapsed-time clock. There is exactly
// one controller per active rundown; everything else is an observer.
type Controller struct {
	rundownID int
	store     StateStore
	publish   EventPublisher
	clock     *Clock

	mu      sync.Mutex
	doc     model.Rundown
	status  model.Status
	pos     model.Position
	subs    map[int]chan Snapshot
	nextSub int
	closed  bool

	saveCh   chan model.PlaybackState
	saveDone chan struct{}
}

// NewController loads doc and adopts restored when it is consistent with the
// document; otherwise it starts fresh at the first playable item. A restored
// running flag is never auto-resumed: after a reload the operator presses
// play again.
func NewController(rundownID int, doc model.Rundown, restored *model.PlaybackState, store StateStore, publish EventPublisher) *Controller {
	c := &Controller{
		rundownID: rundownID,
		store:     store,
		publish:   publish,
		subs:      make(map[int]chan Snapshot),
		saveCh:    make(chan model.PlaybackState, 16),
		saveDone:  make(chan struct{}),
	}
	c.clock = NewClock(c.onTick)
	c.load(doc, restored)
	go c.saveLoop()
	return c
}

func (c *Controller) load(doc model.Rundown, restored *model.PlaybackState) {
	c.doc = doc

	first, ok := FirstPosition(doc)
	if !ok {
		c.status = model.StatusIdle
		c.pos = model.Position{}
		c.clock.SetElapsed(0)
		return
	}

	if restored != nil && ValidPosition(doc, restored.Position) {
		c.pos = restored.Position
		c.clock.SetElapsed(restored.Elapsed)
		if restored.Elapsed >= TotalRuntime(doc) {
			c.status = model.StatusFinished
		} else {
			c.status = model.StatusPaused
		}
		return
	}

	c.pos = first
	c.clock.SetElapsed(0)
	c.status = model.StatusPaused
}

// RundownID returns the id of the rundown this controller owns.
func (c *Controller) RundownID() int { return c.rundownID }

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Play starts the clock. No-op while already playing; also a no-op from
// Finished or Idle, since there is nothing to resume. The caller jumps or
// reloads first.
func (c *Controller) Play() Snapshot {
	c.mu.Lock()
	if c.status != model.StatusPaused {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap
	}
	c.status = model.StatusPlaying
	st, snap := c.stateLocked(), c.snapshotLocked()
	c.mu.Unlock()

	c.clock.Start()
	c.persist(st)
	c.broadcast(snap, false)
	return snap
}

// Pause stops the clock, preserving position and elapsed time. Idempotent.
func (c *Controller) Pause() Snapshot {
	// Stop first: once it returns no tick is in flight, so the transition
	// below cannot race a late advance.
	c.clock.Stop()

	c.mu.Lock()
	if c.status != model.StatusPlaying {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap
	}
	c.status = model.StatusPaused
	st, snap := c.stateLocked(), c.snapshotLocked()
	c.mu.Unlock()

	c.persist(st)
	c.broadcast(snap, false)
	return snap
}

// JumpTo moves playback to the start of the addressed item without changing
// the running state. Invalid targets are a caller error.
func (c *Controller) JumpTo(folder, item int) (Snapshot, error) {
	c.mu.Lock()
	pos := model.Position{Folder: folder, Item: item}
	if !ValidPosition(c.doc, pos) {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrInvalidPosition
	}
	c.pos = pos
	c.clock.SetElapsed(CumulativeStartOffset(c.doc, folder, item))
	if c.status == model.StatusFinished {
		c.status = model.StatusPaused
	}
	st, snap := c.stateLocked(), c.snapshotLocked()
	c.mu.Unlock()

	c.persist(st)
	c.broadcast(snap, true)
	return snap, nil
}

// Next advances to the item after the current one in document order, skipping
// empty folders. At the end of the document it transitions to Finished and
// stops the clock.
func (c *Controller) Next() Snapshot {
	c.mu.Lock()
	next, ok := NextPosition(c.doc, c.pos)
	if ok {
		c.pos = next
		c.clock.SetElapsed(CumulativeStartOffset(c.doc, next.Folder, next.Item))
		st, snap := c.stateLocked(), c.snapshotLocked()
		c.mu.Unlock()

		c.persist(st)
		c.broadcast(snap, true)
		return snap
	}

	c.status = model.StatusFinished
	st, snap := c.stateLocked(), c.snapshotLocked()
	c.mu.Unlock()

	c.clock.Stop()
	c.persist(st)
	c.broadcast(snap, true)
	return snap
}

// ReplaceDocument swaps in an edited document while keeping the elapsed
// clock. The position is re-resolved against the new document; if elapsed now
// falls past the end the controller finishes, and if the document has no
// playable items it goes idle.
func (c *Controller) ReplaceDocument(doc model.Rundown) Snapshot {
	c.mu.Lock()
	c.doc = doc
	stopClock := false
	if resolved, ok := ResolveCurrent(doc, c.clock.Elapsed()); ok {
		c.pos = resolved
		if c.status == model.StatusIdle || c.status == model.StatusFinished {
			c.status = model.StatusPaused
		}
	} else {
		if c.status == model.StatusPlaying {
			stopClock = true
		}
		if _, ok := FirstPosition(doc); ok {
			c.status = model.StatusFinished
		} else {
			c.status = model.StatusIdle
			c.pos = model.Position{}
		}
	}
	st, snap := c.stateLocked(), c.snapshotLocked()
	c.mu.Unlock()

	if stopClock {
		c.clock.Stop()
	}
	c.persist(st)
	c.broadcast(snap, true)
	return snap
}

// Subscribe registers a snapshot channel. The channel receives every state
// change including per-second ticks; a slow receiver skips snapshots rather
// than blocking the tick path.
func (c *Controller) Subscribe() (int, <-chan Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	ch := make(chan Snapshot, 8)
	c.subs[id] = ch
	return id, ch
}

// Unsubscribe removes and closes the channel registered under id.
func (c *Controller) Unsubscribe(id int) {
	c.mu.Lock()
	ch, ok := c.subs[id]
	if ok {
		delete(c.subs, id)
	}
	c.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Close stops the clock synchronously, persists the final state and releases
// all subscribers. The controller must not be used afterwards.
func (c *Controller) Close() {
	c.clock.Stop()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.status == model.StatusPlaying {
		c.status = model.StatusPaused
	}
	st := c.stateLocked()
	subs := c.subs
	c.subs = make(map[int]chan Snapshot)
	c.mu.Unlock()

	close(c.saveCh)
	<-c.saveDone
	for _, ch := range subs {
		close(ch)
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := c.store.Save(ctx, c.rundownID, st); err != nil {
		log.Error().Err(err).Int("rundown_id", c.rundownID).Msg("[playback] final state save failed")
	}
}

// onTick runs once per clock second. The resolver recomputation is the single
// source of truth: there is no per-item timer to drift against the shared
// clock. Returning false stops the clock from within the tick goroutine.
func (c *Controller) onTick(elapsed int) bool {
	c.mu.Lock()
	if c.status != model.StatusPlaying {
		// Pause or Close raced with this tick; do not advance.
		c.mu.Unlock()
		return false
	}
	c.clock.SetElapsed(elapsed)

	itemChanged := false
	keep := true
	if resolved, ok := ResolveCurrent(c.doc, elapsed); ok {
		if resolved != c.pos {
			c.pos = resolved
			itemChanged = true
		}
	} else {
		c.status = model.StatusFinished
		itemChanged = true
		keep = false
	}
	st, snap := c.stateLocked(), c.snapshotLocked()
	c.mu.Unlock()

	c.persist(st)
	c.broadcast(snap, itemChanged)
	return keep
}

func (c *Controller) stateLocked() model.PlaybackState {
	return model.PlaybackState{
		Position: c.pos,
		Elapsed:  c.clock.Elapsed(),
		Running:  c.status == model.StatusPlaying,
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		RundownID: c.rundownID,
		Status:    c.status,
		Position:  c.pos,
		Elapsed:   c.clock.Elapsed(),
		Running:   c.status == model.StatusPlaying,
	}
	// Past the end there is no current item, even though the last position is
	// still a valid address.
	if c.status == model.StatusPlaying || c.status == model.StatusPaused {
		snap.Current = ItemAt(c.doc, c.pos)
	}
	if snap.Current != nil {
		start := CumulativeStartOffset(c.doc, c.pos.Folder, c.pos.Item)
		if rem := start + snap.Current.Duration - snap.Elapsed; rem > 0 {
			snap.Remaining = rem
		}
	}
	return snap
}

// persist enqueues a state write. Writes are fire-and-forget with respect to
// the tick path; when the writer falls behind, a dropped snapshot is
// superseded by the next one anyway.
func (c *Controller) persist(st model.PlaybackState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.saveCh <- st:
	default:
	}
}

func (c *Controller) saveLoop() {
	defer close(c.saveDone)
	for st := range c.saveCh {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		// The store logs failures; playback never waits on them.
		_ = c.store.Save(ctx, c.rundownID, st)
		cancel()
	}
}

func (c *Controller) broadcast(snap Snapshot, itemChanged bool) {
	c.mu.Lock()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
		}
	}
	c.mu.Unlock()

	if itemChanged && c.publish != nil {
		c.publish(c.rundownID, snap)
	}
}
