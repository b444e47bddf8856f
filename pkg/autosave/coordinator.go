// Package autosave coordinates the edit surface of a note: it debounces
// changes to the draft into background writes and arbitrates them with the
// explicit save, close and delete actions.
package autosave

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/google/uuid"

	"github.com/aretw0/biji/pkg/core"
)

// DefaultDelay is the quiet period after the last change before an
// autosave runs.
const DefaultDelay = 800 * time.Millisecond

// Store is the subset of core.NoteRepository the coordinator writes to.
type Store interface {
	Add(ctx context.Context, n core.Note) (int64, error)
	Put(ctx context.Context, n core.Note) error
}

// Config configures a Coordinator.
type Config struct {
	Store  Store
	Delay  time.Duration
	Now    func() time.Time
	Logger *slog.Logger

	// OnPersist is called after every successful write, autosave or explicit.
	OnPersist func(core.Note)
	// OnError receives autosave failures, which are otherwise swallowed.
	OnError func(error)
}

// Snapshot is a point-in-time view of the coordinator state.
type Snapshot struct {
	Open        bool
	Session     string
	Current     *core.Note
	ExplicitNew bool
	CanDelete   bool
	Pending     bool
	Dirty       bool
	Draft       core.Draft
}

// Coordinator is the state machine behind the edit surface.
//
// At most one debounce timer is pending at a time. Autosave runs, explicit
// saves, closes and discards are serialized, so a burst of changes can never
// create two notes.
type Coordinator struct {
	config Config

	run sync.Mutex // serializes writes

	mu          sync.Mutex
	open        bool
	explicitNew bool
	current     *core.Note
	draft       core.Draft
	timer       *time.Timer
	tick        uint64 // identifies the latest scheduled timer
	session     uint64
	sessionID   string
	rev         uint64 // draft revision
	savedRev    uint64 // last revision written
}

// New creates a closed coordinator.
func New(config Config) *Coordinator {
	if config.Delay <= 0 {
		config.Delay = DefaultDelay
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{config: config}
}

// OpenNew opens the edit surface for a brand-new note.
// Pending changes of a previous session are dropped; call Close first to
// keep them.
func (c *Coordinator) OpenNew() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.open = true
	c.explicitNew = true
	c.config.Logger.Debug("editor opened", "session", c.sessionID, "mode", "new")
}

// OpenEdit opens the edit surface for an existing note.
func (c *Coordinator) OpenEdit(n core.Note) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.open = true
	c.current = &n
	c.draft = core.Draft{Title: n.Title, Content: n.Content}
	c.config.Logger.Debug("editor opened", "session", c.sessionID, "mode", "edit", "id", n.ID)
}

// Change replaces the draft and restarts the debounce timer.
func (c *Coordinator) Change(title, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return core.ErrNotEditing
	}

	c.draft = core.Draft{Title: title, Content: content}
	c.rev++
	c.stopTimerLocked()
	c.tick++
	tick := c.tick
	c.timer = time.AfterFunc(c.config.Delay, func() { c.fire(tick) })
	return nil
}

// Close cancels the pending timer, flushes unsaved changes once and releases
// the editing state. A failed flush is reported through OnError only.
//
// An existing note whose draft was never changed is not written, so closing
// it leaves its modified time untouched.
func (c *Coordinator) Close(ctx context.Context) {
	c.run.Lock()
	defer c.run.Unlock()

	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return
	}
	c.stopTimerLocked()
	c.mu.Unlock()

	_ = c.autosave(ctx)

	c.mu.Lock()
	c.config.Logger.Debug("editor closed", "session", c.sessionID)
	c.resetLocked()
	c.mu.Unlock()
}

// Discard releases the editing state without flushing. It waits for an
// in-flight autosave, so a delete issued afterwards cannot be overtaken by it.
func (c *Coordinator) Discard() {
	c.run.Lock()
	defer c.run.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		c.config.Logger.Debug("editor discarded", "session", c.sessionID)
	}
	c.resetLocked()
}

// Save writes the draft immediately, bypassing the debounce.
//
// A draft whose fields are both blank is rejected with a *core.ValidationError.
// Write failures are returned as *core.WriteError. In both cases the surface
// stays open. On success the surface is closed without a second flush,
// unless the draft changed while the write was in flight: then it stays open
// on the saved note and the newer draft is autosaved as usual.
func (c *Coordinator) Save(ctx context.Context) (core.Note, error) {
	c.run.Lock()
	defer c.run.Unlock()

	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return core.Note{}, core.ErrNotEditing
	}
	c.stopTimerLocked()
	draft := c.draft
	current := c.currentLocked()
	session := c.session
	rev := c.rev
	c.mu.Unlock()

	if draft.Empty() {
		return core.Note{}, &core.ValidationError{Err: core.ErrEmptyNote}
	}

	n, err := c.write(ctx, draft, current)
	if err != nil {
		return core.Note{}, err
	}

	c.mu.Lock()
	c.config.Logger.Debug("note saved", "session", c.sessionID, "id", n.ID)
	switch {
	case c.session != session:
		// Reopened during the write; the new session is left alone.
	case c.rev != rev:
		c.current = &n
		c.explicitNew = false
		c.savedRev = rev
	default:
		c.resetLocked()
	}
	c.mu.Unlock()

	c.persisted(n)
	return n, nil
}

// Current returns the note being edited, if it has been persisted.
func (c *Coordinator) Current() (core.Note, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return core.Note{}, false
	}
	return *c.current, true
}

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Open:        c.open,
		Session:     c.sessionID,
		Current:     c.currentLocked(),
		ExplicitNew: c.explicitNew,
		CanDelete:   c.open && c.current != nil,
		Pending:     c.timer != nil,
		Dirty:       c.rev != c.savedRev,
		Draft:       c.draft,
	}
}

func (c *Coordinator) fire(tick uint64) {
	lifecycle.Go(context.Background(), func(ctx context.Context) error {
		c.run.Lock()
		defer c.run.Unlock()

		c.mu.Lock()
		if tick != c.tick || !c.open {
			c.mu.Unlock()
			return nil
		}
		c.timer = nil
		c.mu.Unlock()

		_ = c.autosave(ctx)
		return nil
	}, lifecycle.WithErrorHandler(c.reportError))
}

// autosave runs the best-effort write of the draft. The caller holds c.run.
func (c *Coordinator) autosave(ctx context.Context) error {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return nil
	}
	draft := c.draft
	current := c.currentLocked()
	explicitNew := c.explicitNew
	session := c.session
	sessionID := c.sessionID
	rev := c.rev
	dirty := c.rev != c.savedRev
	c.mu.Unlock()

	logger := c.config.Logger.With("session", sessionID)
	switch {
	case !dirty:
		logger.Debug("autosave skipped", "reason", "no changes")
		return nil
	case draft.Empty():
		logger.Debug("autosave skipped", "reason", "empty draft")
		return nil
	case current == nil && !explicitNew:
		logger.Debug("autosave skipped", "reason", "no note")
		return nil
	}

	n, err := c.write(ctx, draft, current)
	if err != nil {
		logger.Warn("autosave failed", "error", err)
		c.reportError(err)
		return err
	}
	logger.Debug("autosaved", "id", n.ID, "created", current == nil)

	c.mu.Lock()
	if c.session == session {
		c.current = &n
		c.explicitNew = false
		c.savedRev = rev
	}
	c.mu.Unlock()

	c.persisted(n)
	return nil
}

// write creates the note when current is nil and updates it otherwise.
func (c *Coordinator) write(ctx context.Context, draft core.Draft, current *core.Note) (core.Note, error) {
	now := core.Millis(c.config.Now())

	if current == nil {
		n := draft.Apply(core.Note{Created: now, Modified: now})
		id, err := c.config.Store.Add(ctx, n)
		if err != nil {
			return core.Note{}, asWriteError("create note", 0, err)
		}
		n.ID = id
		return n, nil
	}

	n := draft.Apply(*current)
	n.Modified = now
	if err := c.config.Store.Put(ctx, n); err != nil {
		return core.Note{}, asWriteError("update", n.ID, err)
	}
	return n, nil
}

func asWriteError(op string, id int64, err error) error {
	var we *core.WriteError
	if errors.As(err, &we) {
		return err
	}
	return &core.WriteError{Op: op, ID: id, Err: err}
}

func (c *Coordinator) persisted(n core.Note) {
	if c.config.OnPersist != nil {
		c.config.OnPersist(n)
	}
}

func (c *Coordinator) reportError(err error) {
	if c.config.OnError != nil {
		c.config.OnError(err)
	}
}

func (c *Coordinator) currentLocked() *core.Note {
	if c.current == nil {
		return nil
	}
	n := *c.current
	return &n
}

func (c *Coordinator) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	// Invalidates a timer that already fired but has not run yet.
	c.tick++
}

func (c *Coordinator) resetLocked() {
	c.stopTimerLocked()
	c.open = false
	c.explicitNew = false
	c.current = nil
	c.draft = core.Draft{}
	c.rev, c.savedRev = 0, 0
	c.session++
	c.sessionID = uuid.NewString()
}
