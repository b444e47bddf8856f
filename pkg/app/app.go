// Package app is the application context of biji. It owns the store
// repositories, the presentation cache and the autosave coordinator, and
// orders every mutation as write, then reload, then notification.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle"

	"github.com/aretw0/biji/pkg/autosave"
	"github.com/aretw0/biji/pkg/core"
	"github.com/aretw0/biji/pkg/medical"
	"github.com/aretw0/biji/pkg/view"
)

// Config wires an App to its collaborators.
type Config struct {
	Notes   core.NoteRepository
	Medical core.MedicalRepository

	// Watcher is optional. Without it Watch returns an error.
	Watcher core.Watchable
	// Closer is closed by App.Close, typically the store gateway.
	Closer io.Closer

	Logger *slog.Logger
	Delay  time.Duration // autosave debounce
	Now    func() time.Time

	// OnError receives failures of background work: autosaves, background
	// reloads and watcher reloads.
	OnError func(error)
}

// App is the explicit application context.
type App struct {
	notes   core.NoteRepository
	medical core.MedicalRepository
	watcher core.Watchable
	closer  io.Closer
	logger  *slog.Logger
	onError func(error)

	cache  *view.Cache
	editor *autosave.Coordinator

	reloadMu sync.Mutex // serializes reloads so the last applied is the freshest

	bgMu   sync.Mutex
	bg     sync.WaitGroup
	closed bool
}

// New builds an App. Nothing is read until Load is called.
func New(config Config) (*App, error) {
	if config.Notes == nil || config.Medical == nil {
		return nil, errors.New("app: note and medical repositories are required")
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	a := &App{
		notes:   config.Notes,
		medical: config.Medical,
		watcher: config.Watcher,
		closer:  config.Closer,
		logger:  config.Logger,
		onError: config.OnError,
		cache:   view.New(),
	}
	a.editor = autosave.New(autosave.Config{
		Store:  config.Notes,
		Delay:  config.Delay,
		Now:    config.Now,
		Logger: config.Logger,
		OnPersist: func(core.Note) {
			a.ReloadAsync()
		},
		OnError: a.reportError,
	})
	return a, nil
}

// Load populates the cache with the notes and the medical profile.
func (a *App) Load(ctx context.Context) error {
	if err := a.Reload(ctx); err != nil {
		return err
	}
	return a.LoadMedical(ctx)
}

// Reload reads every note and replaces the cached list. On failure the
// previous cache is kept and the *core.ReadError is returned.
func (a *App) Reload(ctx context.Context) error {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	notes, err := a.notes.GetAll(ctx)
	if err != nil {
		a.logger.Warn("reload failed, keeping cached notes", "error", err)
		return err
	}
	a.cache.ApplyNotes(notes)
	a.logger.Debug("notes reloaded", "count", len(notes))
	return nil
}

// ReloadAsync schedules a reload in the background. Failures are reported
// through the configured error handler.
func (a *App) ReloadAsync() {
	a.bgMu.Lock()
	defer a.bgMu.Unlock()
	if a.closed {
		return
	}

	a.bg.Add(1)
	lifecycle.Go(context.Background(), func(ctx context.Context) error {
		defer a.bg.Done()
		if err := a.Reload(ctx); err != nil {
			a.reportError(err)
		}
		return nil
	}, lifecycle.WithErrorHandler(a.reportError))
}

// LoadMedical reads the medical profile into the cache. On failure the
// previous profile is kept.
func (a *App) LoadMedical(ctx context.Context) error {
	profile, err := a.medical.Get(ctx)
	if err != nil {
		a.logger.Warn("medical load failed, keeping cached profile", "error", err)
		return err
	}
	a.cache.ApplyMedical(profile)
	return nil
}

// SaveMedical replaces the medical profile. Unknown fields are dropped and
// values trimmed before writing.
func (a *App) SaveMedical(ctx context.Context, data core.MedicalData) error {
	if err := a.medical.Put(ctx, medical.Normalize(data)); err != nil {
		return err
	}
	a.logger.Debug("medical profile saved")
	return a.LoadMedical(ctx)
}

// Search sets the active query and returns the matching notes.
func (a *App) Search(query string) []core.Note {
	a.cache.SetQuery(query)
	return a.cache.Filtered()
}

// SetMode switches the active view and refreshes its data.
func (a *App) SetMode(ctx context.Context, mode view.Mode) error {
	if err := a.cache.SetMode(mode); err != nil {
		return err
	}
	if mode == view.ModeMedical {
		return a.LoadMedical(ctx)
	}
	return a.Reload(ctx)
}

// OpenNew opens the editor for a new note, closing (and flushing) any
// editor already open.
func (a *App) OpenNew(ctx context.Context) {
	a.editor.Close(ctx)
	a.editor.OpenNew()
}

// OpenEdit opens the editor for the note with the given id, closing (and
// flushing) any editor already open. A note that was just flushed is read
// back from the store since the cache may not have caught up yet.
func (a *App) OpenEdit(ctx context.Context, id int64) (core.Note, error) {
	prev, editing := a.editor.Current()
	a.editor.Close(ctx)

	n, ok := a.cache.Find(id)
	if !ok || (editing && prev.ID == id) {
		var err error
		if n, err = a.notes.Get(ctx, id); err != nil {
			return core.Note{}, err
		}
	}
	a.editor.OpenEdit(n)
	return n, nil
}

// Change updates the editor draft and restarts the autosave timer.
func (a *App) Change(title, content string) error {
	return a.editor.Change(title, content)
}

// CloseEditor flushes unsaved changes, closes the editor and reloads.
func (a *App) CloseEditor(ctx context.Context) error {
	a.editor.Close(ctx)
	return a.Reload(ctx)
}

// SaveNote saves the editor draft explicitly and reloads.
// Validation and write failures leave the editor open.
func (a *App) SaveNote(ctx context.Context) (core.Note, error) {
	n, err := a.editor.Save(ctx)
	if err != nil {
		return core.Note{}, err
	}
	return n, a.Reload(ctx)
}

// DeleteNote removes a note and reloads. If the note is open in the editor,
// the editor is discarded first so a pending autosave cannot recreate it.
func (a *App) DeleteNote(ctx context.Context, id int64) error {
	if cur, ok := a.editor.Current(); ok && cur.ID == id {
		a.editor.Discard()
	}
	if err := a.notes.DeleteByID(ctx, id); err != nil {
		return err
	}
	a.logger.Debug("note deleted", "id", id)
	return a.Reload(ctx)
}

// DeleteCurrent deletes the note open in the editor.
func (a *App) DeleteCurrent(ctx context.Context) error {
	cur, ok := a.editor.Current()
	if !ok {
		return core.ErrNotEditing
	}
	return a.DeleteNote(ctx, cur.ID)
}

// ClearAll removes every note and reloads.
func (a *App) ClearAll(ctx context.Context) error {
	a.editor.Discard()
	if err := a.notes.Clear(ctx); err != nil {
		return err
	}
	a.logger.Debug("notes cleared")
	return a.Reload(ctx)
}

// Watch reloads the cache whenever the store reports an external change,
// until ctx is cancelled.
func (a *App) Watch(ctx context.Context) error {
	if a.watcher == nil {
		return errors.New("store does not support watching")
	}
	events, err := a.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch store: %w", err)
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		for e := range events {
			a.logger.Debug("external change", "event", e.String())
			if err := a.Reload(ctx); err != nil {
				a.reportError(err)
				continue
			}
			if err := a.LoadMedical(ctx); err != nil {
				a.reportError(err)
			}
		}
		return nil
	}, lifecycle.WithErrorHandler(a.reportError))
	return nil
}

// Subscribe registers a cache listener and returns its removal function.
func (a *App) Subscribe(l view.Listener) func() {
	return a.cache.Subscribe(l)
}

// Notes returns all cached notes, most recent first.
func (a *App) Notes() []core.Note { return a.cache.Notes() }

// Filtered returns the cached notes matching the active query.
func (a *App) Filtered() []core.Note { return a.cache.Filtered() }

// Medical returns the cached medical profile.
func (a *App) Medical() core.MedicalProfile { return a.cache.Medical() }

// Stats returns the note counts and approximate storage size.
func (a *App) Stats() view.Stats { return a.cache.Stats() }

// Mode returns the active view.
func (a *App) Mode() view.Mode { return a.cache.Mode() }

// Query returns the active query.
func (a *App) Query() string { return a.cache.Query() }

// Editor returns the state of the edit surface.
func (a *App) Editor() autosave.Snapshot { return a.editor.Snapshot() }

// Close flushes the editor, waits for background reloads and closes the
// store. It is safe to call more than once.
func (a *App) Close(ctx context.Context) error {
	a.editor.Close(ctx)

	a.bgMu.Lock()
	if a.closed {
		a.bgMu.Unlock()
		return nil
	}
	a.closed = true
	a.bgMu.Unlock()

	a.bg.Wait()
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

func (a *App) reportError(err error) {
	if a.onError != nil {
		a.onError(err)
		return
	}
	a.logger.Error("background failure", "error", err)
}

// State exposes the application state for observability.
type State struct {
	Mode   view.Mode         `json:"mode"`
	Query  string            `json:"query"`
	Stats  view.Stats        `json:"stats"`
	Editor autosave.Snapshot `json:"editor"`
	Store  any               `json:"store,omitempty"`
}

// State implements introspection.Introspectable.
func (a *App) State() any {
	s := State{
		Mode:   a.cache.Mode(),
		Query:  a.cache.Query(),
		Stats:  a.cache.Stats(),
		Editor: a.editor.Snapshot(),
	}
	if in, ok := a.closer.(introspection.Introspectable); ok {
		s.Store = in.State()
	}
	return s
}

// ComponentType implements introspection.Component.
func (a *App) ComponentType() string {
	return "app"
}

var _ introspection.Introspectable = (*App)(nil)
var _ introspection.Component = (*App)(nil)
