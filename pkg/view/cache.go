// Package view holds the in-memory presentation state derived from the
// store: the note list ordered by recency, the subset matching the active
// query, the medical profile, and the active view mode.
package view

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/biji/pkg/core"
	"github.com/aretw0/biji/pkg/search"
)

// Mode selects which view is active.
type Mode string

const (
	ModeNotes   Mode = "notes"
	ModeMedical Mode = "medical"
)

// Listener receives fresh data after every change of the cache.
// Arguments are copies owned by the listener. When no query is active,
// filtered is the same slice as all.
type Listener interface {
	OnNotesChanged(all, filtered []core.Note)
	OnMedicalChanged(profile core.MedicalProfile)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Notes   func(all, filtered []core.Note)
	Medical func(profile core.MedicalProfile)
}

func (f ListenerFuncs) OnNotesChanged(all, filtered []core.Note) {
	if f.Notes != nil {
		f.Notes(all, filtered)
	}
}

func (f ListenerFuncs) OnMedicalChanged(profile core.MedicalProfile) {
	if f.Medical != nil {
		f.Medical(profile)
	}
}

// Cache is the sole owner of the presentation state.
//
// ApplyNotes and ApplyMedical are the only paths that replace stored data;
// they are meant to be called by the reload path after a completed
// transaction. Listeners must not call write methods of the Cache.
type Cache struct {
	// notify serializes writes with their notifications so listeners see
	// changes in the order they were applied.
	notify sync.Mutex

	mu        sync.RWMutex
	all       []core.Note
	filtered  []core.Note
	query     string
	medical   core.MedicalProfile
	mode      Mode
	loaded    bool
	listeners map[int]Listener
	nextID    int
}

// New returns an empty cache in notes mode.
func New() *Cache {
	return &Cache{
		medical:   core.MedicalProfile{Data: core.MedicalData{}},
		mode:      ModeNotes,
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers l and returns a function that removes it.
func (c *Cache) Subscribe(l Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// SortByRecency orders notes by Modified descending. Notes with equal
// timestamps keep insertion order (ascending id).
func SortByRecency(notes []core.Note) []core.Note {
	sorted := slices.Clone(notes)
	slices.SortStableFunc(sorted, func(a, b core.Note) int {
		if c := cmp.Compare(b.Modified, a.Modified); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return sorted
}

// ApplyNotes replaces the note list wholesale with the result of a reload,
// re-derives the filtered subset and notifies listeners.
func (c *Cache) ApplyNotes(notes []core.Note) {
	c.notify.Lock()
	defer c.notify.Unlock()

	c.mu.Lock()
	c.all = SortByRecency(notes)
	c.filtered = search.Filter(c.all, c.query)
	c.loaded = true
	c.mu.Unlock()

	c.notifyNotes()
}

// ApplyMedical replaces the medical profile and notifies listeners.
func (c *Cache) ApplyMedical(profile core.MedicalProfile) {
	c.notify.Lock()
	defer c.notify.Unlock()

	c.mu.Lock()
	c.medical = core.MedicalProfile{Data: profile.Data.Clone(), Modified: profile.Modified}
	c.mu.Unlock()

	c.notifyMedical()
}

// SetQuery changes the active query and re-derives the filtered subset.
func (c *Cache) SetQuery(query string) {
	c.notify.Lock()
	defer c.notify.Unlock()

	c.mu.Lock()
	c.query = query
	c.filtered = search.Filter(c.all, query)
	c.mu.Unlock()

	c.notifyNotes()
}

// Query returns the active query as entered.
func (c *Cache) Query() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.query
}

// SetMode switches the active view.
func (c *Cache) SetMode(mode Mode) error {
	if mode != ModeNotes && mode != ModeMedical {
		return &core.ValidationError{Err: fmt.Errorf("unknown view mode %q", mode)}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
	return nil
}

// Mode returns the active view.
func (c *Cache) Mode() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// Loaded reports whether notes have been applied at least once.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Notes returns a copy of all notes, most recently modified first.
func (c *Cache) Notes() []core.Note {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.all)
}

// Filtered returns a copy of the notes matching the active query.
func (c *Cache) Filtered() []core.Note {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.filtered)
}

// Find returns the cached note with the given id.
func (c *Cache) Find(id int64) (core.Note, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, n := range c.all {
		if n.ID == id {
			return n, true
		}
	}
	return core.Note{}, false
}

// Medical returns a copy of the cached medical profile.
func (c *Cache) Medical() core.MedicalProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return core.MedicalProfile{Data: c.medical.Data.Clone(), Modified: c.medical.Modified}
}

func (c *Cache) snapshotListeners() []Listener {
	ls := make([]Listener, 0, len(c.listeners))
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		ls = append(ls, c.listeners[id])
	}
	return ls
}

func (c *Cache) notifyNotes() {
	c.mu.RLock()
	listeners := c.snapshotListeners()
	all := slices.Clone(c.all)
	filtered := all
	if search.Normalize(c.query) != "" {
		filtered = slices.Clone(c.filtered)
	}
	c.mu.RUnlock()

	for _, l := range listeners {
		l.OnNotesChanged(all, filtered)
	}
}

func (c *Cache) notifyMedical() {
	c.mu.RLock()
	listeners := c.snapshotListeners()
	profile := core.MedicalProfile{Data: c.medical.Data.Clone(), Modified: c.medical.Modified}
	c.mu.RUnlock()

	for _, l := range listeners {
		l.OnMedicalChanged(profile)
	}
}
