package core

import "context"

// NoteRepository defines the contract for storing and retrieving notes.
// Each call runs in its own transaction. Implementations report storage
// failures as *ReadError or *WriteError.
type NoteRepository interface {
	// GetAll returns every note. Order is unspecified.
	GetAll(ctx context.Context) ([]Note, error)

	// Get returns a single note or ErrNotFound.
	Get(ctx context.Context, id int64) (Note, error)

	// Add inserts a note without id and returns the id assigned by the store.
	// Zero Created/Modified are stamped with the current time.
	Add(ctx context.Context, n Note) (int64, error)

	// Put overwrites the record at n.ID. The caller preserves Created and
	// sets a fresh Modified.
	Put(ctx context.Context, n Note) error

	// DeleteByID removes a note. Deleting an absent id succeeds.
	DeleteByID(ctx context.Context, id int64) error

	// Clear removes all notes.
	Clear(ctx context.Context) error
}

// MedicalRepository stores the singleton medical profile.
// The profile can be overwritten but never removed.
type MedicalRepository interface {
	// Get returns the stored profile, or an empty one if never saved.
	Get(ctx context.Context) (MedicalProfile, error)

	// Put replaces the profile wholesale, stamping Modified.
	Put(ctx context.Context, data MedicalData) error
}

// EventType represents the kind of change observed in the store.
type EventType string

const (
	EventModify EventType = "MODIFY"
	EventRemove EventType = "REMOVE"
)

// Event represents a change to the store made outside this process.
type Event struct {
	Type      EventType
	Path      string
	Timestamp int64 // Unix milliseconds
}

// String implements lifecycle.Event.
func (e Event) String() string {
	return string(e.Type) + " " + e.Path
}

// Watchable defines the contract for stores that report external changes.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}
