// Package core holds the domain types and storage contracts of biji.
// It is agnostic to the storage engine behind it.
package core

import (
	"strings"
	"time"
)

// DefaultTitle is stored when a note is saved without a title.
const DefaultTitle = "Untitled"

// Note is a persisted note record.
// Timestamps are milliseconds since the Unix epoch.
type Note struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Created  int64  `json:"created"`
	Modified int64  `json:"modified"`
}

// IsNew reports whether the note has not been assigned an id by the store yet.
func (n Note) IsNew() bool {
	return n.ID == 0
}

// Draft is the in-progress edit buffer of a note.
type Draft struct {
	Title   string
	Content string
}

// Trimmed returns the draft with surrounding whitespace removed.
func (d Draft) Trimmed() Draft {
	return Draft{
		Title:   strings.TrimSpace(d.Title),
		Content: strings.TrimSpace(d.Content),
	}
}

// Empty reports whether both fields are blank after trimming.
func (d Draft) Empty() bool {
	t := d.Trimmed()
	return t.Title == "" && t.Content == ""
}

// Apply copies the trimmed draft onto n, defaulting the title.
func (d Draft) Apply(n Note) Note {
	t := d.Trimmed()
	n.Title = t.Title
	if n.Title == "" {
		n.Title = DefaultTitle
	}
	n.Content = t.Content
	return n
}

// Millis converts t to the timestamp unit used by records.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
