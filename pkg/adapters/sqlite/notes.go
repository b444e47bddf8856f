package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aretw0/biji/pkg/core"
)

// NoteRepository implements core.NoteRepository on the notes collection.
type NoteRepository struct {
	g *Gateway
}

// Notes returns the note repository backed by this gateway.
func (g *Gateway) Notes() *NoteRepository {
	return &NoteRepository{g: g}
}

var _ core.NoteRepository = (*NoteRepository)(nil)

var notesScope = []string{NotesStore}

// GetAll returns every note in id order. Callers must not rely on the order.
func (r *NoteRepository) GetAll(ctx context.Context) ([]core.Note, error) {
	var notes []core.Note
	err := r.g.View(ctx, notesScope, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT id, title, content, created, modified FROM notes ORDER BY id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var n core.Note
			if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Created, &n.Modified); err != nil {
				return err
			}
			notes = append(notes, n)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, &core.ReadError{Op: "load notes", Err: err}
	}

	r.g.config.Logger.Debug("loaded notes", "count", len(notes))
	return notes, nil
}

// Get returns the note with the given id, or core.ErrNotFound.
func (r *NoteRepository) Get(ctx context.Context, id int64) (core.Note, error) {
	var n core.Note
	err := r.g.View(ctx, notesScope, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT id, title, content, created, modified FROM notes WHERE id = ?`, id)
		return row.Scan(&n.ID, &n.Title, &n.Content, &n.Created, &n.Modified)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Note{}, fmt.Errorf("note %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Note{}, &core.ReadError{Op: fmt.Sprintf("load note %d", id), Err: err}
	}
	return n, nil
}

// Add inserts a new note and returns the id assigned by the store.
// Ids are never reused, even after Clear.
func (r *NoteRepository) Add(ctx context.Context, n core.Note) (int64, error) {
	if !n.IsNew() {
		return 0, &core.WriteError{Op: "create", ID: n.ID, Err: errors.New("note already has an id")}
	}

	now := r.g.now()
	if n.Created == 0 {
		n.Created = now
	}
	if n.Modified == 0 {
		n.Modified = now
	}

	var id int64
	err := r.g.Update(ctx, notesScope, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO notes (title, content, created, modified) VALUES (?, ?, ?, ?)`,
			n.Title, n.Content, n.Created, n.Modified,
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, &core.WriteError{Op: "create", Err: err}
	}

	r.g.config.Logger.Debug("note created", "id", id)
	return id, nil
}

// Put overwrites the record stored at n.ID, creating it if it is absent.
func (r *NoteRepository) Put(ctx context.Context, n core.Note) error {
	if n.IsNew() {
		return &core.WriteError{Op: "update", Err: errors.New("note has no id")}
	}

	err := r.g.Update(ctx, notesScope, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO notes (id, title, content, created, modified) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				content = excluded.content,
				created = excluded.created,
				modified = excluded.modified`,
			n.ID, n.Title, n.Content, n.Created, n.Modified,
		)
		return err
	})
	if err != nil {
		return &core.WriteError{Op: "update", ID: n.ID, Err: err}
	}

	r.g.config.Logger.Debug("note updated", "id", n.ID)
	return nil
}

// DeleteByID removes a note. Removing an id that does not exist succeeds.
func (r *NoteRepository) DeleteByID(ctx context.Context, id int64) error {
	var affected int64
	err := r.g.Update(ctx, notesScope, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
		if err != nil {
			return err
		}
		affected, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return &core.WriteError{Op: "delete", ID: id, Err: err}
	}

	r.g.config.Logger.Debug("note deleted", "id", id, "existed", affected > 0)
	return nil
}

// Clear removes every note.
func (r *NoteRepository) Clear(ctx context.Context) error {
	err := r.g.Update(ctx, notesScope, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM notes`)
		return err
	})
	if err != nil {
		return &core.WriteError{Op: "clear notes", Err: err}
	}

	r.g.config.Logger.Debug("notes cleared")
	return nil
}
