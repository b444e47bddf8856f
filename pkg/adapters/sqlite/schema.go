package sqlite

import (
	"context"
	"fmt"
)

// migration creates the collections introduced by one schema version.
// Every statement must be idempotent.
type migration struct {
	stores     []string
	statements []string
}

// migrations[i] upgrades the schema to version i+1.
var migrations = []migration{
	{
		stores: []string{NotesStore},
		statements: []string{
			`CREATE TABLE IF NOT EXISTS notes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT NOT NULL DEFAULT '',
				content TEXT NOT NULL DEFAULT '',
				created INTEGER NOT NULL,
				modified INTEGER NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_notes_title ON notes(title)`,
			`CREATE INDEX IF NOT EXISTS idx_notes_created ON notes(created)`,
			`CREATE INDEX IF NOT EXISTS idx_notes_modified ON notes(modified)`,
		},
	},
	{
		stores: []string{MedicalStore},
		statements: []string{
			`CREATE TABLE IF NOT EXISTS medical (
				id TEXT PRIMARY KEY,
				data TEXT NOT NULL DEFAULT '{}',
				modified INTEGER NOT NULL
			)`,
		},
	},
}

// upgrade brings the schema to the configured version.
// An up-to-date database is left untouched; an outdated one has every
// migration up to the target applied in a single transaction.
func (g *Gateway) upgrade(ctx context.Context) error {
	var current int
	if err := g.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	target := g.config.Version
	if current > target {
		return fmt.Errorf("database version %d is newer than requested version %d", current, target)
	}

	if current == target {
		g.setVersion(target)
		return nil
	}

	if g.config.ReadOnly {
		return fmt.Errorf("database version %d needs an upgrade to %d, which is not possible in read-only mode", current, target)
	}

	g.config.Logger.Info("upgrading database schema", "from", current, "to", target)

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upgrade: %w", err)
	}
	defer tx.Rollback()

	for i := 0; i < target; i++ {
		for _, stmt := range migrations[i].statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema version %d: %w", i+1, err)
			}
		}
	}

	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", target)); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upgrade: %w", err)
	}

	g.setVersion(target)
	return nil
}

func (g *Gateway) setVersion(version int) {
	g.version = version
	g.stores = make(map[string]bool)
	for i := 0; i < version; i++ {
		for _, name := range migrations[i].stores {
			g.stores[name] = true
		}
	}
}
