// Package biji is the Composition Root for the biji notes application.
//
// It connects the domain (notes, the medical profile, the editor state
// machine and the presentation cache) with the embedded SQLite store using
// the Hexagonal Architecture pattern.
//
// Features:
//
//   - **Offline first**: one local database with two collections, notes and a
//     singleton medical profile.
//   - **Transactional**: every read and write runs in a short transaction
//     scoped to the collection it touches.
//   - **Consistent view**: every mutation is followed by a full reload of the
//     cache, so the view always reflects the store.
//   - **Autosave**: a debounced editor that never creates a note unless one
//     was explicitly opened as new.
//
// Usage:
//
//	a, err := biji.New(ctx, "biji.db", biji.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer a.Close(ctx)
//
//	a.OpenNew(ctx)
//	_ = a.Change("Groceries", "milk, eggs")
//	note, err := a.SaveNote(ctx)
package biji
