package platform

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/biji/pkg/adapters/sqlite"
	"github.com/aretw0/biji/pkg/app"
)

// New opens the database at path, builds the application context and loads
// it. The path is a file path or sqlite.MemoryPath.
//
//	a, err := platform.New(ctx, "notes.db", platform.WithDebounce(time.Second))
func New(ctx context.Context, path string, opts ...Option) (*app.App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	resolved, err := resolvePath(path, o)
	if err != nil {
		return nil, err
	}

	gw, err := sqlite.Open(ctx, sqlite.Config{
		Path:         resolved,
		Version:      o.schemaVersion,
		ReadOnly:     o.readOnly,
		Logger:       o.logger,
		Now:          o.now,
		EventBuffer:  o.eventBuffer,
		ErrorHandler: o.watcherErrors,
	})
	if err != nil {
		return nil, err
	}

	a, err := app.New(app.Config{
		Notes:   gw.Notes(),
		Medical: gw.Medical(),
		Watcher: gw,
		Closer:  gw,
		Logger:  o.logger,
		Delay:   o.debounce,
		Now:     o.now,
		OnError: o.errorHandler,
	})
	if err != nil {
		_ = gw.Close()
		return nil, err
	}

	for _, l := range o.listeners {
		a.Subscribe(l)
	}

	if err := a.Load(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	return a, nil
}

// resolvePath applies the dev sandbox and makes sure the parent directory
// of a writable database exists.
func resolvePath(path string, o *options) (string, error) {
	if path == sqlite.MemoryPath {
		return path, nil
	}
	if path == "" {
		path = sqlite.DefaultName
	}

	// Read-only access is inherently safe.
	bypassSafety := o.readOnly || !o.devSafety
	useTemp := o.forceTemp || (IsDevRun() && !bypassSafety)
	resolved := ResolveDBPath(path, useTemp)

	if IsDevRun() {
		switch {
		case o.readOnly:
			o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolved)
		case bypassSafety:
			o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolved)
		default:
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", resolved)
		}
	}
	if useTemp && resolved != path {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", path, "resolved_path", resolved)
	}

	if !o.readOnly {
		if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
			return "", fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return resolved, nil
}
