package biji

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/biji/internal/platform"
	"github.com/aretw0/biji/pkg/app"
	"github.com/aretw0/biji/pkg/core"
	"github.com/aretw0/biji/pkg/view"
)

// --- Types ---

// App is the application context.
type App = app.App

// Note is a persisted note record.
type Note = core.Note

// MedicalProfile is the singleton medical record.
type MedicalProfile = core.MedicalProfile

// Listener receives cache changes.
type Listener = view.Listener

// Config is the file configuration (biji.yaml).
type Config = platform.Config

// --- Configuration ---

// Option defines a functional option for configuring biji.
type Option = platform.Option

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithDebounce sets the autosave quiet period.
func WithDebounce(d time.Duration) Option {
	return platform.WithDebounce(d)
}

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithForceTemp forces the database into a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithReadOnly opens the database without write access.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithSchemaVersion requests a specific schema version.
func WithSchemaVersion(version int) Option {
	return platform.WithSchemaVersion(version)
}

// WithEventBuffer sets the size of the watch event channel.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithListener subscribes a listener before the first load.
func WithListener(l Listener) Option {
	return platform.WithListener(l)
}

// WithWatcherErrorHandler registers a callback for store watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithErrorHandler registers a callback for background failures.
func WithErrorHandler(fn func(error)) Option {
	return platform.WithErrorHandler(fn)
}

// --- Factory ---

// New opens the database at path and returns a loaded application context.
func New(ctx context.Context, path string, opts ...Option) (*App, error) {
	return platform.New(ctx, path, opts...)
}

// LoadConfig reads a biji.yaml file.
func LoadConfig(path string) (Config, error) {
	return platform.LoadConfig(path)
}

// --- Safety & Utils ---

// ResolveDBPath determines the actual database file based on safety rules.
func ResolveDBPath(userPath string, forceTemp bool) string {
	return platform.ResolveDBPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindConfig recursively looks upwards for a biji.yaml file.
func FindConfig(startDir string) (string, error) {
	return platform.FindConfig(startDir)
}
