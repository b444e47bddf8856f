package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/biji/pkg/view"
)

// options holds the internal configuration for a biji application.
type options struct {
	logger        *slog.Logger
	debounce      time.Duration
	now           func() time.Time
	forceTemp     bool
	devSafety     bool
	readOnly      bool
	schemaVersion int
	eventBuffer   int
	listeners     []view.Listener
	watcherErrors func(error)
	errorHandler  func(error)
}

// Option defines a functional option for configuring biji.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		devSafety: true,
	}
}

// WithLogger sets the logger used by the store, the editor and the app.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDebounce sets the autosave quiet period. Zero means 800ms.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

// WithClock replaces the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithForceTemp forces the database into a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true), the database is re-rooted into a temporary directory to
// prevent accidental data loss.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}

// WithReadOnly opens the database without write access.
// Writes return core.ErrReadOnly, the schema is never upgraded and the dev
// sandbox is bypassed.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithSchemaVersion requests a specific schema version. Zero means latest.
func WithSchemaVersion(version int) Option {
	return func(o *options) {
		o.schemaVersion = version
	}
}

// WithEventBuffer sets the size of the watch event channel. Zero means 100.
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithListener subscribes l to the presentation cache before the first load.
func WithListener(l view.Listener) Option {
	return func(o *options) {
		o.listeners = append(o.listeners, l)
	}
}

// WithWatcherErrorHandler registers a callback for runtime failures of the
// store watcher (e.g. permission denied), which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.watcherErrors = fn
	}
}

// WithErrorHandler registers a callback for failures of background work:
// autosaves and background reloads.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
