package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/biji/pkg/core"
)

// coalesceWindow groups the bursts of writes SQLite makes to the database,
// journal and WAL files into one event.
const coalesceWindow = 50 * time.Millisecond

var _ core.Watchable = (*Gateway)(nil)

// Watch reports changes made to the database file by other processes.
// The returned channel is closed when ctx is cancelled.
// The watcher is supervised and restarted if it fails.
func (g *Gateway) Watch(ctx context.Context) (<-chan core.Event, error) {
	if g.config.Path == MemoryPath {
		return nil, errors.New("cannot watch an in-memory database")
	}

	events := make(chan core.Event, g.config.EventBuffer)
	spec := supervisor.Spec{
		Name: "store-watcher",
		Type: string(worker.TypeGoroutine),
		Factory: func() (worker.Worker, error) {
			return newWatchWorker(g, events), nil
		},
		Backoff: supervisor.Backoff{
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      2,
			ResetDuration:   time.Minute,
			MaxRestarts:     5,
			MaxDuration:     5 * time.Minute,
		},
		RestartPolicy: supervisor.RestartOnFailure,
	}

	sup := supervisor.New("store", supervisor.StrategyOneForOne, spec)
	if err := sup.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := sup.Stop(stopCtx)
		close(events)
		return err
	}, lifecycle.WithErrorHandler(g.reportWatchError))

	return events, nil
}

func (g *Gateway) reportWatchError(err error) {
	g.config.Logger.Error("watcher failure", "error", err)
	if g.config.ErrorHandler != nil {
		g.config.ErrorHandler(err)
	}
}

type watchWorker struct {
	*worker.BaseWorker
	g       *Gateway
	pattern string
	events  chan<- core.Event
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
}

func newWatchWorker(g *Gateway, events chan<- core.Event) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("store-watcher"),
		g:          g,
		// Matches the database and its -wal, -shm and -journal companions.
		pattern: filepath.Base(g.config.Path) + "*",
		events:  events,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// SQLite replaces the journal files, so the directory is watched rather
	// than the database file itself.
	if err := watcher.Add(filepath.Dir(w.g.config.Path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.g.config.Path), err)
	}

	w.watcher = watcher
	w.g.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

func (w *watchWorker) matches(event fsnotify.Event) bool {
	ok, err := doublestar.Match(w.pattern, filepath.Base(event.Name))
	return err == nil && ok
}

// mapEventType classifies a file event. Only the removal of the database
// file itself is a removal; the journal files come and go on every commit.
func (w *watchWorker) mapEventType(event fsnotify.Event) core.EventType {
	removed := event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
	switch {
	case removed && filepath.Base(event.Name) == filepath.Base(w.g.config.Path):
		return core.EventRemove
	case removed, event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		return core.EventModify
	default:
		return ""
	}
}

// coalesce merges the type of a new event into the pending one. A removal
// of the database wins over the writes of the same window.
func coalesce(pending *core.Event, eType core.EventType) core.EventType {
	if pending != nil && pending.Type == core.EventRemove {
		return core.EventRemove
	}
	return eType
}

// send delivers an event, protecting against channel closure during shutdown.
func (w *watchWorker) send(ctx context.Context, e core.Event) {
	defer func() {
		_ = recover()
	}()
	w.g.recordEvent()
	select {
	case w.events <- e:
	case <-ctx.Done():
	}
}

func (w *watchWorker) run(ctx context.Context) (err error) {
	logger := w.g.config.Logger
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				logger.Error("watcher panic", "error", err)
			}
		}
	}()
	defer w.g.setWatcherActive(false)
	defer w.watcher.Close()

	timer := time.NewTimer(coalesceWindow)
	timer.Stop()
	defer timer.Stop()

	var pending *core.Event
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.matches(event) {
				continue
			}
			eType := w.mapEventType(event)
			if eType == "" {
				continue
			}
			logger.Debug("store event", "name", event.Name, "op", event.Op.String())
			pending = &core.Event{
				Type:      coalesce(pending, eType),
				Path:      w.g.config.Path,
				Timestamp: time.Now().UnixMilli(),
			}
			timer.Reset(coalesceWindow)

		case <-timer.C:
			if pending != nil {
				w.send(ctx, *pending)
				pending = nil
			}

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("fsnotify error", "error", wErr)
			if w.g.config.ErrorHandler != nil {
				w.g.config.ErrorHandler(wErr)
			}
		}
	}
}
