package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/biji/pkg/core"
)

func TestWatch_ReportsChangesFromAnotherConnection(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultName)
	watched := openTestGateway(t, Config{Path: path})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := watched.Watch(ctx)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return watched.State().(GatewayState).WatcherActive
	}, 2*time.Second, 10*time.Millisecond)

	other := openTestGateway(t, Config{Path: path})
	_, err = other.Notes().Add(context.Background(), core.Note{Title: "from elsewhere"})
	require.NoError(t, err)

	select {
	case e := <-events:
		assert.Equal(t, core.EventModify, e.Type)
		assert.Equal(t, path, e.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for store event")
	}

	cancel()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case _, open := <-events:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("event channel should close after cancel")
		}
	}
}

func TestWatch_InMemoryIsRejected(t *testing.T) {
	g := openTestGateway(t, Config{Path: MemoryPath})
	_, err := g.Watch(context.Background())
	assert.Error(t, err)
}

func TestWatchWorker_Filtering(t *testing.T) {
	g := &Gateway{config: Config{Path: filepath.Join("data", "biji.db")}}
	w := newWatchWorker(g, nil)

	assert.True(t, w.matches(fsnotify.Event{Name: filepath.Join("data", "biji.db")}))
	assert.True(t, w.matches(fsnotify.Event{Name: filepath.Join("data", "biji.db-wal")}))
	assert.False(t, w.matches(fsnotify.Event{Name: filepath.Join("data", "other.db")}))

	db := filepath.Join("data", "biji.db")
	journal := filepath.Join("data", "biji.db-journal")
	assert.Equal(t, core.EventModify, w.mapEventType(fsnotify.Event{Name: db, Op: fsnotify.Write}))
	assert.Equal(t, core.EventModify, w.mapEventType(fsnotify.Event{Name: journal, Op: fsnotify.Create}))
	assert.Equal(t, core.EventModify, w.mapEventType(fsnotify.Event{Name: journal, Op: fsnotify.Remove}))
	assert.Equal(t, core.EventRemove, w.mapEventType(fsnotify.Event{Name: db, Op: fsnotify.Remove}))
	assert.Equal(t, core.EventRemove, w.mapEventType(fsnotify.Event{Name: db, Op: fsnotify.Rename}))
	assert.Equal(t, core.EventType(""), w.mapEventType(fsnotify.Event{Name: db, Op: fsnotify.Chmod}))
}

func TestWatchWorker_Coalesce(t *testing.T) {
	g := &Gateway{config: Config{Path: filepath.Join("data", "biji.db")}}
	w := newWatchWorker(g, nil)
	db := filepath.Join("data", "biji.db")
	journal := filepath.Join("data", "biji.db-journal")

	window := func(events ...fsnotify.Event) core.EventType {
		var pending *core.Event
		for _, e := range events {
			pending = &core.Event{Type: coalesce(pending, w.mapEventType(e))}
		}
		return pending.Type
	}

	commit := window(
		fsnotify.Event{Name: journal, Op: fsnotify.Create},
		fsnotify.Event{Name: db, Op: fsnotify.Write},
		fsnotify.Event{Name: journal, Op: fsnotify.Remove},
	)
	assert.Equal(t, core.EventModify, commit)

	removed := window(
		fsnotify.Event{Name: db, Op: fsnotify.Remove},
		fsnotify.Event{Name: journal, Op: fsnotify.Remove},
	)
	assert.Equal(t, core.EventRemove, removed)
}
