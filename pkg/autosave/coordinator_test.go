package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/biji/pkg/core"
)

const testDelay = 20 * time.Millisecond

type memStore struct {
	mu     sync.Mutex
	nextID int64
	notes  map[int64]core.Note
	adds   int
	puts   int
	fail   error

	// beforeWrite runs at the start of every write, outside the lock.
	beforeWrite func()
}

func newMemStore() *memStore {
	return &memStore{notes: map[int64]core.Note{}}
}

func (s *memStore) Add(_ context.Context, n core.Note) (int64, error) {
	if s.beforeWrite != nil {
		s.beforeWrite()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return 0, s.fail
	}
	s.nextID++
	n.ID = s.nextID
	s.notes[n.ID] = n
	s.adds++
	return n.ID, nil
}

func (s *memStore) Put(_ context.Context, n core.Note) error {
	if s.beforeWrite != nil {
		s.beforeWrite()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.notes[n.ID] = n
	s.puts++
	return nil
}

func (s *memStore) setFail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *memStore) counts() (adds, puts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adds, s.puts
}

func (s *memStore) get(id int64) (core.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	return n, ok
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	*Coordinator
	store     *memStore
	clock     *clock
	mu        sync.Mutex
	persisted []core.Note
	errs      []error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store: newMemStore(),
		clock: &clock{now: time.UnixMilli(1_700_000_000_000)},
	}
	h.Coordinator = New(Config{
		Store: h.store,
		Delay: testDelay,
		Now:   h.clock.Now,
		OnPersist: func(n core.Note) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.persisted = append(h.persisted, n)
		},
		OnError: func(err error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.errs = append(h.errs, err)
		},
	})
	return h
}

func (h *harness) persistCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.persisted)
}

func (h *harness) errCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.errs)
}

func waitAdds(t *testing.T, h *harness, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		adds, _ := h.store.counts()
		return adds == want
	}, time.Second, 5*time.Millisecond)
}

func TestAutosave_CreatesOnceAfterBurst(t *testing.T) {
	h := newHarness(t)
	h.OpenNew()

	assert.True(t, h.Snapshot().ExplicitNew)
	assert.False(t, h.Snapshot().CanDelete)

	require.NoError(t, h.Change("H", ""))
	require.NoError(t, h.Change("Hi", ""))
	require.NoError(t, h.Change("Hi", "there"))
	assert.True(t, h.Snapshot().Pending)

	waitAdds(t, h, 1)
	require.Eventually(t, func() bool { return h.Snapshot().CanDelete }, time.Second, 5*time.Millisecond)

	snap := h.Snapshot()
	require.NotNil(t, snap.Current)
	assert.Equal(t, int64(1), snap.Current.ID)
	assert.False(t, snap.ExplicitNew)
	assert.False(t, snap.Pending)

	n, ok := h.store.get(1)
	require.True(t, ok)
	assert.Equal(t, "Hi", n.Title)
	assert.Equal(t, "there", n.Content)
	assert.Equal(t, n.Created, n.Modified)
	assert.Equal(t, 1, h.persistCount())
}

func TestAutosave_UpdatesAfterPromotion(t *testing.T) {
	h := newHarness(t)
	h.OpenNew()
	require.NoError(t, h.Change("A", ""))
	waitAdds(t, h, 1)
	require.Eventually(t, func() bool { return h.Snapshot().CanDelete }, time.Second, 5*time.Millisecond)

	created, _ := h.store.get(1)
	h.clock.Advance(time.Minute)
	require.NoError(t, h.Change("AB", "body"))

	require.Eventually(t, func() bool {
		_, puts := h.store.counts()
		return puts == 1
	}, time.Second, 5*time.Millisecond)

	adds, _ := h.store.counts()
	assert.Equal(t, 1, adds, "second change must update, not create")

	n, _ := h.store.get(1)
	assert.Equal(t, "AB", n.Title)
	assert.Equal(t, created.Created, n.Created)
	assert.Equal(t, created.Modified+time.Minute.Milliseconds(), n.Modified)
}

func TestAutosave_DefaultsTitle(t *testing.T) {
	h := newHarness(t)
	h.OpenNew()
	require.NoError(t, h.Change("   ", " content only "))
	waitAdds(t, h, 1)

	n, _ := h.store.get(1)
	assert.Equal(t, core.DefaultTitle, n.Title)
	assert.Equal(t, "content only", n.Content)
}

func TestAutosave_EmptyDraftIsNoop(t *testing.T) {
	h := newHarness(t)
	h.OpenNew()
	require.NoError(t, h.Change("  ", "\n\t"))

	time.Sleep(5 * testDelay)
	adds, puts := h.store.counts()
	assert.Zero(t, adds)
	assert.Zero(t, puts)
}

func TestAutosave_ChangeRequiresOpenEditor(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.Change("x", "y"), core.ErrNotEditing)
}

func TestAutosave_FailureIsSwallowed(t *testing.T) {
	h := newHarness(t)
	h.store.setFail(errors.New("disk full"))
	h.OpenNew()
	require.NoError(t, h.Change("A", "B"))

	require.Eventually(t, func() bool { return h.errCount() == 1 }, time.Second, 5*time.Millisecond)

	var we *core.WriteError
	require.ErrorAs(t, h.errs[0], &we)
	assert.Equal(t, "create note", we.Op)

	snap := h.Snapshot()
	assert.True(t, snap.Open)
	assert.Nil(t, snap.Current)
	assert.True(t, snap.ExplicitNew)
	assert.Zero(t, h.persistCount())
}

func TestClose_FlushesPendingChange(t *testing.T) {
	h := newHarness(t)
	h.Coordinator.config.Delay = time.Hour

	h.OpenEdit(core.Note{ID: 7, Title: "Old", Content: "c", Created: 1, Modified: 2})
	require.NoError(t, h.Change("New", "c"))
	h.Close(context.Background())

	n, ok := h.store.get(7)
	require.True(t, ok)
	assert.Equal(t, "New", n.Title)
	assert.Equal(t, int64(1), n.Created)

	snap := h.Snapshot()
	assert.False(t, snap.Open)
	assert.Nil(t, snap.Current)
	assert.False(t, snap.Pending)
}

func TestClose_WithoutChangesDoesNotWrite(t *testing.T) {
	h := newHarness(t)
	h.OpenEdit(core.Note{ID: 7, Title: "Old", Created: 1, Modified: 2})
	h.Close(context.Background())

	adds, puts := h.store.counts()
	assert.Zero(t, adds)
	assert.Zero(t, puts)
}

func TestClose_NewNoteCreatesOnlyOnce(t *testing.T) {
	h := newHarness(t)
	h.OpenNew()
	require.NoError(t, h.Change("Draft", ""))
	h.Close(context.Background())

	time.Sleep(5 * testDelay)
	adds, puts := h.store.counts()
	assert.Equal(t, 1, adds)
	assert.Zero(t, puts)
}

func TestClose_WhenClosedIsNoop(t *testing.T) {
	h := newHarness(t)
	h.Close(context.Background())
	assert.False(t, h.Snapshot().Open)
}

func TestSave_RejectsEmptyDraft(t *testing.T) {
	h := newHarness(t)
	h.OpenNew()
	require.NoError(t, h.Change(" ", " "))

	_, err := h.Save(context.Background())
	assert.True(t, core.IsValidation(err))
	assert.ErrorIs(t, err, core.ErrEmptyNote)
	assert.True(t, h.Snapshot().Open, "surface stays open")

	adds, _ := h.store.counts()
	assert.Zero(t, adds)
}

func TestSave_CreatesAndCloses(t *testing.T) {
	h := newHarness(t)
	h.OpenNew()
	require.NoError(t, h.Change("Title", "Body"))

	n, err := h.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.ID)
	assert.False(t, h.Snapshot().Open)

	time.Sleep(5 * testDelay)
	adds, puts := h.store.counts()
	assert.Equal(t, 1, adds, "debounced write must not fire after save")
	assert.Zero(t, puts)
	assert.Equal(t, 1, h.persistCount())
}

func TestSave_UpdatesExisting(t *testing.T) {
	h := newHarness(t)
	h.OpenEdit(core.Note{ID: 3, Title: "T", Content: "C", Created: 10, Modified: 20})

	n, err := h.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n.ID)
	assert.Equal(t, int64(10), n.Created)
	assert.Equal(t, h.clock.Now().UnixMilli(), n.Modified)
}

func TestSave_WriteFailureKeepsSurfaceOpen(t *testing.T) {
	h := newHarness(t)
	h.OpenEdit(core.Note{ID: 3, Title: "T", Created: 10, Modified: 20})
	h.store.setFail(errors.New("locked"))

	_, err := h.Save(context.Background())
	var we *core.WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, int64(3), we.ID)
	assert.True(t, h.Snapshot().Open)
	assert.Zero(t, h.errCount(), "explicit failures are returned, not reported")
}

func TestSave_KeepsChangeMadeDuringWrite(t *testing.T) {
	h := newHarness(t)
	h.OpenNew()
	require.NoError(t, h.Change("Title", "first"))

	var once sync.Once
	h.store.beforeWrite = func() {
		once.Do(func() { require.NoError(t, h.Change("Title", "second")) })
	}

	n, err := h.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", n.Content)

	snap := h.Snapshot()
	require.True(t, snap.Open, "a change made during the write keeps the editor open")
	assert.True(t, snap.Dirty)
	assert.Equal(t, "second", snap.Draft.Content)
	require.NotNil(t, snap.Current)
	assert.Equal(t, n.ID, snap.Current.ID)

	require.Eventually(t, func() bool {
		stored, ok := h.store.get(n.ID)
		return ok && stored.Content == "second"
	}, time.Second, 5*time.Millisecond)
	adds, _ := h.store.counts()
	assert.Equal(t, 1, adds, "the newer draft updates the saved note")
}

func TestSave_RequiresOpenEditor(t *testing.T) {
	h := newHarness(t)
	_, err := h.Save(context.Background())
	assert.ErrorIs(t, err, core.ErrNotEditing)
}

func TestDiscard_DropsPendingChange(t *testing.T) {
	h := newHarness(t)
	h.OpenEdit(core.Note{ID: 9, Title: "T", Created: 1, Modified: 1})
	require.NoError(t, h.Change("changed", ""))
	h.Discard()

	time.Sleep(5 * testDelay)
	_, puts := h.store.counts()
	assert.Zero(t, puts)
	assert.False(t, h.Snapshot().Open)
}

func TestOpen_StartsNewSession(t *testing.T) {
	h := newHarness(t)
	h.OpenNew()
	first := h.Snapshot().Session
	require.NotEmpty(t, first)

	h.OpenEdit(core.Note{ID: 1, Title: "x"})
	second := h.Snapshot()
	assert.NotEqual(t, first, second.Session)
	assert.False(t, second.ExplicitNew)
	assert.True(t, second.CanDelete)
	assert.Equal(t, core.Draft{Title: "x"}, second.Draft)

	cur, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, int64(1), cur.ID)
}
