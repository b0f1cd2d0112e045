package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dreitier/treefactor/metrics"
	"github.com/dreitier/treefactor/storage"
	"github.com/dreitier/treefactor/tree"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listing = `[
  {"type":"directory","name":"root","contents":[
    {"type":"directory","name":"a","contents":[
      {"type":"file","name":"icon.svg"}
    ]},
    {"type":"directory","name":"b","contents":[]},
    {"type":"file","name":"file.dat"}
  ]},
  {"type":"report","directories":2,"files":2}
]`

// failingStore fails every Save after the first failAfter calls, and every Delete if failDelete is set.
type failingStore struct {
	*storage.MemoryStore
	mutex      sync.Mutex
	saves      int
	failAfter  int
	failDelete bool
}

func (f *failingStore) Save(ctx context.Context, key string, data []byte) error {
	f.mutex.Lock()
	f.saves++
	fail := f.saves > f.failAfter
	f.mutex.Unlock()

	if fail {
		return errors.New("storage unavailable")
	}
	return f.MemoryStore.Save(ctx, key, data)
}

func (f *failingStore) Delete(ctx context.Context, key string) error {
	if f.failDelete {
		return errors.New("storage unavailable")
	}
	return f.MemoryStore.Delete(ctx, key)
}

func newTestManager(t *testing.T) (*Manager, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewManager(store), store
}

func createSession(t *testing.T, sut *Manager) *Session {
	t.Helper()
	session, err := sut.Create(context.Background(), []byte(listing))
	require.NoError(t, err)
	return session
}

func Test_Manager_create(t *testing.T) {
	assertion := assert.New(t)
	sut, store := newTestManager(t)
	sessionsBefore := testutil.ToFloat64(metrics.GetEditorMetrics().Sessions())

	session := createSession(t, sut)

	assertion.Len(session.Id(), 36)
	assertion.False(session.IsDirty())
	assertion.Equal(tree.Report{Directories: 2, Files: 2}, session.Report())
	assertion.Equal([]string{session.Id()}, sut.List())
	assertion.Equal(sessionsBefore+1, testutil.ToFloat64(metrics.GetEditorMetrics().Sessions()))
	assertion.Equal(float64(5), testutil.ToFloat64(metrics.GetEditorMetrics().TreeNodes().WithLabelValues(session.Id())))

	stored, err := store.Load(context.Background(), storage.DocumentKey(session.Id(), storage.InitialTreeDocument))
	assertion.NoError(err)
	assertion.Equal(session.SerializeInitial(), stored)
}

func Test_Manager_create_malformedListing(t *testing.T) {
	assertion := assert.New(t)
	sut, _ := newTestManager(t)
	failuresBefore := testutil.ToFloat64(metrics.GetEditorMetrics().ParseFailures())

	_, err := sut.Create(context.Background(), []byte(`[{"type":"file","name":"x"}]`))

	assertion.ErrorIs(err, tree.ErrMalformed)
	assertion.Empty(sut.List())
	assertion.Equal(failuresBefore+1, testutil.ToFloat64(metrics.GetEditorMetrics().ParseFailures()))
}

func Test_Manager_create_storageFailure(t *testing.T) {
	sut := NewManager(&failingStore{MemoryStore: storage.NewMemoryStore()})

	_, err := sut.Create(context.Background(), []byte(listing))

	assert.ErrorContains(t, err, "storage unavailable")
	assert.Empty(t, sut.List())
}

func Test_Manager_move(t *testing.T) {
	assertion := assert.New(t)
	sut, _ := newTestManager(t)
	session := createSession(t, sut)
	acceptedBefore := testutil.ToFloat64(metrics.GetEditorMetrics().Moves().WithLabelValues(metrics.OutcomeAccepted, ""))
	cycleBefore := testutil.ToFloat64(metrics.GetEditorMetrics().Moves().WithLabelValues(metrics.OutcomeRejected, string(tree.RejectCycle)))

	newPath, rejection, err := sut.Move(session.Id(), "root/file.dat", "root/b/")
	assertion.NoError(err)
	assertion.Equal(tree.Accepted, rejection)
	assertion.Equal("root/b/file.dat", newPath)
	assertion.True(session.IsDirty())

	_, rejection, err = sut.Move(session.Id(), "root/a/", "root/a/")
	assertion.NoError(err)
	assertion.Equal(tree.RejectSamePath, rejection)

	_, rejection, err = sut.Move(session.Id(), "root/", "root/a/")
	assertion.NoError(err)
	assertion.Equal(tree.RejectCycle, rejection)

	assertion.Equal(acceptedBefore+1, testutil.ToFloat64(metrics.GetEditorMetrics().Moves().WithLabelValues(metrics.OutcomeAccepted, "")))
	assertion.Equal(cycleBefore+1, testutil.ToFloat64(metrics.GetEditorMetrics().Moves().WithLabelValues(metrics.OutcomeRejected, string(tree.RejectCycle))))

	info, found := session.FindNode("root/b/")
	assertion.True(found)
	assertion.Equal([]string{"root/b/file.dat"}, info.Children)
	assertion.Equal([]string{"dat"}, info.ContentDescription)

	initial, err := tree.Parse(session.SerializeInitial())
	assertion.NoError(err)
	assertion.NotNil(initial.FindNode("root/file.dat"), "initial tree must not change")
}

func Test_Manager_move_unknownSession(t *testing.T) {
	sut, _ := newTestManager(t)

	_, _, err := sut.Move("missing", "root/a/", "root/b/")

	assert.ErrorIs(t, err, ErrUnknownSession)
}

func Test_Manager_snapshotAndOpen(t *testing.T) {
	assertion := assert.New(t)
	ctx := context.Background()
	first, store := newTestManager(t)
	session := createSession(t, first)

	_, _, _ = first.Move(session.Id(), "root/a/icon.svg", "root/b/")

	count, err := first.Snapshot(ctx)
	assertion.NoError(err)
	assertion.Equal(1, count)
	assertion.False(session.IsDirty())

	count, err = first.Snapshot(ctx)
	assertion.NoError(err)
	assertion.Equal(0, count, "nothing changed since the last snapshot")

	second := NewManager(store)
	restored, err := second.Open(ctx, session.Id())
	assertion.NoError(err)
	assertion.Equal(session.Serialize(), restored.Serialize())
	assertion.Equal(session.SerializeInitial(), restored.SerializeInitial())

	again, err := second.Open(ctx, session.Id())
	assertion.NoError(err)
	assertion.Same(restored, again)

	_, err = second.Open(ctx, "missing")
	assertion.ErrorIs(err, ErrUnknownSession)
}

func Test_Manager_snapshotSavedBefore(t *testing.T) {
	assertion := assert.New(t)
	ctx := context.Background()
	sut, _ := newTestManager(t)
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	sut.now = func() time.Time { return created }

	session := createSession(t, sut)
	_, _, _ = sut.Move(session.Id(), "root/file.dat", "root/a/")

	count, err := sut.SnapshotSavedBefore(ctx, created)
	assertion.NoError(err)
	assertion.Equal(0, count, "saved exactly at the activation")

	count, err = sut.SnapshotSavedBefore(ctx, created.Add(time.Minute))
	assertion.NoError(err)
	assertion.Equal(1, count)
}

func Test_Manager_snapshotFailureKeepsSessionDirty(t *testing.T) {
	assertion := assert.New(t)
	ctx := context.Background()
	sut := NewManager(&failingStore{MemoryStore: storage.NewMemoryStore(), failAfter: 1})
	session := createSession(t, sut)
	failuresBefore := testutil.ToFloat64(metrics.GetEditorMetrics().Snapshots().WithLabelValues(metrics.ResultFailure))

	_, _, _ = sut.Move(session.Id(), "root/file.dat", "root/a/")
	count, err := sut.Snapshot(ctx)

	assertion.Error(err)
	assertion.Equal(0, count)
	assertion.True(session.IsDirty())
	assertion.Equal(failuresBefore+1, testutil.ToFloat64(metrics.GetEditorMetrics().Snapshots().WithLabelValues(metrics.ResultFailure)))
}

func Test_Manager_reset(t *testing.T) {
	assertion := assert.New(t)
	ctx := context.Background()
	sut, store := newTestManager(t)
	session := createSession(t, sut)

	_, _, _ = sut.Move(session.Id(), "root/file.dat", "root/a/")
	_, _ = sut.Snapshot(ctx)

	assertion.NoError(sut.Reset(ctx, session.Id()))

	assertion.False(session.IsDirty())
	assertion.Equal(session.SerializeInitial(), session.Serialize())
	_, err := store.Load(ctx, storage.DocumentKey(session.Id(), storage.EditedTreeDocument))
	assertion.ErrorIs(err, storage.ErrNotFound)

	assertion.ErrorIs(sut.Reset(ctx, "missing"), ErrUnknownSession)
}

func Test_Manager_reset_storageFailureKeepsEdits(t *testing.T) {
	assertion := assert.New(t)
	ctx := context.Background()
	store := &failingStore{MemoryStore: storage.NewMemoryStore(), failAfter: 100, failDelete: true}
	sut := NewManager(store)
	session := createSession(t, sut)

	_, _, _ = sut.Move(session.Id(), "root/file.dat", "root/a/")
	_, err := sut.Snapshot(ctx)
	require.NoError(t, err)
	_, _, _ = sut.Move(session.Id(), "root/a/icon.svg", "root/b/")

	err = sut.Reset(ctx, session.Id())

	assertion.ErrorContains(err, "storage unavailable")
	assertion.True(session.IsDirty())
	_, found := session.FindNode("root/a/file.dat")
	assertion.True(found)
	_, found = session.FindNode("root/b/icon.svg")
	assertion.True(found)
}

func Test_Manager_delete_storageFailureKeepsSession(t *testing.T) {
	assertion := assert.New(t)
	ctx := context.Background()
	store := &failingStore{MemoryStore: storage.NewMemoryStore(), failAfter: 100, failDelete: true}
	sut := NewManager(store)
	session := createSession(t, sut)
	sessionsBefore := testutil.ToFloat64(metrics.GetEditorMetrics().Sessions())

	err := sut.Delete(ctx, session.Id())

	assertion.ErrorContains(err, "storage unavailable")
	assertion.Equal([]string{session.Id()}, sut.List())
	assertion.Equal(sessionsBefore, testutil.ToFloat64(metrics.GetEditorMetrics().Sessions()))
	_, err = store.Load(ctx, storage.DocumentKey(session.Id(), storage.InitialTreeDocument))
	assertion.NoError(err)

	store.failDelete = false
	assertion.NoError(sut.Delete(ctx, session.Id()))
	assertion.Empty(sut.List())
	assertion.Equal(sessionsBefore-1, testutil.ToFloat64(metrics.GetEditorMetrics().Sessions()))
}

func Test_Manager_deleteAndRestore(t *testing.T) {
	assertion := assert.New(t)
	ctx := context.Background()
	sut, store := newTestManager(t)
	kept := createSession(t, sut)
	deleted := createSession(t, sut)
	sessionsBefore := testutil.ToFloat64(metrics.GetEditorMetrics().Sessions())

	assertion.NoError(sut.Delete(ctx, deleted.Id()))
	assertion.Equal([]string{kept.Id()}, sut.List())
	assertion.Equal(sessionsBefore-1, testutil.ToFloat64(metrics.GetEditorMetrics().Sessions()))
	assertion.ErrorIs(sut.Delete(ctx, deleted.Id()), ErrUnknownSession)

	restoring := NewManager(store)
	count, err := restoring.Restore(ctx)
	assertion.NoError(err)
	assertion.Equal(1, count)
	assertion.Equal([]string{kept.Id()}, restoring.List())

	count, _ = restoring.Restore(ctx)
	assertion.Equal(0, count, "already loaded")
}

func Test_Manager_restoreSkipsCorruptSessions(t *testing.T) {
	assertion := assert.New(t)
	ctx := context.Background()
	store := storage.NewMemoryStore()
	_ = store.Save(ctx, storage.DocumentKey("corrupt", storage.InitialTreeDocument), []byte(`not json`))

	sut := NewManager(store)
	count, err := sut.Restore(ctx)

	assertion.NoError(err)
	assertion.Equal(0, count)
	_, err = sut.Open(ctx, "corrupt")
	assertion.ErrorIs(err, tree.ErrMalformed)
}

func Test_Manager_concurrentMovesKeepSize(t *testing.T) {
	sut, _ := newTestManager(t)
	session := createSession(t, sut)
	sizeBefore := session.Tree().Size()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _, _ = sut.Move(session.Id(), "root/a/", "root/b/")
			} else {
				_, _, _ = sut.Move(session.Id(), "root/b/a/", "root/")
			}
			_ = session.Serialize()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, sizeBefore, session.Tree().Size())
}

func Test_Manager_close(t *testing.T) {
	ctx := context.Background()
	sut, store := newTestManager(t)
	session := createSession(t, sut)
	_, _, _ = sut.Move(session.Id(), "root/file.dat", "root/a/")

	assert.NoError(t, sut.Close(ctx))

	_, err := store.Load(ctx, storage.DocumentKey(session.Id(), storage.EditedTreeDocument))
	assert.NoError(t, err)
}
