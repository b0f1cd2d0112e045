package editor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dreitier/treefactor/metrics"
	"github.com/dreitier/treefactor/storage"
	"github.com/dreitier/treefactor/tree"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrUnknownSession = errors.New("unknown session")

// endOfTime is later than any save, so that every dirty session qualifies.
var endOfTime = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// Manager owns all editing sessions and persists them in a storage.Store.
type Manager struct {
	store storage.Store
	now   func() time.Time

	mutex    sync.RWMutex
	sessions map[string]*Session
}

func NewManager(store storage.Store) *Manager {
	return &Manager{
		store:    store,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create parses listing and opens a new session for it. The listing is persisted before the session becomes visible.
func (m *Manager) Create(ctx context.Context, listing []byte) (*Session, error) {
	initial, err := tree.Parse(listing)
	if err != nil {
		metrics.GetEditorMetrics().ParseFailed()
		return nil, err
	}

	id := uuid.NewString()
	if err := m.store.Save(ctx, storage.DocumentKey(id, storage.InitialTreeDocument), tree.Serialize(initial)); err != nil {
		return nil, fmt.Errorf("failed to persist session %s: %w", id, err)
	}

	session := newSession(id, initial, initial.Clone(), m.now())
	m.register(session)

	log.Infof("Created session %s for %#q with %d node(s)", id, initial.Name(), initial.Size())
	return session, nil
}

// Open returns the session id, restoring it from storage if it is not loaded yet.
func (m *Manager) Open(ctx context.Context, id string) (*Session, error) {
	if session, err := m.Get(id); err == nil {
		return session, nil
	}

	initial, err := m.loadTree(ctx, storage.DocumentKey(id, storage.InitialTreeDocument))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	if err != nil {
		return nil, err
	}

	edited, err := m.loadTree(ctx, storage.DocumentKey(id, storage.EditedTreeDocument))
	if errors.Is(err, storage.ErrNotFound) {
		edited = initial.Clone()
	} else if err != nil {
		return nil, err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// another caller may have opened it in the meantime
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}

	session := newSession(id, initial, edited, m.now())
	m.sessions[id] = session
	log.Debugf("Restored session %s from storage", id)

	return session, nil
}

// Restore opens every session found in storage and returns how many were newly loaded.
func (m *Manager) Restore(ctx context.Context) (int, error) {
	keys, err := m.store.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("failed to list stored sessions: %w", err)
	}

	restored := 0
	for _, id := range storage.Sessions(keys) {
		if _, err := m.Get(id); err == nil {
			continue
		}
		if _, err := m.Open(ctx, id); err != nil {
			log.Errorf("Cannot restore session %s: %s", id, err)
			continue
		}
		restored++
	}

	return restored, nil
}

// Get returns a loaded session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	session, exists := m.sessions[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	return session, nil
}

// List returns the ids of all loaded sessions.
func (m *Manager) List() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// Move relocates fromPath into the directory toPath of session id. A rejected move is not an error.
func (m *Manager) Move(id string, fromPath string, toPath string) (string, tree.Rejection, error) {
	session, err := m.Get(id)
	if err != nil {
		return "", tree.Accepted, err
	}

	newPath, rejection := session.move(fromPath, toPath)
	if rejection != tree.Accepted {
		metrics.GetEditorMetrics().MoveRejected(string(rejection))
		return "", rejection, nil
	}

	metrics.GetEditorMetrics().MoveAccepted()
	return newPath, tree.Accepted, nil
}

// Reset discards every move of session id.
func (m *Manager) Reset(ctx context.Context, id string) error {
	session, err := m.Get(id)
	if err != nil {
		return err
	}

	if err := m.store.Delete(ctx, storage.DocumentKey(id, storage.EditedTreeDocument)); err != nil {
		return fmt.Errorf("failed to discard saved edits of session %s: %w", id, err)
	}

	session.reset()

	log.Debugf("Reset session %s", id)
	return nil
}

// Delete closes session id and removes all of its documents.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mutex.RLock()
	session, loaded := m.sessions[id]
	m.mutex.RUnlock()

	keys, err := m.store.List(ctx, storage.SessionPrefix(id))
	if err != nil {
		return fmt.Errorf("failed to list documents of session %s: %w", id, err)
	}

	if !loaded && len(keys) == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}

	for _, key := range keys {
		if err := m.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}

	if loaded {
		m.mutex.Lock()
		if m.sessions[id] == session {
			delete(m.sessions, id)
		}
		m.mutex.Unlock()

		session.metric.Drop()
	}

	log.Infof("Deleted session %s", id)
	return nil
}

// Snapshot persists the edited tree of every session with unsaved changes.
func (m *Manager) Snapshot(ctx context.Context) (int, error) {
	return m.SnapshotSavedBefore(ctx, endOfTime)
}

// SnapshotSavedBefore persists every session with unsaved changes that was last saved before moment.
// All sessions are attempted; the first error is returned.
func (m *Manager) SnapshotSavedBefore(ctx context.Context, moment time.Time) (int, error) {
	m.mutex.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	m.mutex.RUnlock()

	var firstErr error
	count := 0

	for _, session := range sessions {
		data, revision, ok := session.pending(moment)
		if !ok {
			continue
		}

		err := m.store.Save(ctx, storage.DocumentKey(session.id, storage.EditedTreeDocument), data)
		metrics.GetEditorMetrics().SnapshotTaken(err)

		if err != nil {
			log.Errorf("Failed to snapshot session %s: %s", session.id, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		session.saved(revision, m.now())
		count++
	}

	return count, firstErr
}

// Close persists pending changes and releases the store.
func (m *Manager) Close(ctx context.Context) error {
	_, snapshotErr := m.Snapshot(ctx)
	return errors.Join(snapshotErr, m.store.Close())
}

func (m *Manager) register(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.sessions[session.id] = session
}

func (m *Manager) loadTree(ctx context.Context, key string) (*tree.Tree, error) {
	data, err := m.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	parsed, err := tree.Parse(data)
	if err != nil {
		metrics.GetEditorMetrics().ParseFailed()
		return nil, fmt.Errorf("stored document %s is corrupt: %w", key, err)
	}

	return parsed, nil
}
