package editor

import (
	"sync"
	"time"

	"github.com/dreitier/treefactor/metrics"
	"github.com/dreitier/treefactor/tree"
)

// Session is one editable copy of an uploaded listing. The initial tree is never modified.
type Session struct {
	id string

	mutex    sync.RWMutex
	initial  *tree.Tree
	edited   *tree.Tree
	dirty    bool
	revision uint64
	savedAt  time.Time

	metric *metrics.SessionMetric
}

// NodeInfo is a detached description of a single node.
type NodeInfo struct {
	Kind               tree.Kind `json:"type"`
	Name               string    `json:"name"`
	Path               string    `json:"path"`
	FullPath           string    `json:"full_path"`
	Size               int       `json:"size"`
	ContentDescription []string  `json:"content_description"`
	Children           []string  `json:"children,omitempty"`
}

func newSession(id string, initial *tree.Tree, edited *tree.Tree, savedAt time.Time) *Session {
	s := &Session{
		id:      id,
		initial: initial,
		edited:  edited,
		savedAt: savedAt,
		metric:  metrics.NewSession(id),
	}
	s.metric.UpdateNodes(edited.Size())

	return s
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) IsDirty() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.dirty
}

func (s *Session) SavedAt() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.savedAt
}

// Serialize returns the edited tree as a listing.
func (s *Session) Serialize() []byte {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return tree.Serialize(s.edited)
}

// SerializeInitial returns the tree as it was uploaded.
func (s *Session) SerializeInitial() []byte {
	return tree.Serialize(s.initial)
}

func (s *Session) Report() tree.Report {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.edited.Report()
}

func (s *Session) Contains(substring string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.edited.Contains(substring)
}

// FindNode describes the node at fullPath in the edited tree.
func (s *Session) FindNode(fullPath string) (*NodeInfo, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	node := s.edited.FindNode(fullPath)
	if node == nil {
		return nil, false
	}

	info := &NodeInfo{
		Kind:               node.Kind(),
		Name:               node.Name(),
		Path:               node.Path(),
		FullPath:           node.FullPath(),
		Size:               node.Size(),
		ContentDescription: node.ContentDescription().Sorted(),
	}

	if dir, ok := node.(*tree.Directory); ok {
		for _, child := range dir.Children() {
			info.Children = append(info.Children, child.FullPath())
		}
	}

	return info, true
}

// Tree returns a copy of the edited tree.
func (s *Session) Tree() *tree.Tree {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.edited.Clone()
}

func (s *Session) move(fromPath string, toPath string) (string, tree.Rejection) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	newPath, rejection := s.edited.TryMove(fromPath, toPath)
	if rejection == tree.Accepted {
		s.dirty = true
		s.revision++
	}

	return newPath, rejection
}

func (s *Session) reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.edited = s.initial.Clone()
	s.dirty = false
	s.revision++
	s.metric.UpdateNodes(s.edited.Size())
}

// pending returns the edited listing and its revision if it has unsaved changes.
func (s *Session) pending(savedBefore time.Time) ([]byte, uint64, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.dirty || !s.savedAt.Before(savedBefore) {
		return nil, 0, false
	}

	return tree.Serialize(s.edited), s.revision, true
}

// saved marks revision as persisted. Moves applied in the meantime keep the session dirty.
func (s *Session) saved(revision uint64, at time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.savedAt = at
	if s.revision == revision {
		s.dirty = false
	}
}
