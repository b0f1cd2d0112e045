package tree

import (
	log "github.com/sirupsen/logrus"
)

// Tree is a directory that is its own root: name, path and full path all derive from the root name
// without any parent segment.
type Tree struct {
	*Directory
}

// Rejection names the reason a move was not applied. The zero value means the move succeeded.
type Rejection string

const (
	Accepted                      Rejection = ""
	RejectSamePath                Rejection = "same_path"
	RejectSourceNotFound          Rejection = "source_not_found"
	RejectParentNotFound          Rejection = "parent_not_found"
	RejectDestinationNotFound     Rejection = "destination_not_found"
	RejectDestinationNotDirectory Rejection = "destination_not_directory"
	RejectCycle                   Rejection = "cycle"
	RejectCollision               Rejection = "collision"
)

// Report summarizes a tree the way the listing utility does. The root directory is not counted.
type Report struct {
	Directories int `json:"directories"`
	Files       int `json:"files"`
}

func New(root string, children ...Node) *Tree {
	d := &Directory{
		name:     root,
		path:     DirPath(root),
		fullPath: DirPath(root),
	}
	d.setChildren(children)

	return &Tree{Directory: d}
}

func (t *Tree) Clone() *Tree {
	children := make([]Node, 0, len(t.children))
	for _, child := range t.children {
		children = append(children, child.Clone())
	}

	return New(t.name, children...)
}

func (t *Tree) EquivalentTo(other *Tree) bool {
	if other == nil {
		return false
	}

	return t.Directory.EquivalentTo(other.Directory)
}

func (t *Tree) Report() Report {
	var report Report

	for _, child := range t.children {
		Walk(child, func(node Node) bool {
			switch node.(type) {
			case *Directory:
				report.Directories++
			case *File:
				report.Files++
			}
			return true
		})
	}

	return report
}

// Move relocates the node at fromPath into the directory at toPath and returns its new full path.
// A rejected move returns false and leaves the tree untouched.
func (t *Tree) Move(fromPath string, toPath string) (string, bool) {
	newPath, rejection := t.TryMove(fromPath, toPath)

	return newPath, rejection == Accepted
}

// TryMove is Move, reporting why a move was rejected.
func (t *Tree) TryMove(fromPath string, toPath string) (string, Rejection) {
	plan, rejection := t.planMove(fromPath, toPath)
	if rejection != Accepted {
		log.Debugf("Rejected move of %#q to %#q: %s", fromPath, toPath, rejection)
		return "", rejection
	}

	beforeSize := t.Size()
	plan.commit()
	t.Directory.refreshAlong(plan.oldParent.FullPath())
	t.Directory.refreshAlong(plan.newParent.FullPath())

	if afterSize := t.Size(); afterSize != beforeSize {
		log.Errorf("Tree unexpectedly changed size after moving %#q to %#q: %d before, %d after", fromPath, toPath, beforeSize, afterSize)
	}

	return plan.moved.FullPath(), Accepted
}

// movePlan is a validated move. Nothing in the tree changes until commit.
type movePlan struct {
	source    Node
	moved     Node
	oldParent *Directory
	newParent *Directory
}

func (p *movePlan) commit() {
	p.oldParent.RemoveChild(p.source)
	p.newParent.AddChild(p.moved)
}

// planMove runs every check of a move against a detached, re-pathed clone of the source.
func (t *Tree) planMove(fromPath string, toPath string) (*movePlan, Rejection) {
	if fromPath == toPath {
		return nil, RejectSamePath
	}

	obj := t.FindNode(fromPath)
	if obj == nil {
		return nil, RejectSourceNotFound
	}

	oldParent, ok := t.FindNode(obj.Path()).(*Directory)
	if !ok {
		return nil, RejectParentNotFound
	}

	target := t.FindNode(toPath)
	if target == nil {
		return nil, RejectDestinationNotFound
	}

	newParent, ok := target.(*Directory)
	if !ok {
		return nil, RejectDestinationNotDirectory
	}

	if dir, isDir := obj.(*Directory); isDir && (newParent == dir || newParent.IsDescendantOf(dir)) {
		return nil, RejectCycle
	}

	moved := obj.Clone()
	moved.SetPath(newParent.FullPath(), true)
	if newParent.child(moved.FullPath()) != nil {
		return nil, RejectCollision
	}

	return &movePlan{source: obj, moved: moved, oldParent: oldParent, newParent: newParent}, Accepted
}
