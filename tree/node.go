package tree

import (
	"sort"
)

type Kind string

const (
	KindDirectory Kind = "directory"
	KindFile      Kind = "file"
)

// Node is either a *Directory or a *File. The set is closed.
type Node interface {
	Kind() Kind
	Name() string
	// Path is the directory form of the parent's full path.
	Path() string
	FullPath() string
	// ContentDescription lists the file extensions found in this node, including itself.
	ContentDescription() ContentDescription
	// SetPath re-roots the node below path. With propagate, every descendant is re-rooted too.
	SetPath(path string, propagate bool)

	// Size is the number of nodes in this subtree, including the node itself.
	Size() int
	Clone() Node
	// EquivalentTo compares structure: kind, full path and, for directories, children pairwise.
	EquivalentTo(other Node) bool
	// Contains reports whether this node or a descendant has substring in its name.
	Contains(substring string) bool
	// FindNode returns the node in this subtree whose full path is targetPath, or nil.
	FindNode(targetPath string) Node

	String() string

	sealed()
}

// ContentDescription is a set of file extensions.
type ContentDescription map[string]struct{}

func (cd ContentDescription) Has(extension string) bool {
	_, ok := cd[extension]
	return ok
}

// Sorted returns the extensions in lexicographic order.
func (cd ContentDescription) Sorted() []string {
	extensions := make([]string, 0, len(cd))
	for extension := range cd {
		extensions = append(extensions, extension)
	}
	sort.Strings(extensions)

	return extensions
}

// compareNodes orders directories before files and nodes of the same kind by name.
func compareNodes(a Node, b Node) int {
	if a.Kind() == b.Kind() {
		switch {
		case a.Name() < b.Name():
			return -1
		case a.Name() > b.Name():
			return 1
		}
		return 0
	}

	if a.Kind() == KindDirectory {
		return -1
	}

	return 1
}

// Walk visits node and its descendants depth-first, parents before children.
// Returning false from fn skips the children of the visited node.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	if dir, ok := node.(*Directory); ok {
		for _, child := range dir.children {
			Walk(child, fn)
		}
	}
}
