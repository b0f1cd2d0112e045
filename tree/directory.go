package tree

import (
	"fmt"
	"sort"
	"strings"
)

type Directory struct {
	name               string
	path               string
	fullPath           string
	children           []Node
	contentDescription ContentDescription
}

// NewDirectory creates a directory named name inside the directory at path.
// The children must already be rooted at the new directory's full path; they are not re-pathed.
func NewDirectory(path string, name string, children ...Node) *Directory {
	d := &Directory{name: name}
	d.SetPath(path, false)
	d.setChildren(children)

	return d
}

func (d *Directory) sealed() {}

func (d *Directory) Kind() Kind {
	return KindDirectory
}

func (d *Directory) Name() string {
	return d.name
}

func (d *Directory) Path() string {
	return d.path
}

func (d *Directory) FullPath() string {
	return d.fullPath
}

// Children returns the sorted children. The slice must not be modified by the caller.
func (d *Directory) Children() []Node {
	return d.children
}

func (d *Directory) ContentDescription() ContentDescription {
	return d.contentDescription
}

func (d *Directory) SetPath(path string, propagate bool) {
	d.path = DirPath(path)
	d.fullPath = DirPath(JoinPath(path, d.name))

	if !propagate {
		return
	}

	for _, child := range d.children {
		child.SetPath(d.fullPath, true)
	}
}

// AddChild re-roots node below this directory and inserts it. Name collisions are not checked here.
func (d *Directory) AddChild(node Node) {
	node.SetPath(d.fullPath, true)
	d.children = append(d.children, node)
	d.onChildrenUpdated()
}

// RemoveChild drops every child sharing child's full path. Unknown children are ignored.
func (d *Directory) RemoveChild(child Node) {
	remaining := make([]Node, 0, len(d.children))
	for _, it := range d.children {
		if it.FullPath() != child.FullPath() {
			remaining = append(remaining, it)
		}
	}

	d.setChildren(remaining)
}

func (d *Directory) IsDescendantOf(other *Directory) bool {
	return IsDescendant(other.fullPath, d.fullPath)
}

func (d *Directory) Size() int {
	size := 1
	for _, child := range d.children {
		size += child.Size()
	}

	return size
}

func (d *Directory) Clone() Node {
	return d.cloneDirectory()
}

func (d *Directory) cloneDirectory() *Directory {
	children := make([]Node, 0, len(d.children))
	for _, child := range d.children {
		children = append(children, child.Clone())
	}

	return NewDirectory(d.path, d.name, children...)
}

func (d *Directory) EquivalentTo(other Node) bool {
	o, ok := other.(*Directory)
	if !ok || o == nil {
		return false
	}

	if d.fullPath != o.fullPath || len(d.children) != len(o.children) {
		return false
	}

	for i, child := range d.children {
		if !child.EquivalentTo(o.children[i]) {
			return false
		}
	}

	return true
}

func (d *Directory) Contains(substring string) bool {
	if strings.Contains(d.name, substring) {
		return true
	}

	for _, child := range d.children {
		if child.Contains(substring) {
			return true
		}
	}

	return false
}

func (d *Directory) FindNode(targetPath string) Node {
	if d.fullPath == targetPath {
		return d
	}

	for _, child := range d.children {
		if result := child.FindNode(targetPath); result != nil {
			return result
		}
	}

	return nil
}

// child returns the direct child at fullPath, or nil.
func (d *Directory) child(fullPath string) Node {
	for _, it := range d.children {
		if it.FullPath() == fullPath {
			return it
		}
	}

	return nil
}

func (d *Directory) String() string {
	return d.fullPath
}

// PrettyString renders the subtree as indented text, one node per line.
func (d *Directory) PrettyString() string {
	var b strings.Builder
	d.writePretty(&b, "")

	return b.String()
}

func (d *Directory) writePretty(b *strings.Builder, indent string) {
	fmt.Fprintf(b, "%s%s (%d)", indent, d.name, len(d.children))

	for _, child := range d.children {
		b.WriteString("\n")
		switch it := child.(type) {
		case *Directory:
			it.writePretty(b, indent+"  ")
		case *File:
			b.WriteString(indent + "  ")
			b.WriteString(it.name)
		}
	}
}

func (d *Directory) setChildren(children []Node) {
	d.children = append([]Node(nil), children...)
	d.onChildrenUpdated()
}

// onChildrenUpdated restores the child ordering and the aggregated content description.
// Every mutation of the child list goes through here.
func (d *Directory) onChildrenUpdated() {
	sort.SliceStable(d.children, func(i, j int) bool {
		return compareNodes(d.children[i], d.children[j]) < 0
	})

	d.updateContentDescription()
}

func (d *Directory) updateContentDescription() {
	d.contentDescription = ContentDescription{}
	for _, child := range d.children {
		for extension := range child.ContentDescription() {
			d.contentDescription[extension] = struct{}{}
		}
	}
}

// refreshAlong recomputes the content description of every directory between d and the
// directory at fullPath, deepest first.
func (d *Directory) refreshAlong(fullPath string) {
	for _, child := range d.children {
		if dir, ok := child.(*Directory); ok && (dir.fullPath == fullPath || IsDescendant(dir.fullPath, fullPath)) {
			dir.refreshAlong(fullPath)
			break
		}
	}

	d.updateContentDescription()
}
