package tree

import "strings"

type File struct {
	name               string
	path               string
	fullPath           string
	extension          string
	contentDescription ContentDescription
}

// NewFile creates a file named name inside the directory at path.
func NewFile(path string, name string) *File {
	extension := ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		extension = name[i+1:]
	}

	f := &File{
		name:               name,
		extension:          extension,
		contentDescription: ContentDescription{extension: {}},
	}
	f.SetPath(path, false)

	return f
}

func (f *File) sealed() {}

func (f *File) Kind() Kind {
	return KindFile
}

func (f *File) Name() string {
	return f.name
}

func (f *File) Path() string {
	return f.path
}

func (f *File) FullPath() string {
	return f.fullPath
}

// Extension is the part of the name after the last dot, empty if the name has none.
func (f *File) Extension() string {
	return f.extension
}

func (f *File) ContentDescription() ContentDescription {
	return f.contentDescription
}

func (f *File) SetPath(path string, _ bool) {
	f.path = DirPath(path)
	f.fullPath = JoinPath(path, f.name)
}

func (f *File) Size() int {
	return 1
}

func (f *File) Clone() Node {
	return NewFile(f.path, f.name)
}

func (f *File) EquivalentTo(other Node) bool {
	o, ok := other.(*File)
	return ok && o != nil && f.fullPath == o.fullPath
}

func (f *File) Contains(substring string) bool {
	return strings.Contains(f.name, substring)
}

func (f *File) FindNode(targetPath string) Node {
	if f.fullPath == targetPath {
		return f
	}

	return nil
}

func (f *File) String() string {
	return f.fullPath
}
