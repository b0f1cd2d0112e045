package tree

import "strings"

const Separator = "/"

// DirPath returns p with a trailing separator, appending one only if it is missing.
func DirPath(p string) string {
	if strings.HasSuffix(p, Separator) {
		return p
	}

	return p + Separator
}

// JoinPath appends node to the directory form of root.
func JoinPath(root string, node string) string {
	return DirPath(root) + node
}

// IsDescendant reports whether nodePath lies below parentPath. A path is never its own descendant.
func IsDescendant(parentPath string, nodePath string) bool {
	return strings.HasPrefix(nodePath, parentPath) && nodePath != parentPath
}
