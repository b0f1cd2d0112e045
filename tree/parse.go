package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformed is wrapped by every parse failure.
var ErrMalformed = errors.New("malformed tree listing")

const typeReport = "report"

// listingNode is one object of a `tree -J` listing: a directory, a file or the trailing report.
type listingNode struct {
	Type        string        `json:"type"`
	Name        string        `json:"name"`
	Contents    []listingNode `json:"contents"`
	Directories int           `json:"directories"`
	Files       int           `json:"files"`
}

// Parse builds a Tree from listing JSON as printed by `tree -J`.
func Parse(data []byte) (*Tree, error) {
	t, _, err := Decode(bytes.NewReader(data))
	return t, err
}

// Decode reads a listing and returns the tree with the listing's own report, which is nil when
// the listing has none. The report is informational and not checked against the tree.
func Decode(r io.Reader) (*Tree, *Report, error) {
	var elements []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&elements); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, nil, fmt.Errorf("%w: trailing data after listing", ErrMalformed)
	}

	if len(elements) == 0 {
		return nil, nil, fmt.Errorf("%w: missing root directory", ErrMalformed)
	}

	var root listingNode
	if err := json.Unmarshal(elements[0], &root); err != nil {
		return nil, nil, fmt.Errorf("%w: root: %v", ErrMalformed, err)
	}

	if root.Type != string(KindDirectory) {
		return nil, nil, fmt.Errorf("%w: root must be a directory, got type %q", ErrMalformed, root.Type)
	}

	if root.Name == "" {
		return nil, nil, fmt.Errorf("%w: root directory has no name", ErrMalformed)
	}

	children, err := parseContents(root.Name, root.Contents)
	if err != nil {
		return nil, nil, err
	}

	return New(root.Name, children...), decodeReport(elements[1:]), nil
}

func parseContents(path string, contents []listingNode) ([]Node, error) {
	children := make([]Node, 0, len(contents))
	seen := make(map[string]struct{}, len(contents))

	for _, branch := range contents {
		child, err := parseBranch(path, branch)
		if err != nil {
			return nil, err
		}

		if _, exists := seen[child.FullPath()]; exists {
			return nil, fmt.Errorf("%w: duplicate entry %#q", ErrMalformed, child.FullPath())
		}
		seen[child.FullPath()] = struct{}{}

		children = append(children, child)
	}

	return children, nil
}

func parseBranch(path string, branch listingNode) (Node, error) {
	if err := validateName(branch.Name); err != nil {
		return nil, fmt.Errorf("%w: entry in %#q: %v", ErrMalformed, DirPath(path), err)
	}

	switch Kind(branch.Type) {
	case KindDirectory:
		children, err := parseContents(JoinPath(path, branch.Name), branch.Contents)
		if err != nil {
			return nil, err
		}
		return NewDirectory(path, branch.Name, children...), nil
	case KindFile:
		return NewFile(path, branch.Name), nil
	}

	return nil, fmt.Errorf("%w: unknown type %q for %#q", ErrMalformed, branch.Type, JoinPath(path, branch.Name))
}

// validateName rejects names that would not form a single path segment.
func validateName(name string) error {
	if name == "" {
		return errors.New("empty name")
	}

	if strings.Contains(name, Separator) {
		return fmt.Errorf("name %q contains %q", name, Separator)
	}

	return nil
}

func decodeReport(elements []json.RawMessage) *Report {
	for _, element := range elements {
		var node listingNode
		if err := json.Unmarshal(element, &node); err != nil || node.Type != typeReport {
			continue
		}

		return &Report{Directories: node.Directories, Files: node.Files}
	}

	return nil
}

func (t *Tree) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}

	*t = *parsed

	return nil
}
