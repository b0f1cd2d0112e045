package storage

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("document not found")

const (
	InitialTreeDocument = "initial_tree.json"
	EditedTreeDocument  = "edited_tree.json"
	KeySeparator        = "/"
)

// Store persists opaque documents by key. Keys are built with DocumentKey.
type Store interface {
	Save(ctx context.Context, key string, data []byte) error
	// Load returns ErrNotFound if nothing is stored under key.
	Load(ctx context.Context, key string) ([]byte, error)
	// Delete of a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns every key starting with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// DocumentKey returns the key of a session document, e.g. "<session>/edited_tree.json".
func DocumentKey(session string, document string) string {
	return SessionPrefix(session) + document
}

func SessionPrefix(session string) string {
	return SafeKey(session) + KeySeparator
}

// SplitKey is the inverse of DocumentKey.
func SplitKey(key string) (session string, document string, ok bool) {
	escaped, document, found := strings.Cut(key, KeySeparator)
	if !found || document == "" || strings.Contains(document, KeySeparator) {
		return "", "", false
	}

	session, err := UnescapeKey(escaped)
	if err != nil {
		return "", "", false
	}

	return session, document, true
}

// Sessions returns the distinct session names found in keys, in order of first occurrence.
func Sessions(keys []string) []string {
	seen := make(map[string]struct{})
	var sessions []string

	for _, key := range keys {
		session, _, ok := SplitKey(key)
		if !ok {
			continue
		}
		if _, exists := seen[session]; exists {
			continue
		}
		seen[session] = struct{}{}
		sessions = append(sessions, session)
	}

	return sessions
}
