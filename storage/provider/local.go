package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dreitier/treefactor/storage"
	log "github.com/sirupsen/logrus"
)

const partialSuffix = ".partial"

// LocalStore keeps one file per key below Directory. Key separators become subdirectories.
type LocalStore struct {
	Directory string
}

func NewLocalStore(directory string) (*LocalStore, error) {
	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", directory, err)
	}
	return &LocalStore{Directory: directory}, nil
}

func (c *LocalStore) pathOf(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty key")
	}
	for _, segment := range strings.Split(key, storage.KeySeparator) {
		if segment == "" || segment == "." || segment == ".." {
			return "", fmt.Errorf("illegal key %#q", key)
		}
	}
	return filepath.Join(c.Directory, filepath.FromSlash(key)), nil
}

// Save writes to a temporary file first so that readers never see a half-written document.
func (c *LocalStore) Save(_ context.Context, key string, data []byte) error {
	fileName, err := c.pathOf(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fileName), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	partial := fileName + partialSuffix
	if err := os.WriteFile(partial, data, 0o640); err != nil {
		return fmt.Errorf("failed to write %s: %w", partial, err)
	}

	if err := os.Rename(partial, fileName); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("failed to replace %s: %w", fileName, err)
	}

	log.Debugf("Saved %d bytes to %s", len(data), fileName)
	return nil
}

func (c *LocalStore) Load(_ context.Context, key string) ([]byte, error) {
	fileName, err := c.pathOf(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fileName)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file for reading: %w", err)
	}

	return data, nil
}

// Delete removes the file of key and its directory, if that became empty.
func (c *LocalStore) Delete(_ context.Context, key string) error {
	fileName, err := c.pathOf(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fileName); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", fileName, err)
	}

	if parent := filepath.Dir(fileName); parent != filepath.Clean(c.Directory) {
		// fails as long as other documents are left
		_ = os.Remove(parent)
	}

	return nil
}

func (c *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string

	err := filepath.WalkDir(c.Directory, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			log.Errorf("Failed to scan %s, %v", path, err)
			return err
		}
		if entry.IsDir() || strings.HasSuffix(entry.Name(), partialSuffix) {
			return nil
		}

		relative, err := filepath.Rel(c.Directory, path)
		if err != nil {
			return err
		}

		if key := filepath.ToSlash(relative); strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c.Directory, err)
	}

	sort.Strings(keys)
	return keys, nil
}

func (c *LocalStore) Close() error {
	return nil
}
