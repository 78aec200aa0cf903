package media

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore keeps objects on the local filesystem, typically for
// development without object-storage credentials.
type LocalStore struct {
	BaseDir string
}

// NewLocalStore constructs a store rooted at the provided directory.
// If baseDir is empty a directory under os.TempDir() is used.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	dir := baseDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "moodscape-media")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create local media dir: %w", err)
	}
	return &LocalStore{BaseDir: dir}, nil
}

// Upload writes the incoming content under the requested key.
func (l *LocalStore) Upload(_ context.Context, input UploadInput) (UploadResult, error) {
	if input.Body == nil {
		return UploadResult{}, fmt.Errorf("upload body is required")
	}

	key := input.Key
	if key == "" {
		key = uuid.NewString() + strings.ToLower(filepath.Ext(input.Filename))
	}

	target := l.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return UploadResult{}, fmt.Errorf("create object dir: %w", err)
	}

	file, err := os.Create(target)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create object file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, input.Body); err != nil {
		os.Remove(target)
		return UploadResult{}, fmt.Errorf("write object file: %w", err)
	}

	return UploadResult{
		Key: key,
		URL: "file://" + target,
	}, nil
}

// Download reads the object at key.
func (l *LocalStore) Download(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(l.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("read object file: %w", err)
	}
	return data, nil
}

// List walks the directory tree under prefix.
func (l *LocalStore) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	root := l.path(prefix)
	var objects []ObjectInfo

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.BaseDir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		objects = append(objects, ObjectInfo{Key: key, URL: "file://" + p})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk objects: %w", err)
	}
	return objects, nil
}

// Delete removes the object at key.
func (l *LocalStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(l.path(key)); err != nil {
		if os.IsNotExist(err) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("remove object file: %w", err)
	}
	return nil
}

func (l *LocalStore) path(key string) string {
	clean := filepath.FromSlash(strings.TrimPrefix(key, "/"))
	return filepath.Join(l.BaseDir, clean)
}
