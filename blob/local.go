package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// LocalStore keeps media in temp files; the locator is the file path.
type LocalStore struct {
	dir string
}

// NewLocalStore uses dir, or a fresh temp directory when dir is empty.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		d, err := os.MkdirTemp("", "briefcast-media-")
		if err != nil {
			return nil, fmt.Errorf("failed to create media dir: %w", err)
		}
		dir = d
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the directory holding the files.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Create(ctx context.Context, name string, data []byte, contentType string) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(s.dir, safeName(name)+"-*"+extension(contentType))
	if err != nil {
		return nil, fmt.Errorf("failed to create media file: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write media file: %w", err)
	}

	return NewHandle(path, func() error {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}), nil
}
