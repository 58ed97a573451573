package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore persists artifacts onto the local filesystem under a single root
// directory.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath, creating it when absent.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Write persists the provided bytes at the given relative key, replacing any
// existing file, and returns the canonicalized storage key.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	return s.write(ctx, key, data, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
}

// WriteNew behaves like Write but fails with an error wrapping fs.ErrExist
// when the key is already taken.
func (s *FileStore) WriteNew(ctx context.Context, key string, data []byte) (string, error) {
	return s.write(ctx, key, data, os.O_WRONLY|os.O_CREATE|os.O_EXCL)
}

func (s *FileStore) write(ctx context.Context, key string, data []byte, flag int) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, fullPath, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	f, err := os.OpenFile(fullPath, flag, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: open %s: %w", cleanKey, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("storage: write %s: %w", cleanKey, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("storage: close %s: %w", cleanKey, err)
	}
	return cleanKey, nil
}

// ReadFile returns the contents stored at key.
func (s *FileStore) ReadFile(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleanKey, fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", cleanKey, err)
	}
	return data, nil
}

// Open returns the file stored at key for streaming. Directories are reported
// as fs.ErrNotExist.
func (s *FileStore) Open(key string) (*os.File, fs.FileInfo, error) {
	cleanKey, fullPath, err := s.resolve(key)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, nil, fmt.Errorf("storage: open %s: %w", cleanKey, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("storage: stat %s: %w", cleanKey, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, nil, fmt.Errorf("storage: open %s: %w", cleanKey, fs.ErrNotExist)
	}
	return f, info, nil
}

// Stat describes the file stored at key.
func (s *FileStore) Stat(key string) (fs.FileInfo, error) {
	cleanKey, fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("storage: stat %s: %w", cleanKey, err)
	}
	return info, nil
}

// Names lists the regular files directly under the root, sorted. A missing
// root is recreated and reported as empty.
func (s *FileStore) Names() ([]string, error) {
	if s == nil {
		return nil, errors.New("storage: no store configured")
	}
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if mkErr := os.MkdirAll(s.basePath, 0o755); mkErr != nil {
				return nil, fmt.Errorf("storage: ensure base path: %w", mkErr)
			}
			return []string{}, nil
		}
		return nil, fmt.Errorf("storage: list %s: %w", s.basePath, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileStore) resolve(key string) (string, string, error) {
	if s == nil {
		return "", "", errors.New("storage: no store configured")
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", "", err
	}
	return cleanKey, filepath.Join(s.basePath, filepath.FromSlash(cleanKey)), nil
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
