package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"github.com/decartgilad/decart-video-processor/internal/domain"
)

var archiveNamePattern = regexp.MustCompile(`^output_(\d+)\.mp4$`)

// maxAllocationAttempts bounds rescans when another writer takes the number
// between the directory scan and the exclusive create.
const maxAllocationAttempts = 8

// NextSequence scans dir for archive files and returns max+1, or 1 when none
// exist. A missing directory is created. Listing failures are treated as an
// empty directory.
func NextSequence(dir string) int {
	store, err := NewFileStore(dir)
	if err != nil {
		return 1
	}
	names, err := store.Names()
	if err != nil {
		return 1
	}
	return nextSequence(names)
}

func nextSequence(names []string) int {
	highest := 0
	for _, name := range names {
		if id, ok := parseArchiveName(name); ok && id > highest {
			highest = id
		}
	}
	return highest + 1
}

// IsArchiveName reports whether name follows the output_<digits>.mp4 scheme.
func IsArchiveName(name string) bool {
	_, ok := parseArchiveName(name)
	return ok
}

// parseArchiveName extracts the sequence number from output_<digits>.mp4.
func parseArchiveName(name string) (int, bool) {
	m := archiveNamePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// ArchiveEntry describes one durable artifact.
type ArchiveEntry struct {
	SequentialID int    `json:"sequential_id"`
	Name         string `json:"output_file"`
	Size         int64  `json:"bytes"`
}

// Archive owns the durable output directory. Allocating a sequence number and
// writing the file happen under one lock, so writers in this process never
// share a number.
type Archive struct {
	mu    sync.Mutex
	store *FileStore
}

func NewArchive(store *FileStore) *Archive {
	return &Archive{store: store}
}

// Dir returns the base directory of the archive.
func (a *Archive) Dir() string {
	return a.store.BasePath()
}

// Next reports the number the next Put would use.
func (a *Archive) Next() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next()
}

func (a *Archive) next() int {
	names, err := a.store.Names()
	if err != nil {
		return 1
	}
	return nextSequence(names)
}

// Put allocates the next sequence number and writes data under it.
func (a *Archive) Put(ctx context.Context, data []byte) (int, string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		id := a.next()
		name := domain.ArchiveName(id)
		if _, err := a.store.WriteNew(ctx, name, data); err != nil {
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			return 0, "", err
		}
		return id, name, nil
	}
	return 0, "", fmt.Errorf("storage: could not allocate archive name after %d attempts", maxAllocationAttempts)
}

// List returns the archive artifacts ordered by sequence number.
func (a *Archive) List() ([]ArchiveEntry, error) {
	names, err := a.store.Names()
	if err != nil {
		return nil, err
	}
	entries := make([]ArchiveEntry, 0, len(names))
	for _, name := range names {
		id, ok := parseArchiveName(name)
		if !ok {
			continue
		}
		entry := ArchiveEntry{SequentialID: id, Name: name}
		if info, err := a.store.Stat(name); err == nil {
			entry.Size = info.Size()
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].SequentialID < entries[j].SequentialID })
	return entries, nil
}

// Open returns an archive artifact for streaming. Names outside the archive
// scheme are reported as fs.ErrNotExist.
func (a *Archive) Open(name string) (*os.File, fs.FileInfo, error) {
	if !IsArchiveName(name) {
		return nil, nil, fmt.Errorf("storage: open %s: %w", name, fs.ErrNotExist)
	}
	return a.store.Open(name)
}

// Stat describes an archive artifact.
func (a *Archive) Stat(name string) (fs.FileInfo, error) {
	if !IsArchiveName(name) {
		return nil, fmt.Errorf("storage: stat %s: %w", name, fs.ErrNotExist)
	}
	return a.store.Stat(name)
}

// ReadFile returns the bytes of an archive artifact.
func (a *Archive) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if !IsArchiveName(name) {
		return nil, fmt.Errorf("storage: read %s: %w", name, fs.ErrNotExist)
	}
	return a.store.ReadFile(ctx, name)
}
