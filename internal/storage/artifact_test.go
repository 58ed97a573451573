package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/decartgilad/decart-video-processor/internal/domain"
)

func newTestWriter(t *testing.T) (*ArtifactWriter, string, string) {
	t.Helper()
	root := t.TempDir()
	archiveDir := filepath.Join(root, "output_videos")
	previewDir := filepath.Join(root, "static", "videos")
	archiveStore, err := NewFileStore(archiveDir)
	if err != nil {
		t.Fatalf("archive store: %v", err)
	}
	previewStore, err := NewFileStore(previewDir)
	if err != nil {
		t.Fatalf("preview store: %v", err)
	}
	return NewArtifactWriter(NewArchive(archiveStore), previewStore, "/static/videos/", nil), archiveDir, previewDir
}

func TestPersistWritesIdenticalCopies(t *testing.T) {
	writer, archiveDir, previewDir := newTestWriter(t)
	data := []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p'}

	artifact, err := writer.Persist(context.Background(), domain.OriginBatch, data)
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if artifact.SequentialID != 1 || artifact.ArchiveName != "output_001.mp4" {
		t.Fatalf("archive = %d %q, want 1 output_001.mp4", artifact.SequentialID, artifact.ArchiveName)
	}
	if !regexp.MustCompile(`^[0-9a-f]{8}$`).MatchString(artifact.PreviewID) {
		t.Fatalf("preview id %q is not 8 hex characters", artifact.PreviewID)
	}
	if artifact.PreviewName != "batch_"+artifact.PreviewID+".mp4" {
		t.Fatalf("preview name = %q", artifact.PreviewName)
	}
	if artifact.PreviewURL != "/static/videos/"+artifact.PreviewName {
		t.Fatalf("preview url = %q", artifact.PreviewURL)
	}

	archived, err := os.ReadFile(filepath.Join(archiveDir, artifact.ArchiveName))
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	preview, err := os.ReadFile(filepath.Join(previewDir, artifact.PreviewName))
	if err != nil {
		t.Fatalf("read preview: %v", err)
	}
	if !bytes.Equal(archived, preview) || !bytes.Equal(archived, data) {
		t.Fatalf("archive and preview copies differ")
	}
}

func TestPersistPreviewFailureKeepsArchive(t *testing.T) {
	writer, archiveDir, previewDir := newTestWriter(t)
	if err := os.RemoveAll(previewDir); err != nil {
		t.Fatalf("remove preview dir: %v", err)
	}
	// A regular file where the preview directory should be makes the write fail.
	if err := os.WriteFile(previewDir, []byte("blocker"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	_, err := writer.Persist(context.Background(), domain.OriginSingle, []byte("video"))
	var perr *PersistError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistError, got %v", err)
	}
	if perr.Stage != "preview" || perr.ArchiveName != "output_001.mp4" {
		t.Fatalf("stage=%q archive=%q", perr.Stage, perr.ArchiveName)
	}
	if _, err := os.Stat(filepath.Join(archiveDir, "output_001.mp4")); err != nil {
		t.Fatalf("archive copy should remain: %v", err)
	}
}

func TestPersistUsesOriginPrefix(t *testing.T) {
	writer, _, _ := newTestWriter(t)
	writer.newID = func() string { return "0badc0de" }

	artifact, err := writer.Persist(context.Background(), domain.OriginSingle, []byte("video"))
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if artifact.PreviewName != "processed_0badc0de.mp4" {
		t.Fatalf("preview name = %q, want processed_0badc0de.mp4", artifact.PreviewName)
	}
}
