package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/decartgilad/decart-video-processor/internal/domain"
	"github.com/decartgilad/decart-video-processor/internal/infra"
)

// PersistError reports a failed artifact write. Stage is "archive" or
// "preview"; a preview failure leaves the archive copy in place.
type PersistError struct {
	Stage       string
	ArchiveName string
	Err         error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to save %s copy: %v", e.Stage, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// ArtifactWriter writes each successful result twice: a numbered archive copy
// and a randomly named preview copy.
type ArtifactWriter struct {
	archive   *Archive
	previews  *FileStore
	urlPrefix string
	newID     func() string
	logger    *infra.Logger
}

// NewArtifactWriter wires the archive and preview stores. urlPrefix is
// prepended to preview names to build the returned locator.
func NewArtifactWriter(archive *Archive, previews *FileStore, urlPrefix string, logger *infra.Logger) *ArtifactWriter {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &ArtifactWriter{
		archive:   archive,
		previews:  previews,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		newID:     newPreviewID,
		logger:    logger,
	}
}

// Persist stores data in the archive, then as a preview named after origin.
func (w *ArtifactWriter) Persist(ctx context.Context, origin domain.Origin, data []byte) (*domain.Artifact, error) {
	id, archiveName, err := w.archive.Put(ctx, data)
	if err != nil {
		return nil, &PersistError{Stage: "archive", Err: err}
	}

	previewID := w.newID()
	previewName := domain.PreviewName(origin, previewID)
	if _, err := w.previews.Write(ctx, previewName, data); err != nil {
		w.logger.Error().
			Err(err).
			Str("archive", archiveName).
			Str("preview", previewName).
			Msg("storage: preview write failed, archive copy kept")
		return nil, &PersistError{Stage: "preview", ArchiveName: archiveName, Err: err}
	}

	return &domain.Artifact{
		SequentialID: id,
		ArchiveName:  archiveName,
		PreviewID:    previewID,
		PreviewName:  previewName,
		PreviewURL:   w.urlPrefix + "/" + previewName,
		Size:         len(data),
	}, nil
}

// newPreviewID returns 8 random hex characters.
func newPreviewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
