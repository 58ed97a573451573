package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/decartgilad/decart-video-processor/internal/domain"
)

const multipartMemory = 32 << 20

// parseUpload bounds the request body and parses its multipart form.
func (a *App) parseUpload(w http.ResponseWriter, r *http.Request) error {
	if a.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.Invalid("", domain.ErrUploadTooLarge)
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return domain.Invalid("video", domain.ErrMissingVideo)
		}
		return fmt.Errorf("parse upload: %w", err)
	}
	return nil
}

// readVideo validates and loads the uploaded video file.
func readVideo(r *http.Request) (domain.VideoPayload, error) {
	file, header, err := r.FormFile("video")
	if err != nil {
		return domain.VideoPayload{}, domain.Invalid("video", domain.ErrMissingVideo)
	}
	defer file.Close()
	if strings.TrimSpace(header.Filename) == "" {
		return domain.VideoPayload{}, domain.Invalid("video", domain.ErrEmptyVideoName)
	}
	if !domain.AllowedVideoFile(header.Filename) {
		return domain.VideoPayload{}, domain.Invalid("video", domain.ErrInvalidFileType)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return domain.VideoPayload{}, fmt.Errorf("read video: %w", err)
	}
	if len(data) == 0 {
		return domain.VideoPayload{}, domain.Invalid("video", domain.ErrEmptyVideo)
	}
	return domain.NewVideoPayload(data, header.Header.Get("Content-Type"), header.Filename), nil
}

// openPromptTable returns the uploaded prompt table.
func openPromptTable(r *http.Request) (multipart.File, error) {
	file, header, err := r.FormFile("csv_file")
	if err != nil {
		return nil, domain.Invalid("csv_file", domain.ErrMissingPromptTable)
	}
	if strings.TrimSpace(header.Filename) == "" {
		file.Close()
		return nil, domain.Invalid("csv_file", domain.ErrEmptyPromptTableName)
	}
	return file, nil
}

func readOrientation(r *http.Request) (domain.Orientation, error) {
	orientation, err := domain.ParseOrientation(r.FormValue("orientation"))
	if err != nil {
		return "", domain.Invalid("orientation", err)
	}
	return orientation, nil
}

// statusFor maps request validation failures onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case domain.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
