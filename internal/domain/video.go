package domain

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// VideoPayload is the uploaded source video shared by every job of a batch.
// The underlying buffer is never handed out for writing; submitters read it
// through Reader.
type VideoPayload struct {
	data      []byte
	mediaType string
	filename  string
}

// NewVideoPayload wraps data. The caller must not modify data afterwards.
func NewVideoPayload(data []byte, mediaType, filename string) VideoPayload {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		mediaType = "video/mp4"
	}
	return VideoPayload{data: data, mediaType: mediaType, filename: filename}
}

// Reader returns a fresh read-only view over the payload bytes.
func (p VideoPayload) Reader() io.Reader {
	return bytes.NewReader(p.data)
}

func (p VideoPayload) Len() int          { return len(p.data) }
func (p VideoPayload) MediaType() string { return p.mediaType }
func (p VideoPayload) Filename() string  { return p.filename }
func (p VideoPayload) Empty() bool       { return len(p.data) == 0 }

var allowedVideoExtensions = map[string]struct{}{
	"mp4":  {},
	"avi":  {},
	"mov":  {},
	"mkv":  {},
	"webm": {},
}

// AllowedVideoFile reports whether filename carries an accepted video extension.
func AllowedVideoFile(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(strings.TrimSpace(filename))), ".")
	if ext == "" {
		return false
	}
	_, ok := allowedVideoExtensions[ext]
	return ok
}

// Orientation selects the output frame layout.
type Orientation string

const (
	Landscape Orientation = "landscape"
	Portrait  Orientation = "portrait"
)

// Dimensions are output frame sizes in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ParseOrientation accepts landscape or portrait in any case. An empty value
// defaults to landscape.
func ParseOrientation(raw string) (Orientation, error) {
	switch Orientation(strings.ToLower(strings.TrimSpace(raw))) {
	case "", Landscape:
		return Landscape, nil
	case Portrait:
		return Portrait, nil
	default:
		return "", ErrInvalidOrientation
	}
}

func (o Orientation) Dimensions() Dimensions {
	if o == Portrait {
		return Dimensions{Width: 704, Height: 1280}
	}
	return Dimensions{Width: 1280, Height: 704}
}
