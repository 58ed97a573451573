package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/decartgilad/decart-video-processor/internal/storage"
	"github.com/decartgilad/decart-video-processor/pkg/zip"
)

const maxBundleFiles = 50

// ServePreview streams a preview artifact.
func (a *App) ServePreview(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	f, info, err := a.Previews.Open(name)
	a.serveFile(w, r, f, info, err)
}

// ServeArchive streams a numbered archive artifact.
func (a *App) ServeArchive(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	f, info, err := a.Archive.Open(name)
	a.serveFile(w, r, f, info, err)
}

func (a *App) serveFile(w http.ResponseWriter, r *http.Request, f *os.File, info fs.FileInfo, err error) {
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			a.Logger.Warn().Err(err).Msg("handlers: open artifact")
		}
		a.error(w, http.StatusNotFound, "file not found")
		return
	}
	defer f.Close()
	if strings.HasSuffix(strings.ToLower(info.Name()), ".mp4") {
		w.Header().Set("Content-Type", "video/mp4")
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// ListArchive returns the numbered artifacts in sequence order.
func (a *App) ListArchive(w http.ResponseWriter, r *http.Request) {
	entries, err := a.Archive.List()
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: list archive")
		a.error(w, http.StatusInternalServerError, "failed to list output videos")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"items": entries,
		"next":  a.Archive.Next(),
	})
}

// ArchiveBundle zips the archive artifacts named in the files query parameter.
func (a *App) ArchiveBundle(w http.ResponseWriter, r *http.Request) {
	var names []string
	seen := map[string]bool{}
	for _, raw := range r.URL.Query()["files"] {
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" || seen[name] {
				continue
			}
			if !storage.IsArchiveName(name) {
				a.error(w, http.StatusBadRequest, "invalid output file name: "+name)
				return
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		a.error(w, http.StatusBadRequest, "files query parameter is required")
		return
	}
	if len(names) > maxBundleFiles {
		a.error(w, http.StatusBadRequest, "too many files requested")
		return
	}

	assets := make([]zip.Asset, 0, len(names))
	for _, name := range names {
		data, err := a.Archive.ReadFile(r.Context(), name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				a.error(w, http.StatusNotFound, "file not found: "+name)
				return
			}
			a.Logger.Error().Err(err).Str("file", name).Msg("handlers: read archive artifact")
			a.error(w, http.StatusInternalServerError, "failed to read output video")
			return
		}
		asset := zip.Asset{Filename: name, Data: data}
		if info, err := a.Archive.Stat(name); err == nil {
			asset.Modified = info.ModTime()
		}
		assets = append(assets, asset)
	}
	bundle, err := zip.ArchiveAssets(assets)
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: build bundle")
		a.error(w, http.StatusInternalServerError, "failed to build bundle")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="output_videos.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(bundle)
}
