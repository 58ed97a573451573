package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/decartgilad/decart-video-processor/internal/batch"
	"github.com/decartgilad/decart-video-processor/internal/domain"
	"github.com/decartgilad/decart-video-processor/internal/middleware"
	"github.com/decartgilad/decart-video-processor/internal/providers/decart"
)

type processVideoResponse struct {
	Success    bool   `json:"success"`
	VideoURL   string `json:"video_url"`
	OutputFile string `json:"output_file"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

type batchResult struct {
	Prompt     string `json:"prompt"`
	Success    bool   `json:"success"`
	VideoURL   string `json:"video_url,omitempty"`
	OutputFile string `json:"output_file,omitempty"`
	Error      string `json:"error,omitempty"`
}

type processCSVResponse struct {
	Success   bool          `json:"success"`
	Results   []batchResult `json:"results"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Width     int           `json:"width"`
	Height    int           `json:"height"`
}

// ProcessVideo handles a single (video, prompt) submission.
func (a *App) ProcessVideo(w http.ResponseWriter, r *http.Request) {
	if err := a.parseUpload(w, r); err != nil {
		a.fail(w, r, err)
		return
	}
	payload, err := readVideo(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	prompt := r.FormValue("prompt")
	orientation, err := readOrientation(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	req := batch.Request{
		Video:       payload,
		Orientation: orientation,
		RequestID:   middleware.RequestIDFromContext(r.Context()),
	}
	artifact, err := a.Runner.RunSingle(r.Context(), req, prompt)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	dims := orientation.Dimensions()
	a.json(w, http.StatusOK, processVideoResponse{
		Success:    true,
		VideoURL:   artifact.PreviewURL,
		OutputFile: artifact.ArchiveName,
		Width:      dims.Width,
		Height:     dims.Height,
	})
}

// ProcessCSV runs every prompt of an uploaded table against one video. Once
// the request validates, the batch runs to completion even if the client goes
// away.
func (a *App) ProcessCSV(w http.ResponseWriter, r *http.Request) {
	if err := a.parseUpload(w, r); err != nil {
		a.fail(w, r, err)
		return
	}
	table, err := openPromptTable(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	defer table.Close()
	payload, err := readVideo(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	orientation, err := readOrientation(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	prompts, err := batch.ParsePrompts(table)
	if err != nil {
		a.fail(w, r, domain.Invalid("csv_file", err))
		return
	}

	requestID := middleware.RequestIDFromContext(r.Context())
	a.Logger.Info().
		Str("request_id", requestID).
		Int("prompts", len(prompts)).
		Str("video", payload.Filename()).
		Msg("handlers: batch started")

	outcomes := a.Runner.RunBatch(context.WithoutCancel(r.Context()), batch.Request{
		Video:       payload,
		Orientation: orientation,
		RequestID:   requestID,
	}, prompts)

	results := make([]batchResult, 0, len(outcomes))
	for _, o := range outcomes {
		result := batchResult{Prompt: o.Prompt, Success: o.Succeeded()}
		if o.Succeeded() {
			result.VideoURL = o.Artifact.PreviewURL
			result.OutputFile = o.Artifact.ArchiveName
		} else {
			result.Error = o.ErrorMessage()
		}
		results = append(results, result)
	}
	succeeded, failed := batch.Summarize(outcomes)
	dims := orientation.Dimensions()
	a.json(w, http.StatusOK, processCSVResponse{
		Success:   true,
		Results:   results,
		Succeeded: succeeded,
		Failed:    failed,
		Width:     dims.Width,
		Height:    dims.Height,
	})
}

// fail writes err as a JSON error with a status matching its kind.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if decart.KindOf(err) == decart.KindTimeout {
		status = http.StatusGatewayTimeout
	}
	message := err.Error()
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		message = verr.Err.Error()
	}
	event := a.Logger.Warn()
	if status >= http.StatusInternalServerError {
		event = a.Logger.Error()
	}
	event.Err(err).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Int("status", status).
		Msg("handlers: request failed")
	a.error(w, status, message)
}
