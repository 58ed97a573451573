package batch

import (
	"context"
	"strings"
	"time"

	"github.com/decartgilad/decart-video-processor/internal/domain"
	"github.com/decartgilad/decart-video-processor/internal/infra"
	"github.com/decartgilad/decart-video-processor/internal/providers/video"
)

// Persister stores a successful job result.
type Persister interface {
	Persist(ctx context.Context, origin domain.Origin, data []byte) (*domain.Artifact, error)
}

// Request carries the inputs shared by every job of one submission.
type Request struct {
	Video       domain.VideoPayload
	Orientation domain.Orientation
	RequestID   string
}

// Runner drives jobs one at a time against a single transformer.
type Runner struct {
	transformer video.Transformer
	persister   Persister
	logger      *infra.Logger
}

func NewRunner(transformer video.Transformer, persister Persister, logger *infra.Logger) *Runner {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Runner{transformer: transformer, persister: persister, logger: logger}
}

// RunSingle submits one prompt and returns its artifact. Blank prompts are
// rejected before any remote call.
func (r *Runner) RunSingle(ctx context.Context, req Request, prompt string) (*domain.Artifact, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, domain.Invalid("prompt", domain.ErrMissingPrompt)
	}
	if req.Video.Empty() {
		return nil, domain.Invalid("video", domain.ErrEmptyVideo)
	}
	return r.run(ctx, req, domain.OriginSingle, prompt, 0)
}

// RunBatch submits every non-blank prompt in order and returns one outcome per
// submitted prompt. A failed job never stops the remaining ones.
func (r *Runner) RunBatch(ctx context.Context, req Request, prompts []string) []domain.Outcome {
	outcomes := make([]domain.Outcome, 0, len(prompts))
	for i, raw := range prompts {
		prompt := strings.TrimSpace(raw)
		if prompt == "" {
			continue
		}
		artifact, err := r.run(ctx, req, domain.OriginBatch, prompt, i)
		outcomes = append(outcomes, domain.Outcome{Prompt: prompt, Artifact: artifact, Err: err})
	}
	succeeded, failed := Summarize(outcomes)
	r.logger.Info().
		Str("request_id", req.RequestID).
		Int("succeeded", succeeded).
		Int("failed", failed).
		Msg("batch: completed")
	return outcomes
}

func (r *Runner) run(ctx context.Context, req Request, origin domain.Origin, prompt string, index int) (*domain.Artifact, error) {
	start := time.Now()
	data, err := r.transformer.Transform(ctx, video.TransformRequest{
		Video:      req.Video,
		Prompt:     prompt,
		Dimensions: req.Orientation.Dimensions(),
		RequestID:  req.RequestID,
	})
	if err != nil {
		r.logger.Warn().
			Err(err).
			Str("request_id", req.RequestID).
			Int("prompt_index", index).
			Dur("elapsed", time.Since(start)).
			Msg("batch: job failed")
		return nil, err
	}
	artifact, err := r.persister.Persist(ctx, origin, data)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("request_id", req.RequestID).
			Int("prompt_index", index).
			Msg("batch: persist failed")
		return nil, err
	}
	r.logger.Info().
		Str("request_id", req.RequestID).
		Int("prompt_index", index).
		Str("archive", artifact.ArchiveName).
		Str("preview", artifact.PreviewName).
		Dur("elapsed", time.Since(start)).
		Msg("batch: job succeeded")
	return artifact, nil
}

// Summarize counts successful and failed outcomes.
func Summarize(outcomes []domain.Outcome) (succeeded, failed int) {
	for _, o := range outcomes {
		if o.Succeeded() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
