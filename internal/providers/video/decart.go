package video

import (
	"context"

	"github.com/decartgilad/decart-video-processor/internal/providers/decart"
)

// DecartTransformer submits jobs to the Decart video-to-video API. Output
// dimensions are not part of the remote contract and are not transmitted.
type DecartTransformer struct {
	client *decart.Client
}

func NewDecartTransformer(client *decart.Client) *DecartTransformer {
	return &DecartTransformer{client: client}
}

func (d *DecartTransformer) Transform(ctx context.Context, req TransformRequest) ([]byte, error) {
	return d.client.Transform(ctx, req.Video, req.Prompt)
}

var _ Transformer = (*DecartTransformer)(nil)
