package video

import (
	"context"

	"github.com/decartgilad/decart-video-processor/internal/domain"
)

// TransformRequest is one job: the shared source video plus a single prompt.
type TransformRequest struct {
	Video      domain.VideoPayload
	Prompt     string
	Dimensions domain.Dimensions
	RequestID  string
}

// Transformer turns a source video and prompt into raw output video bytes.
type Transformer interface {
	Transform(ctx context.Context, req TransformRequest) ([]byte, error)
}

// TransformerFunc adapts a plain function into a Transformer.
type TransformerFunc func(ctx context.Context, req TransformRequest) ([]byte, error)

func (f TransformerFunc) Transform(ctx context.Context, req TransformRequest) ([]byte, error) {
	return f(ctx, req)
}

var _ Transformer = TransformerFunc(nil)
