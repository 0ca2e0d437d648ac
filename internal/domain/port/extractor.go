package port

import (
	"context"

	"github.com/pek0hara/video-frame-capture/internal/domain/entity"
)

// FrameEngine runs one sampling command against the external
// video-processing engine. It reports only success or failure; output
// verification is the caller's job.
type FrameEngine interface {
	Extract(ctx context.Context, req entity.ExtractionRequest) error
}

// Metadata holds the subset of stream metadata the pipeline needs.
type Metadata struct {
	Duration float64
}

// MetadataProber reads metadata from a video file without decoding it.
type MetadataProber interface {
	Probe(ctx context.Context, videoPath string) (Metadata, error)
}
