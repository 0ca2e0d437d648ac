package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pek0hara/video-frame-capture/internal/domain/entity"
)

func TestBuildArgs(t *testing.T) {
	req := entity.ExtractionRequest{
		SourcePath:      "/videos/in.mp4",
		DestinationDir:  "/out",
		IntervalSeconds: 10,
	}

	args := BuildArgs(req)

	assert.Equal(t, []string{
		"-hide_banner",
		"-i", "/videos/in.mp4",
		"-vf", "fps=1/10",
		"-start_number", "0",
		"-y",
		"/out/image_%03d.jpg",
	}, args)
}

func TestBuildArgsUsesRequestInterval(t *testing.T) {
	req := entity.ExtractionRequest{
		SourcePath:      "/videos/clip.mkv",
		DestinationDir:  "/tmp/frames",
		IntervalSeconds: 2,
	}

	args := BuildArgs(req)
	assert.Contains(t, args, "fps=1/2")
	assert.Contains(t, args, "/tmp/frames/image_%03d.jpg")
}

func TestBuildArgsDeterministic(t *testing.T) {
	req := entity.NewExtractionRequest("/v/in.mp4", "/out", "15")
	assert.Equal(t, BuildArgs(req), BuildArgs(req))
}
