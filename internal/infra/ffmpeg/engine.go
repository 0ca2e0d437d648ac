package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"github.com/pek0hara/video-frame-capture/internal/domain/entity"
)

// Engine shells out to ffmpeg for frame sampling. The binary is treated as
// an opaque black box: one invocation, one exit code.
type Engine struct {
	binPath string
	logger  *zap.Logger
}

func NewEngine(binPath string, logger *zap.Logger) *Engine {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	return &Engine{binPath: binPath, logger: logger}
}

// BuildArgs translates a request into the ffmpeg argv: a sampling filter
// taking one frame every IntervalSeconds and a zero-based numbered JPEG
// output template.
func BuildArgs(req entity.ExtractionRequest) []string {
	return []string{
		"-hide_banner",
		"-i", req.SourcePath,
		"-vf", req.SamplingFilter(),
		"-start_number", "0",
		"-y",
		req.OutputTemplate(),
	}
}

func (e *Engine) Extract(ctx context.Context, req entity.ExtractionRequest) error {
	args := BuildArgs(req)
	cmd := exec.CommandContext(ctx, e.binPath, args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg error: %w, output: %s", err, string(output))
	}

	e.logger.Debug("ffmpeg run finished",
		zap.String("source", req.SourcePath),
		zap.String("filter", req.SamplingFilter()),
	)
	return nil
}
