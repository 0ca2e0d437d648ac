package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pek0hara/video-frame-capture/internal/domain/port"
)

// Prober reads container metadata with ffprobe. Only the duration is needed
// to size the expected-output window.
type Prober struct {
	binPath string
}

func NewProber(binPath string) *Prober {
	if binPath == "" {
		binPath = "ffprobe"
	}
	return &Prober{binPath: binPath}
}

func (p *Prober) Probe(ctx context.Context, videoPath string) (port.Metadata, error) {
	cmd := exec.CommandContext(ctx, p.binPath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return port.Metadata{}, fmt.Errorf("ffprobe: %w", err)
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return port.Metadata{}, fmt.Errorf("parse duration: %w", err)
	}
	return port.Metadata{Duration: duration}, nil
}
