package entity

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// DefaultIntervalSeconds is substituted whenever a caller-supplied
	// interval does not parse as a positive integer.
	DefaultIntervalSeconds = 10

	// FallbackCandidateWindow is the number of output indices probed when the
	// source duration cannot be determined.
	FallbackCandidateWindow = 10

	frameBasename  = "image_"
	frameExtension = ".jpg"
)

// ExtractionRequest describes a single frame-sampling run: take one frame
// every IntervalSeconds from SourcePath and write numbered JPEGs into
// DestinationDir. Values are constructed fresh per run and never mutated.
type ExtractionRequest struct {
	SourcePath      string
	DestinationDir  string
	IntervalSeconds int
}

// NewExtractionRequest builds a request, resolving the raw interval input.
func NewExtractionRequest(sourcePath, destinationDir, rawInterval string) ExtractionRequest {
	return ExtractionRequest{
		SourcePath:      sourcePath,
		DestinationDir:  destinationDir,
		IntervalSeconds: ResolveInterval(rawInterval),
	}
}

// ResolveInterval parses a user-supplied interval. Anything that is not a
// positive integer ("", "abc", "-5", "0") resolves to the default of 10.
func ResolveInterval(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return DefaultIntervalSeconds
	}
	return n
}

// SamplingFilter returns the engine filter expression for "one frame every
// IntervalSeconds seconds".
func (r ExtractionRequest) SamplingFilter() string {
	return fmt.Sprintf("fps=1/%d", r.IntervalSeconds)
}

// OutputTemplate returns the printf-style output path handed to the engine.
// Frame indices are zero padded to width 3 and start at 0.
func (r ExtractionRequest) OutputTemplate() string {
	return filepath.Join(r.DestinationDir, frameBasename+"%03d"+frameExtension)
}

// FramePath returns the expected on-disk path of frame index i, derived
// deterministically from the destination directory.
func (r ExtractionRequest) FramePath(i int) string {
	return filepath.Join(r.DestinationDir, fmt.Sprintf("%s%03d%s", frameBasename, i, frameExtension))
}

// ExpectedFrames derives the candidate output count from the source duration.
// A non-positive duration means the probe failed and the fixed fallback
// window of 10 candidates is used instead.
func (r ExtractionRequest) ExpectedFrames(durationSeconds float64) int {
	if durationSeconds <= 0 {
		return FallbackCandidateWindow
	}
	n := int(math.Ceil(durationSeconds / float64(r.IntervalSeconds)))
	if n < 1 {
		n = 1
	}
	return n
}

// ExtractionResult reports the outcome of one run. ProducedFiles is only
// populated when Succeeded is true, in increasing frame-index order.
// VideoDuration is zero when the duration probe failed.
type ExtractionResult struct {
	Succeeded     bool
	ProducedFiles []string
	VideoDuration float64
}
