package entity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveInterval(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"5", 5},
		{"1", 1},
		{"120", 120},
		{" 7 ", 7},
		{"", 10},
		{"abc", 10},
		{"-5", 10},
		{"0", 10},
		{"2.5", 10},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%q", tc.raw), func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveInterval(tc.raw))
		})
	}
}

func TestSamplingFilter(t *testing.T) {
	for _, n := range []int{1, 2, 10, 30, 3600} {
		req := ExtractionRequest{IntervalSeconds: n}
		assert.Equal(t, fmt.Sprintf("fps=1/%d", n), req.SamplingFilter())
	}
}

func TestOutputNaming(t *testing.T) {
	req := NewExtractionRequest("/videos/in.mp4", "/out", "")

	assert.Equal(t, "/out/image_%03d.jpg", req.OutputTemplate())

	want := []string{
		"/out/image_000.jpg",
		"/out/image_001.jpg",
		"/out/image_002.jpg",
		"/out/image_003.jpg",
		"/out/image_004.jpg",
		"/out/image_005.jpg",
		"/out/image_006.jpg",
		"/out/image_007.jpg",
		"/out/image_008.jpg",
		"/out/image_009.jpg",
	}
	for i, w := range want {
		assert.Equal(t, w, req.FramePath(i))
	}
}

func TestExpectedFrames(t *testing.T) {
	req := ExtractionRequest{IntervalSeconds: 10}

	// Unknown duration falls back to the fixed ten-candidate window.
	assert.Equal(t, FallbackCandidateWindow, req.ExpectedFrames(0))
	assert.Equal(t, FallbackCandidateWindow, req.ExpectedFrames(-1))

	assert.Equal(t, 1, req.ExpectedFrames(3))
	assert.Equal(t, 1, req.ExpectedFrames(10))
	assert.Equal(t, 2, req.ExpectedFrames(10.5))
	assert.Equal(t, 12, req.ExpectedFrames(115))

	short := ExtractionRequest{IntervalSeconds: 2}
	assert.Equal(t, 30, short.ExpectedFrames(60))
}

func TestNewExtractionRequestResolvesInterval(t *testing.T) {
	req := NewExtractionRequest("/v/in.mp4", "/out", "not-a-number")
	assert.Equal(t, DefaultIntervalSeconds, req.IntervalSeconds)

	req = NewExtractionRequest("/v/in.mp4", "/out", "42")
	assert.Equal(t, 42, req.IntervalSeconds)
}
