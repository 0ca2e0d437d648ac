package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/pek0hara/video-frame-capture/internal/domain/entity"
	"github.com/pek0hara/video-frame-capture/internal/domain/port"
	"github.com/pek0hara/video-frame-capture/internal/infra/metrics"
)

// Typed outcomes of the extraction pipeline, matchable with errors.Is.
var (
	ErrExtractionBusy     = errors.New("an extraction is already in flight")
	ErrEmptyDestination   = errors.New("destination directory is empty")
	ErrPermissionDenied   = errors.New("destination directory is not writable")
	ErrEngineFailed       = errors.New("frame engine failed")
	ErrSelectionCancelled = errors.New("no video selected")
)

// ExtractFramesUseCase runs the linear request -> await -> verify -> forward
// pipeline: one engine invocation, sequential existence checks over the
// expected output indices, and one media-library handoff per confirmed file.
type ExtractFramesUseCase struct {
	engine port.FrameEngine
	prober port.MetadataProber
	media  port.MediaLibrary
	gate   port.StorageGate
	logger *zap.Logger
	busy   atomic.Bool
}

func NewExtractFramesUseCase(
	engine port.FrameEngine,
	prober port.MetadataProber,
	media port.MediaLibrary,
	gate port.StorageGate,
	logger *zap.Logger,
) *ExtractFramesUseCase {
	return &ExtractFramesUseCase{
		engine: engine,
		prober: prober,
		media:  media,
		gate:   gate,
		logger: logger,
	}
}

// Execute performs one extraction. Produced frames are saved to the media
// library under keyPrefix, one at a time, in increasing frame-index order.
// Only one extraction may be in flight at a time; concurrent callers get
// ErrExtractionBusy and are expected to retry or give up.
func (uc *ExtractFramesUseCase) Execute(ctx context.Context, req entity.ExtractionRequest, keyPrefix string) (entity.ExtractionResult, error) {
	if !uc.busy.CompareAndSwap(false, true) {
		return entity.ExtractionResult{}, ErrExtractionBusy
	}
	defer uc.busy.Store(false)

	if strings.TrimSpace(req.DestinationDir) == "" {
		return entity.ExtractionResult{}, ErrEmptyDestination
	}
	if err := uc.gate.EnsureWritable(req.DestinationDir); err != nil {
		return entity.ExtractionResult{}, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ExtractFramesUseCase.Execute")
	defer span.End()

	log := uc.logger.With(
		zap.String("source", req.SourcePath),
		zap.String("destination", req.DestinationDir),
		zap.Int("interval_seconds", req.IntervalSeconds),
	)

	expected := entity.FallbackCandidateWindow
	var duration float64
	meta, err := uc.prober.Probe(ctx, req.SourcePath)
	if err != nil {
		log.Warn("could not probe video duration, using fixed candidate window", zap.Error(err))
	} else {
		duration = meta.Duration
		expected = req.ExpectedFrames(meta.Duration)
	}

	if err := uc.engine.Extract(ctx, req); err != nil {
		metrics.ExtractionsTotal.WithLabelValues("engine_failed").Inc()
		return entity.ExtractionResult{}, fmt.Errorf("%w: %v", ErrEngineFailed, err)
	}

	result := entity.ExtractionResult{Succeeded: true, VideoDuration: duration}
	for i := 0; i < expected; i++ {
		framePath := req.FramePath(i)
		if _, err := os.Stat(framePath); err != nil {
			continue
		}
		objectKey := path.Join(keyPrefix, filepath.Base(framePath))
		if err := uc.media.SaveFrame(ctx, objectKey, framePath); err != nil {
			return result, fmt.Errorf("save frame %s: %w", framePath, err)
		}
		result.ProducedFiles = append(result.ProducedFiles, framePath)
	}

	metrics.ExtractionsTotal.WithLabelValues("succeeded").Inc()
	metrics.FramesSavedTotal.Add(float64(len(result.ProducedFiles)))

	log.Info("frames extracted and saved",
		zap.Int("expected", expected),
		zap.Int("produced", len(result.ProducedFiles)),
		zap.Float64("video_duration", duration),
	)

	return result, nil
}
