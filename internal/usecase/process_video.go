package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/pek0hara/video-frame-capture/internal/domain/entity"
	"github.com/pek0hara/video-frame-capture/internal/domain/port"
	"github.com/pek0hara/video-frame-capture/internal/infra/metrics"
)

// FrameExtractor is the pipeline step that turns a downloaded video into
// saved frames. Satisfied by ExtractFramesUseCase.
type FrameExtractor interface {
	Execute(ctx context.Context, req entity.ExtractionRequest, keyPrefix string) (entity.ExtractionResult, error)
}

// ProcessVideoUseCase consumes queue messages and drives one extraction job
// end to end: download the source, extract and save frames, archive the
// frame set, record the outcome, and publish a status message.
type ProcessVideoUseCase struct {
	repo      port.JobRepository
	storage   port.VideoStorage
	extractor FrameExtractor
	archiver  port.FrameArchiver
	publisher port.StatusPublisher
	dlq       port.DLQPublisher
	notifier  port.FailureNotifier
	logger    *zap.Logger
	tempDir   string
	maxRetry  int
}

type ProcessVideoConfig struct {
	TempDir    string
	MaxRetries int
}

func NewProcessVideoUseCase(
	repo port.JobRepository,
	storage port.VideoStorage,
	extractor FrameExtractor,
	archiver port.FrameArchiver,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg ProcessVideoConfig,
) *ProcessVideoUseCase {
	return &ProcessVideoUseCase{
		repo:      repo,
		storage:   storage,
		extractor: extractor,
		archiver:  archiver,
		publisher: publisher,
		dlq:       dlq,
		notifier:  notifier,
		logger:    logger,
		tempDir:   cfg.TempDir,
		maxRetry:  cfg.MaxRetries,
	}
}

func (uc *ProcessVideoUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ProcessVideoUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.FrameExtractionMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.String("job.video_key", msg.VideoKey),
	)

	log := uc.logger.With(zap.String("job_id", msg.JobID.String()), zap.String("video_key", msg.VideoKey))

	job, err := uc.repo.FindByID(ctx, msg.JobID)
	if err != nil {
		job = entity.NewJob(msg.UserID, msg.VideoKey, entity.ResolveInterval(msg.Interval), msg.FileSize, uc.maxRetry)
		job.ID = msg.JobID
		if err := uc.repo.Create(ctx, job); err != nil {
			log.Error("failed to create job record", zap.Error(err))
			return fmt.Errorf("create job: %w", err)
		}
	}

	if !job.CanRetry() {
		log.Warn("job exhausted retries, sending to DLQ")
		_ = uc.handlePermanentFailure(ctx, job, msg, rawMsg, "max retries exceeded")
		return nil
	}

	job.MarkProcessing()
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to PROCESSING", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.runPipeline(ctx, job, msg, rawMsg, log); err != nil {
		return err
	}

	metrics.JobsProcessedTotal.WithLabelValues("completed").Inc()
	metrics.JobStageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	return nil
}

func (uc *ProcessVideoUseCase) runPipeline(
	ctx context.Context,
	job *entity.Job,
	msg entity.FrameExtractionMessage,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	workDir := filepath.Join(uc.tempDir, job.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	dlStart := time.Now()
	ctxDl, spanDl := tracer.Start(ctx, "download_video")
	videoPath := filepath.Join(workDir, "input.mp4")
	if err := uc.storage.DownloadVideo(ctxDl, msg.VideoKey, videoPath); err != nil {
		spanDl.End()
		log.Error("failed to download video", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "download_video: "+err.Error(), log)
	}
	spanDl.End()
	metrics.JobStageDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	exStart := time.Now()
	ctxEx, spanEx := tracer.Start(ctx, "extract_frames")
	req := entity.ExtractionRequest{
		SourcePath:      videoPath,
		DestinationDir:  filepath.Join(workDir, "frames"),
		IntervalSeconds: job.IntervalSeconds,
	}
	keyPrefix := path.Join(job.UserID, job.ID.String())
	result, err := uc.extractor.Execute(ctxEx, req, keyPrefix)
	if err != nil {
		spanEx.End()
		if errors.Is(err, ErrExtractionBusy) {
			return uc.handleBusyDeferral(ctx, job, log)
		}
		log.Error("frame extraction failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "extract_frames: "+err.Error(), log)
	}
	spanEx.End()
	metrics.JobStageDuration.WithLabelValues("extract").Observe(time.Since(exStart).Seconds())

	if len(result.ProducedFiles) == 0 {
		log.Error("engine reported success but produced no frames")
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "extract_frames: no frames produced", log)
	}

	zipStart := time.Now()
	ctxZip, spanZip := tracer.Start(ctx, "archive_frames")
	archivePath := filepath.Join(workDir, "frames.zip")
	if err := uc.archiver.CreateArchive(ctxZip, result.ProducedFiles, archivePath); err != nil {
		spanZip.End()
		log.Error("frame archive creation failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "archive_frames: "+err.Error(), log)
	}
	spanZip.End()
	metrics.JobStageDuration.WithLabelValues("archive").Observe(time.Since(zipStart).Seconds())

	upStart := time.Now()
	ctxUp, spanUp := tracer.Start(ctx, "upload_archive")
	archiveKey := fmt.Sprintf("%s/frames_%s.zip", job.UserID, job.ID.String())
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		spanUp.End()
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "open_archive: "+err.Error(), log)
	}
	archiveStat, err := archiveFile.Stat()
	if err != nil {
		archiveFile.Close()
		spanUp.End()
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "stat_archive: "+err.Error(), log)
	}
	if err := uc.storage.UploadArchive(ctxUp, archiveKey, archiveFile, archiveStat.Size()); err != nil {
		archiveFile.Close()
		spanUp.End()
		log.Error("archive upload failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "upload_archive: "+err.Error(), log)
	}
	archiveFile.Close()
	spanUp.End()
	metrics.JobStageDuration.WithLabelValues("upload").Observe(time.Since(upStart).Seconds())

	job.MarkCompleted(archiveKey, len(result.ProducedFiles), result.VideoDuration)
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to COMPLETED", zap.Error(err))
		return fmt.Errorf("update job completed: %w", err)
	}

	uc.publishStatus(ctx, job, log)

	log.Info("job completed successfully",
		zap.Int("frame_count", len(result.ProducedFiles)),
		zap.Float64("duration_secs", result.VideoDuration),
		zap.String("archive_key", archiveKey),
	)

	return nil
}

// handleBusyDeferral returns the job to the queue when the extraction slot
// is held by another run. Contention is not a job fault: the job goes back
// to PENDING, the attempt is handed back, and no failure is recorded, so
// redeliveries can never drain the retry budget.
func (uc *ProcessVideoUseCase) handleBusyDeferral(ctx context.Context, job *entity.Job, log *zap.Logger) error {
	job.MarkDeferred()
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update deferred job", zap.Error(err))
	}

	metrics.JobsProcessedTotal.WithLabelValues("deferred").Inc()
	log.Info("extraction slot busy, deferring for redelivery")

	return fmt.Errorf("defer job %s: %w", job.ID, ErrExtractionBusy)
}

func (uc *ProcessVideoUseCase) handleRetryableFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.FrameExtractionMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	if !job.CanRetry() {
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()
	uc.publishStatus(ctx, job, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", job.Attempt, job.MaxAttempts, errMsg)
}

func (uc *ProcessVideoUseCase) handlePermanentFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.FrameExtractionMessage,
	rawMsg []byte,
	errMsg string,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, job, uc.logger)

	metrics.JobsProcessedTotal.WithLabelValues("dlq").Inc()

	if msg.UserEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UserEmail, job.ID.String(), msg.VideoKey, errMsg)
	}

	return nil
}

func (uc *ProcessVideoUseCase) publishStatus(ctx context.Context, job *entity.Job, log *zap.Logger) {
	statusMsg := entity.ExtractionStatusMessage{
		JobID:           job.ID,
		UserID:          job.UserID,
		Status:          job.Status,
		VideoKey:        job.VideoKey,
		ArchiveKey:      job.ArchiveKey,
		IntervalSeconds: job.IntervalSeconds,
		FrameCount:      job.FrameCount,
		Duration:        job.VideoDuration,
		ErrorMessage:    job.ErrorMessage,
		Attempt:         job.Attempt,
		MaxAttempts:     job.MaxAttempts,
	}
	data, _ := json.Marshal(statusMsg)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
