package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pek0hara/video-frame-capture/internal/domain/entity"
	"github.com/pek0hara/video-frame-capture/internal/domain/port"
	"github.com/pek0hara/video-frame-capture/internal/infra/metrics"
)

// PollCatalogUseCase watches a channel catalog for new recordings, downloads
// each new one, stages it in object storage, and enqueues an extraction job.
// An empty selection means nothing new was published and is a silent no-op.
type PollCatalogUseCase struct {
	selector   port.VideoSelector
	downloader port.VideoDownloader
	storage    port.VideoStorage
	publisher  port.ExtractionPublisher
	ledger     port.ProcessedLedger
	logger     *zap.Logger
	login      string
	interval   string
	tempDir    string
}

type PollCatalogConfig struct {
	Login    string
	Interval string
	TempDir  string
}

func NewPollCatalogUseCase(
	selector port.VideoSelector,
	downloader port.VideoDownloader,
	storage port.VideoStorage,
	publisher port.ExtractionPublisher,
	ledger port.ProcessedLedger,
	logger *zap.Logger,
	cfg PollCatalogConfig,
) *PollCatalogUseCase {
	return &PollCatalogUseCase{
		selector:   selector,
		downloader: downloader,
		storage:    storage,
		publisher:  publisher,
		ledger:     ledger,
		logger:     logger,
		login:      cfg.Login,
		interval:   cfg.Interval,
		tempDir:    cfg.TempDir,
	}
}

// Run polls until the context is cancelled.
func (uc *PollCatalogUseCase) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		if err := uc.PollOnce(ctx); err != nil {
			uc.logger.Error("catalog poll failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// PollOnce handles at most one new recording per call.
func (uc *PollCatalogUseCase) PollOnce(ctx context.Context) error {
	video, ok, err := uc.selector.SelectVideo(ctx)
	if err != nil {
		return fmt.Errorf("select video: %w", err)
	}
	if !ok {
		uc.logger.Debug("no new videos in catalog", zap.String("login", uc.login))
		return nil
	}

	log := uc.logger.With(zap.String("video_id", video.ID), zap.String("title", video.Title))
	log.Info("new catalog video found")
	metrics.VideosDiscoveredTotal.Inc()

	downloadDir := filepath.Join(uc.tempDir, "downloads")
	if err := os.MkdirAll(downloadDir, 0755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}

	localPath, err := uc.downloader.Download(ctx, video.ID, downloadDir)
	if err != nil {
		return fmt.Errorf("download video %s: %w", video.ID, err)
	}
	defer os.Remove(localPath)

	info, err := os.Stat(localPath)
	if err != nil {
		return fmt.Errorf("stat downloaded video: %w", err)
	}

	videoKey := path.Join("catalog", video.ID+filepath.Ext(localPath))
	if err := uc.storage.UploadVideo(ctx, videoKey, localPath); err != nil {
		return fmt.Errorf("stage video %s: %w", video.ID, err)
	}

	msg := entity.FrameExtractionMessage{
		JobID:    uuid.New(),
		UserID:   uc.login,
		VideoKey: videoKey,
		Interval: uc.interval,
		FileSize: info.Size(),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal extraction message: %w", err)
	}
	if err := uc.publisher.PublishExtraction(ctx, body); err != nil {
		return fmt.Errorf("enqueue extraction for %s: %w", video.ID, err)
	}

	// Marked at enqueue time; delivery retries own the rest of the pipeline.
	if err := uc.ledger.MarkProcessed(ctx, video.ID); err != nil {
		return fmt.Errorf("mark video processed: %w", err)
	}

	log.Info("extraction enqueued", zap.String("video_key", videoKey), zap.String("job_id", msg.JobID.String()))
	return nil
}
