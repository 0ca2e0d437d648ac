package usecase

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pek0hara/video-frame-capture/internal/domain/entity"
	"github.com/pek0hara/video-frame-capture/internal/domain/port"
)

type fakeSelector struct {
	video port.CatalogVideo
	ok    bool
}

func (s *fakeSelector) SelectVideo(context.Context) (port.CatalogVideo, bool, error) {
	return s.video, s.ok, nil
}

type fakeDownloader struct {
	calls []string
}

func (d *fakeDownloader) Download(_ context.Context, videoID string, destDir string) (string, error) {
	d.calls = append(d.calls, videoID)
	p := filepath.Join(destDir, videoID+".mp4")
	return p, os.WriteFile(p, []byte("video"), 0644)
}

type stagingStorage struct {
	fakeStorage
	videoKeys []string
}

func (s *stagingStorage) UploadVideo(_ context.Context, objectKey string, _ string) error {
	s.videoKeys = append(s.videoKeys, objectKey)
	return nil
}

type recordingExtractionPublisher struct {
	messages []entity.FrameExtractionMessage
}

func (p *recordingExtractionPublisher) PublishExtraction(_ context.Context, msg []byte) error {
	var m entity.FrameExtractionMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		return err
	}
	p.messages = append(p.messages, m)
	return nil
}

type recordingLedger struct {
	marked []string
}

func (l *recordingLedger) IsProcessed(context.Context, string) (bool, error) {
	return false, nil
}

func (l *recordingLedger) MarkProcessed(_ context.Context, videoID string) error {
	l.marked = append(l.marked, videoID)
	return nil
}

func TestPollOnceEnqueuesNewVideo(t *testing.T) {
	selector := &fakeSelector{video: port.CatalogVideo{ID: "123", Title: "vod"}, ok: true}
	downloader := &fakeDownloader{}
	storage := &stagingStorage{}
	publisher := &recordingExtractionPublisher{}
	ledger := &recordingLedger{}

	uc := NewPollCatalogUseCase(selector, downloader, storage, publisher, ledger, zap.NewNop(),
		PollCatalogConfig{Login: "streamer", Interval: "10", TempDir: t.TempDir()})

	require.NoError(t, uc.PollOnce(context.Background()))

	assert.Equal(t, []string{"123"}, downloader.calls)
	assert.Equal(t, []string{"catalog/123.mp4"}, storage.videoKeys)
	assert.Equal(t, []string{"123"}, ledger.marked)

	require.Len(t, publisher.messages, 1)
	msg := publisher.messages[0]
	assert.Equal(t, "catalog/123.mp4", msg.VideoKey)
	assert.Equal(t, "streamer", msg.UserID)
	assert.Equal(t, "10", msg.Interval)
	assert.NotZero(t, msg.JobID)
}

func TestPollOnceNothingSelected(t *testing.T) {
	publisher := &recordingExtractionPublisher{}
	ledger := &recordingLedger{}

	uc := NewPollCatalogUseCase(&fakeSelector{}, &fakeDownloader{}, &stagingStorage{}, publisher, ledger, zap.NewNop(),
		PollCatalogConfig{Login: "streamer", Interval: "10", TempDir: t.TempDir()})

	require.NoError(t, uc.PollOnce(context.Background()))

	assert.Empty(t, publisher.messages)
	assert.Empty(t, ledger.marked)
}

func TestPollOnceRemovesDownloadedFile(t *testing.T) {
	selector := &fakeSelector{video: port.CatalogVideo{ID: "77"}, ok: true}
	downloader := &fakeDownloader{}
	tempDir := t.TempDir()

	uc := NewPollCatalogUseCase(selector, downloader, &stagingStorage{}, &recordingExtractionPublisher{}, &recordingLedger{}, zap.NewNop(),
		PollCatalogConfig{Login: "streamer", Interval: "10", TempDir: tempDir})

	require.NoError(t, uc.PollOnce(context.Background()))
	assert.NoFileExists(t, filepath.Join(tempDir, "downloads", "77.mp4"))
}
