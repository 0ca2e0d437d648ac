package ytdlp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Downloader fetches a Twitch recording with yt-dlp. The final container
// extension is chosen by yt-dlp, so the produced file is located by its
// video-id prefix after the run.
type Downloader struct {
	binPath string
	logger  *zap.Logger
}

func NewDownloader(binPath string, logger *zap.Logger) *Downloader {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &Downloader{binPath: binPath, logger: logger}
}

func (d *Downloader) Download(ctx context.Context, videoID string, destDir string) (string, error) {
	template := filepath.Join(destDir, videoID+".%(ext)s")

	cmd := exec.CommandContext(ctx, d.binPath,
		"-o", template,
		"--no-playlist",
		"--restrict-filenames",
		"https://www.twitch.tv/videos/"+videoID,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("yt-dlp error: %w, output: %s", err, string(output))
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", fmt.Errorf("read download dir: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), videoID) {
			downloaded := filepath.Join(destDir, entry.Name())
			d.logger.Info("video downloaded",
				zap.String("video_id", videoID),
				zap.String("path", downloaded),
			)
			return downloaded, nil
		}
	}

	return "", fmt.Errorf("yt-dlp succeeded but no file for %s found in %s", videoID, destDir)
}
