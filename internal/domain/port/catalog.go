package port

import (
	"context"
	"time"
)

// CatalogVideo is one published recording listed by the channel catalog.
type CatalogVideo struct {
	ID        string
	Title     string
	URL       string
	CreatedAt time.Time
}

// VideoCatalog lists recordings available on a remote channel.
type VideoCatalog interface {
	UserID(ctx context.Context, login string) (string, error)
	RecentVideos(ctx context.Context, userID string) ([]CatalogVideo, error)
}

// VideoSelector yields the next video awaiting extraction. The boolean is
// false when nothing is selected, which callers treat as a silent no-op.
type VideoSelector interface {
	SelectVideo(ctx context.Context) (CatalogVideo, bool, error)
}

// VideoDownloader fetches a catalog recording into destDir and returns the
// path of the downloaded file.
type VideoDownloader interface {
	Download(ctx context.Context, videoID string, destDir string) (string, error)
}

// ProcessedLedger remembers which catalog videos have already been handled.
type ProcessedLedger interface {
	IsProcessed(ctx context.Context, videoID string) (bool, error)
	MarkProcessed(ctx context.Context, videoID string) error
}
