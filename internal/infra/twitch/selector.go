package twitch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pek0hara/video-frame-capture/internal/domain/port"
)

// Selector picks the oldest recent recording that is not yet in the
// processed ledger. An empty pick means nothing new was published.
type Selector struct {
	catalog port.VideoCatalog
	ledger  port.ProcessedLedger
	login   string
	userID  string
	logger  *zap.Logger
}

func NewSelector(catalog port.VideoCatalog, ledger port.ProcessedLedger, login string, logger *zap.Logger) *Selector {
	return &Selector{
		catalog: catalog,
		ledger:  ledger,
		login:   login,
		logger:  logger,
	}
}

func (s *Selector) SelectVideo(ctx context.Context) (port.CatalogVideo, bool, error) {
	if s.userID == "" {
		id, err := s.catalog.UserID(ctx, s.login)
		if err != nil {
			return port.CatalogVideo{}, false, fmt.Errorf("resolve user id for %q: %w", s.login, err)
		}
		s.userID = id
	}

	videos, err := s.catalog.RecentVideos(ctx, s.userID)
	if err != nil {
		return port.CatalogVideo{}, false, fmt.Errorf("list recent videos: %w", err)
	}

	// Listing is newest first; walk backwards so older backlog drains first.
	for i := len(videos) - 1; i >= 0; i-- {
		done, err := s.ledger.IsProcessed(ctx, videos[i].ID)
		if err != nil {
			return port.CatalogVideo{}, false, fmt.Errorf("check ledger for %s: %w", videos[i].ID, err)
		}
		if !done {
			return videos[i], true, nil
		}
	}

	s.logger.Debug("all recent videos already processed", zap.String("login", s.login), zap.Int("listed", len(videos)))
	return port.CatalogVideo{}, false, nil
}
