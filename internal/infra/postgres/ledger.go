package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProcessedLedger records which catalog videos were already enqueued, so a
// restarted worker does not re-download the same recording.
type ProcessedLedger struct {
	pool *pgxpool.Pool
}

func NewProcessedLedger(pool *pgxpool.Pool) *ProcessedLedger {
	return &ProcessedLedger{pool: pool}
}

func (l *ProcessedLedger) IsProcessed(ctx context.Context, videoID string) (bool, error) {
	var exists bool
	err := l.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM processed_videos WHERE video_id=$1)`, videoID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check processed video: %w", err)
	}
	return exists, nil
}

func (l *ProcessedLedger) MarkProcessed(ctx context.Context, videoID string) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO processed_videos (video_id) VALUES ($1) ON CONFLICT (video_id) DO NOTHING`, videoID,
	)
	if err != nil {
		return fmt.Errorf("mark video processed: %w", err)
	}
	return nil
}
