package port

import "context"

// FrameArchiver bundles a set of produced frames into a single archive for
// bulk export alongside the per-frame media writes.
type FrameArchiver interface {
	CreateArchive(ctx context.Context, filePaths []string, outputPath string) error
}
