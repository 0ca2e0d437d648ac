package port

import "context"

// MediaLibrary persists a single existing file into the shared media
// storage area. There is no batch call; each frame is saved independently.
type MediaLibrary interface {
	SaveFrame(ctx context.Context, objectKey string, framePath string) error
}

// StorageGate verifies that a destination directory can be written to
// before an extraction is attempted, creating it if necessary.
type StorageGate interface {
	EnsureWritable(dir string) error
}
