package minio

import (
	"context"
	"fmt"

	miniogo "github.com/minio/minio-go/v7"
)

// MediaLibrary persists confirmed frames into the shared media bucket, one
// object per call.
type MediaLibrary struct {
	client *miniogo.Client
	bucket string
}

func (m *MediaLibrary) SaveFrame(ctx context.Context, objectKey string, framePath string) error {
	_, err := m.client.FPutObject(ctx, m.bucket, objectKey, framePath, miniogo.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		return fmt.Errorf("save frame %s: %w", objectKey, err)
	}
	return nil
}
