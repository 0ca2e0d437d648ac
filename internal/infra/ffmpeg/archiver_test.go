package ffmpeg

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateArchive(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"image_000.jpg", "image_001.jpg"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("jpeg bytes"), 0644))
		paths = append(paths, p)
	}

	out := filepath.Join(t.TempDir(), "frames.zip")
	archiver := NewArchiver()
	require.NoError(t, archiver.CreateArchive(context.Background(), paths, out))

	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"image_000.jpg", "image_001.jpg"}, names)
}

func TestCreateArchiveMissingFrame(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frames.zip")
	archiver := NewArchiver()

	err := archiver.CreateArchive(context.Background(), []string{"/nonexistent/image_000.jpg"}, out)
	assert.Error(t, err)
}

func TestCreateArchiveCancelled(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "image_000.jpg")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	archiver := NewArchiver()
	err := archiver.CreateArchive(ctx, []string{p}, filepath.Join(t.TempDir(), "frames.zip"))
	assert.ErrorIs(t, err, context.Canceled)
}
