package ffmpeg

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Archiver bundles produced frames into a single zip for bulk export. Frame
// files keep their numbered basenames inside the archive.
type Archiver struct{}

func NewArchiver() *Archiver {
	return &Archiver{}
}

func (a *Archiver) CreateArchive(ctx context.Context, filePaths []string, outputPath string) error {
	archive, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}
	defer archive.Close()

	zw := zip.NewWriter(archive)
	defer zw.Close()

	for _, fp := range filePaths {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := addFrame(zw, fp); err != nil {
			return fmt.Errorf("add %s to archive: %w", fp, err)
		}
	}

	return nil
}

func addFrame(zw *zip.Writer, framePath string) error {
	frame, err := os.Open(framePath)
	if err != nil {
		return err
	}
	defer frame.Close()

	info, err := frame.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.Base(framePath)
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(w, frame)
	return err
}
