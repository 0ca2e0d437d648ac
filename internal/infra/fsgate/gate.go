package fsgate

import (
	"fmt"
	"os"
	"path/filepath"
)

// Gate answers the "may I write here" question before an extraction starts,
// creating the destination directory when it does not exist yet.
type Gate struct{}

func New() *Gate {
	return &Gate{}
}

func (g *Gate) EnsureWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create destination %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".write-probe")
	f, err := os.Create(probe)
	if err != nil {
		return fmt.Errorf("destination %s not writable: %w", dir, err)
	}
	f.Close()
	return os.Remove(probe)
}
