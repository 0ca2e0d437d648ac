package fsgate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureWritableCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames", "job-1")

	require.NoError(t, New().EnsureWritable(dir))
	assert.DirExists(t, dir)
}

func TestEnsureWritableLeavesNoProbe(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, New().EnsureWritable(dir))
	assert.NoFileExists(t, filepath.Join(dir, ".write-probe"))
}
