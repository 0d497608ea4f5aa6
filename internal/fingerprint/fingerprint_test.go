package fingerprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestPurity(t *testing.T) {
	// Identical bytes at different paths fingerprint identically.
	a := Digest([]byte("hello"))
	b := Digest([]byte("hello"))
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	c := Digest([]byte("hello!"))
	assert.NotEqual(t, a, c)
}

func TestFileMatchesInMemoryDigest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.txt")
	content := []byte("some file content\nwith two lines\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	digest, size, err := File(path)
	require.NoError(t, err)
	assert.Equal(t, Digest(content), digest)
	assert.Equal(t, int64(len(content)), size)
}

func TestFileMissing(t *testing.T) {
	_, _, err := File(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
