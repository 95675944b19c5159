package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileHash_ContentOnly(t *testing.T) {
	dir := t.TempDir()

	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "subdir", "b.bin")
	require.NoError(t, os.WriteFile(a, []byte("same content"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Dir(b), 0o755))
	require.NoError(t, os.WriteFile(b, []byte("same content"), 0o600))

	hashA, err := FileHash(a)
	require.NoError(t, err)
	hashB, err := FileHash(b)
	require.NoError(t, err)

	// Hash depends only on content, not on name, path or mode.
	assert.Equal(t, hashA, hashB)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), hashA)
}

func TestFileHash_ChangesWithContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))
	h1, err := FileHash(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	h2, err := FileHash(path)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestFileHash_MissingFile(t *testing.T) {
	_, err := FileHash(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestReadFileList_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	content := "/a/b.txt\n\n  \n/c/d.txt\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	paths, err := ReadFileList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a/b.txt", "/c/d.txt"}, paths)
}

func TestReadFileList_Missing(t *testing.T) {
	_, err := ReadFileList(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestWriteStream_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "out.bin")
	require.NoError(t, WriteStream(path, strings.NewReader("payload")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}
