package files

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerWriteFile(t *testing.T) {
	m := NewManager(nil)
	path := filepath.Join(t.TempDir(), "out", "response.json")

	require.NoError(t, m.WriteFile(path, []byte(`{"a":1}`)))
	assert.True(t, m.FileExists(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	require.NoError(t, m.WriteFile(path, []byte(`{}`)))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data), "existing file is replaced")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestManagerWriteWith_ErrorKeepsOriginal(t *testing.T) {
	m := NewManager(nil)
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, m.WriteFile(path, []byte("original")))

	boom := errors.New("encode failed")
	err := m.WriteWith(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestManagerEnsureDirectory(t *testing.T) {
	m := NewManager(nil)
	dir := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, m.EnsureDirectory(dir))
	assert.DirExists(t, dir)
	assert.NoError(t, m.EnsureDirectory(""))
}
