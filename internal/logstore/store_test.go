package logstore

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_Content(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.log")
	require.NoError(t, os.WriteFile(path, []byte("Steps: 1%\n"), 0644))

	content, err := New(path).Read()
	require.NoError(t, err)
	assert.Equal(t, "Steps: 1%\n", content)
}

func TestRead_NotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.log")

	_, err := New(path).Read()
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, KindOf(err).Transient())
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "File not found")
}

func TestRead_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.log")
	require.NoError(t, os.WriteFile(path, []byte("  \n\n"), 0644))

	_, err := New(path).Read()
	require.Error(t, err)
	assert.Equal(t, KindEmpty, KindOf(err))
	assert.True(t, KindOf(err).Transient())
	assert.Contains(t, err.Error(), "File is empty")
}

func TestRead_Failure(t *testing.T) {
	// A directory cannot be read as a file on any platform.
	dir := t.TempDir()

	_, err := New(dir).Read()
	require.Error(t, err)
	assert.Equal(t, KindReadFailed, KindOf(err))
	assert.False(t, KindOf(err).Transient())
	assert.NotContains(t, err.Error(), "File is empty")
}

func TestRead_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced here")
	}
	path := filepath.Join(t.TempDir(), "train.log")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0000))

	_, err := New(path).Read()
	assert.Equal(t, KindReadFailed, KindOf(err))
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.log")
	require.NoError(t, os.WriteFile(path, []byte("lots of log\n"), 0644))

	s := New(path)
	require.NoError(t, s.Clear())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())

	_, err = s.Read()
	assert.Equal(t, KindEmpty, KindOf(err))
}

func TestClear_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.log")
	require.NoError(t, New(path).Clear())

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestKindOf_ForeignError(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(errors.New("boom")))
	assert.Equal(t, Kind(0), KindOf(nil))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "empty", KindEmpty.String())
	assert.Equal(t, "read_failed", KindReadFailed.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
