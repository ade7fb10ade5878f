package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir_CreatesDirectory(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "state", "session.db")

	got, err := EnsureParentDir(target)
	require.NoError(t, err)
	require.Equal(t, target, got)

	fi, err := os.Stat(filepath.Join(tmp, "state"))
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureParentDir_Idempotent(t *testing.T) {
	target := filepath.Join(t.TempDir(), "state", "session.db")

	first, err := EnsureParentDir(target)
	require.NoError(t, err)
	second, err := EnsureParentDir(target)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEnsureParentDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "state"), []byte("x"), 0o660))

	_, err := EnsureParentDir(filepath.Join(tmp, "state", "session.db"))
	require.Error(t, err)
}

func TestReadLimited(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("lecture 1"), 0o600))

	t.Run("within limit", func(t *testing.T) {
		data, name, err := ReadLimited(path, 100)
		require.NoError(t, err)
		require.Equal(t, "lecture 1", string(data))
		require.Equal(t, "notes.txt", name)
	})

	t.Run("no limit", func(t *testing.T) {
		data, _, err := ReadLimited(path, 0)
		require.NoError(t, err)
		require.Len(t, data, 9)
	})

	t.Run("too large", func(t *testing.T) {
		_, _, err := ReadLimited(path, 4)
		require.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("directory", func(t *testing.T) {
		_, _, err := ReadLimited(tmp, 0)
		require.Error(t, err)
	})

	t.Run("missing", func(t *testing.T) {
		_, _, err := ReadLimited(filepath.Join(tmp, "nope"), 0)
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}
