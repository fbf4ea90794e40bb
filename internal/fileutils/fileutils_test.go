package fileutils_test

import (
	"os"
	"path/filepath"
	"testing"

	"fintrack/fintrack/internal/fileutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "test.txt")
	require.NoError(t, os.WriteFile(testFile, []byte("test"), 0600))

	assert.True(t, fileutils.FileExists(testFile))
	assert.False(t, fileutils.FileExists(filepath.Join(tmpDir, "nonexistent.txt")))
	// directories are not files
	assert.False(t, fileutils.FileExists(tmpDir))
}

func TestDirectoryExists(t *testing.T) {
	tmpDir := t.TempDir()

	assert.True(t, fileutils.DirectoryExists(tmpDir))
	assert.False(t, fileutils.DirectoryExists(filepath.Join(tmpDir, "nonexistent")))

	testFile := filepath.Join(tmpDir, "test.txt")
	require.NoError(t, os.WriteFile(testFile, []byte("test"), 0600))
	assert.False(t, fileutils.DirectoryExists(testFile))
}

func TestEnsureDirectoryExists(t *testing.T) {
	tmpDir := t.TempDir()

	newDir := filepath.Join(tmpDir, "new", "nested", "dir")
	require.NoError(t, fileutils.EnsureDirectoryExists(newDir))
	assert.True(t, fileutils.DirectoryExists(newDir))

	assert.NoError(t, fileutils.EnsureDirectoryExists(tmpDir))
	assert.NoError(t, fileutils.EnsureDirectoryExists("."))
}

func TestWriteFileAtomic(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "data", "transactions.csv")

	require.NoError(t, fileutils.WriteFileAtomic(target, []byte("first"), 0600))
	require.NoError(t, fileutils.WriteFileAtomic(target, []byte("second"), 0600))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// no temporary files are left behind
	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFileAtomic_TargetIsDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	assert.Error(t, fileutils.WriteFileAtomic(tmpDir, []byte("x"), 0600))
}

func TestFreeName(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "out.xlsx")

	name, err := fileutils.FreeName(target)
	require.NoError(t, err)
	assert.Equal(t, target, name)

	require.NoError(t, os.WriteFile(target, []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "out (1).xlsx"), []byte("x"), 0600))

	name, err = fileutils.FreeName(target)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "out (2).xlsx"), name)
}
