// Package fileutils provides the file operations shared by the local
// stores: atomic writes and collision-free output names.
package fileutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fintrack/fintrack/internal/models"
)

// maxSuffix bounds the search for a free "name (n).ext" filename.
const maxSuffix = 1000

// FileExists checks if a file exists and is not a directory
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirectoryExists checks if a directory exists
func DirectoryExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDirectoryExists creates a directory and its parents if needed.
func EnsureDirectoryExists(dirPath string) error {
	if dirPath == "" || dirPath == "." {
		return nil
	}
	if err := os.MkdirAll(dirPath, models.PermissionDirectory); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// WriteFileAtomic replaces filePath with data. The data goes to a temporary
// file in the same directory first and is renamed over the target, so a
// reader sees either the old or the new content.
func WriteFileAtomic(filePath string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filePath)
	if err := EnsureDirectoryExists(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filePath, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set permissions on %s: %w", filePath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", filePath, err)
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filePath, err)
	}
	return nil
}

// FreeName returns filePath if nothing exists there, otherwise the first
// "name (n).ext" sibling that is free.
func FreeName(filePath string) (string, error) {
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return filePath, nil
	}
	ext := filepath.Ext(filePath)
	stem := strings.TrimSuffix(filePath, ext)
	for i := 1; i < maxSuffix; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, i, ext)
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free filename for %s", filePath)
}
