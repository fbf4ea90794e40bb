// Package export saves a downloaded workbook to disk.
package export

import (
	"errors"
	"fmt"
	"path/filepath"

	"fintrack/fintrack/internal/api"
	"fintrack/fintrack/internal/fileutils"
	"fintrack/fintrack/internal/logging"
	"fintrack/fintrack/internal/models"
)

// Save writes dl to target. An empty target uses the download's filename
// in the working directory; a directory target keeps that filename inside
// it. Unless overwrite is set, an existing file is never replaced and a
// numbered name is chosen instead. It returns the path written.
func Save(dl *api.Download, target string, overwrite bool, logger logging.Logger) (string, error) {
	if dl == nil {
		return "", errors.New("nothing to save")
	}
	name := filepath.Base(dl.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = api.DefaultExportFilename
	}

	path := target
	switch {
	case target == "":
		path = name
	case fileutils.DirectoryExists(target):
		path = filepath.Join(target, name)
	}

	if !overwrite {
		free, err := fileutils.FreeName(path)
		if err != nil {
			return "", err
		}
		path = free
	}

	if err := fileutils.WriteFileAtomic(path, dl.Body, models.PermissionDataFile); err != nil {
		return "", fmt.Errorf("error writing export file: %w", err)
	}

	if logger != nil {
		logger.Info("Export saved",
			logging.F(logging.FieldFile, path),
			logging.F("bytes", len(dl.Body)))
	}
	return path, nil
}
