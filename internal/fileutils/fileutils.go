// Package fileutils provides the small file operations shared by the
// pipeline and the dashboard.
package fileutils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"arsat/finanzas/internal/models"
)

// Stamp identifies one version of a file on disk.
type Stamp struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// Key returns a string usable as a cache key.
func (s Stamp) Key() string {
	return fmt.Sprintf("%s@%d:%d", s.Path, s.ModTime.UnixNano(), s.Size)
}

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

// EnsureDirectoryExists creates a directory if it doesn't exist
func EnsureDirectoryExists(dirPath string) error {
	if !DirectoryExists(dirPath) {
		if err := os.MkdirAll(dirPath, models.PermissionDirectory); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return nil
}

// WriteFile writes data to a file, creating any parent directories if needed
func WriteFile(filePath string, data []byte) error {
	if err := EnsureDirectoryExists(filepath.Dir(filePath)); err != nil {
		return err
	}
	if err := os.WriteFile(filePath, data, models.PermissionFile); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// StampOf returns the current stamp of a regular file.
func StampOf(filePath string) (Stamp, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return Stamp{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return Stamp{}, fmt.Errorf("not a regular file: %s", filePath)
	}
	return Stamp{Path: filePath, ModTime: info.ModTime(), Size: info.Size()}, nil
}
