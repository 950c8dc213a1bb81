package fileutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileExists checks if a regular file exists at the given path
func FileExists(fs afero.Fs, filePath string) bool {
	info, err := fs.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// WriteFileAtomic writes data to a temporary file next to filePath and renames
// it into place, so readers never observe a partially written file.
func WriteFileAtomic(fs afero.Fs, filePath string, data []byte, perm os.FileMode) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filePath)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	// Write the file
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := fs.Chmod(tmpName, perm); err != nil {
		slog.Debug("Could not set file mode", "path", tmpName, "error", err)
	}

	// Move it into place
	if err := fs.Rename(tmpName, filePath); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", filePath, err)
	}

	return nil
}

// WriteJSONFile marshals data with two-space indentation and writes it atomically.
func WriteJSONFile(fs afero.Fs, data any, filePath string) error {
	// Marshal data to JSON
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	slog.Debug("Writing JSON file", "filename", filePath, "bytes", len(jsonData))
	return WriteFileAtomic(fs, filePath, jsonData, 0644)
}
