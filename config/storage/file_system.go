package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// AtomicWrite replaces path with data through a temp file and rename, so a
// reader sees either the old or the new content. With backup set, the current
// file is copied aside first and old copies beyond the retention are pruned.
func AtomicWrite(path string, data []byte, backup bool) error {
	backups := NewBackups(DefaultBackupRetention)
	if backup && FileExists(path) {
		if _, err := backups.Create(path); err != nil {
			return fmt.Errorf("failed to create backup file: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("failed to set permissions on temporary file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	if backup {
		// the write already succeeded
		_ = backups.Prune(path)
	}
	return nil
}
