package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DefaultBackupRetention is the number of backups kept per file
const DefaultBackupRetention = 3

// backupStamp sorts lexicographically in creation order
const backupStamp = "20060102T150405.000000000"

// Backups keeps timestamped copies of a file next to it
type Backups struct {
	Keep int
}

// NewBackups creates a Backups keeping at most keep copies
func NewBackups(keep int) *Backups {
	if keep <= 0 {
		keep = DefaultBackupRetention
	}
	return &Backups{Keep: keep}
}

// Create copies path to path.backup-<stamp> and returns the copy's path
func (b *Backups) Create(path string) (string, error) {
	backupPath := fmt.Sprintf("%s.backup-%s", path, time.Now().UTC().Format(backupStamp))
	if err := copyFile(path, backupPath); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	return backupPath, nil
}

// List returns the backups of path, oldest first
func (b *Backups) List(path string) ([]string, error) {
	matches, err := filepath.Glob(path + ".backup-*")
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Prune removes all but the newest Keep backups
func (b *Backups) Prune(path string) error {
	list, err := b.List(path)
	if err != nil {
		return err
	}
	if len(list) <= b.Keep {
		return nil
	}
	for _, old := range list[:len(list)-b.Keep] {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", old, err)
		}
	}
	return nil
}

// RestoreLatest copies the newest backup over path and returns the backup used.
// The restored backup is consumed so repeated calls walk further back.
func (b *Backups) RestoreLatest(path string) (string, error) {
	list, err := b.List(path)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", fmt.Errorf("no backup files found for %s", path)
	}

	latest := list[len(list)-1]
	data, err := os.ReadFile(latest)
	if err != nil {
		return "", fmt.Errorf("failed to read backup: %w", err)
	}
	if err := AtomicWrite(path, data, false); err != nil {
		return "", fmt.Errorf("failed to restore from backup: %w", err)
	}
	if err := os.Remove(latest); err != nil {
		return latest, fmt.Errorf("restored, but failed to remove %s: %w", latest, err)
	}
	return latest, nil
}

// copyFile copies src to dst preserving the permission bits
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
