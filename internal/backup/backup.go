// Package backup snapshots the vault directory tree before a run is
// allowed to mutate any note.
package backup

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/gebo/internal/apperr"
	"github.com/starford/gebo/internal/models"
)

// timestampLayout names snapshot directories, e.g. vault-backup-20260829-154210.
const timestampLayout = "20060102-150405"

// Dir returns the snapshot directory for a vault root at the given
// time. When destDir is empty the snapshot is a sibling of the root.
func Dir(vaultRoot, destDir string, now time.Time) string {
	name := filepath.Base(vaultRoot) + "-backup-" + now.Format(timestampLayout)
	if destDir == "" {
		destDir = filepath.Dir(vaultRoot)
	}
	return filepath.Join(destDir, name)
}

// Snapshot copies the whole vault tree into a fresh timestamped
// directory and returns its description. Any failure removes the
// partial copy and reports apperr.ErrBackup: the caller must abort
// before touching a single note.
func Snapshot(vaultRoot, destDir string, now time.Time) (*models.Snapshot, error) {
	dst := Dir(vaultRoot, destDir, now)
	if _, err := os.Stat(dst); err == nil {
		return nil, fmt.Errorf("backup: destination already exists: %s: %w", dst, apperr.ErrBackup)
	}

	files, err := copyTree(vaultRoot, dst)
	if err != nil {
		_ = os.RemoveAll(dst)
		return nil, fmt.Errorf("backup: %v: %w", err, apperr.ErrBackup)
	}
	return &models.Snapshot{Path: dst, Files: files}, nil
}

// copyTree mirrors src into dst, returning the number of files copied.
func copyTree(src, dst string) (int, error) {
	files := 0
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if err := copyFile(p, target, info.Mode().Perm()); err != nil {
			return err
		}
		files++
		return nil
	})
	return files, err
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
