// Package repository persists the vault's key material and encrypted profile data
// as files in a single directory.
package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	apperrors "github.com/allisson/connvault/internal/errors"
)

// File names inside the vault directory.
const (
	SaltFile       = "key.salt"
	WrappedKeyFile = "key.bin.enc"
	BlobFile       = "connections.json.enc"
)

const (
	dirPerm  fs.FileMode = 0o700
	filePerm fs.FileMode = 0o600
)

// FileRepository stores the salt, the wrapped DEK and the profile blob in dir.
//
// Every write goes to a temporary file in the same directory which is synced,
// restricted to 0600 and renamed over the target, so readers never observe a
// partially written file.
type FileRepository struct {
	dir string
}

// NewFileRepository creates dir with mode 0700 if needed.
func NewFileRepository(dir string) (*FileRepository, error) {
	if dir == "" {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "vault directory is empty")
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create vault directory: %w", err)
	}
	return &FileRepository{dir: dir}, nil
}

// Dir returns the vault directory.
func (r *FileRepository) Dir() string {
	return r.dir
}

// Path returns the full path of a vault file.
func (r *FileRepository) Path(name string) string {
	return filepath.Join(r.dir, name)
}

func (r *FileRepository) ReadSalt(ctx context.Context) ([]byte, error) {
	return r.read(SaltFile)
}

func (r *FileRepository) WriteSalt(ctx context.Context, salt []byte) error {
	return r.write(SaltFile, salt)
}

func (r *FileRepository) ReadWrappedKey(ctx context.Context) ([]byte, error) {
	return r.read(WrappedKeyFile)
}

func (r *FileRepository) WriteWrappedKey(ctx context.Context, data []byte) error {
	return r.write(WrappedKeyFile, data)
}

func (r *FileRepository) ReadBlob(ctx context.Context) ([]byte, error) {
	return r.read(BlobFile)
}

func (r *FileRepository) WriteBlob(ctx context.Context, data []byte) error {
	return r.write(BlobFile, data)
}

// BlobExists reports whether the profile blob file is present.
func (r *FileRepository) BlobExists(ctx context.Context) (bool, error) {
	_, err := os.Stat(r.Path(BlobFile))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", BlobFile, err)
}

func (r *FileRepository) read(name string) ([]byte, error) {
	data, err := os.ReadFile(r.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.Wrapf(apperrors.ErrNotFound, "%s", name)
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (r *FileRepository) write(name string, data []byte) error {
	if err := writeAtomically(r.Path(name), data, filePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// writeAtomically writes data to path using temp file + fsync + rename, then
// syncs the directory so the rename survives a crash.
func writeAtomically(path string, data []byte, perm fs.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".connvault-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err = tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err = tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err = tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err = os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err = os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return syncDir(filepath.Dir(path))
}

// syncDir flushes a directory entry change, such as a rename, to disk.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to open directory: %w", err)
	}
	defer func() {
		_ = d.Close()
	}()

	if err := d.Sync(); err != nil {
		return fmt.Errorf("failed to sync directory: %w", err)
	}
	return nil
}
