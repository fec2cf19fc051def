// Package backup keeps timestamped copies of the encrypted profile blob in a
// gocloud.dev bucket (a local directory by default).
//
// Backups are the vault's own encrypted snapshots, so they can only be restored
// into the vault that produced them.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"

	apperrors "github.com/allisson/connvault/internal/errors"
)

const (
	namePrefix = "connections_backup_"
	nameSuffix = ".enc"
	timeLayout = "20060102_150405"
)

var nameRegex = regexp.MustCompile(`^connections_backup_\d{8}_\d{6}(_\d+)?\.enc$`)

var (
	// ErrBackupNotFound indicates the named backup does not exist.
	ErrBackupNotFound = apperrors.Wrap(apperrors.ErrNotFound, "backup not found")

	// ErrInvalidBackupName indicates a name that could not have been produced by Create.
	ErrInvalidBackupName = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid backup name")
)

// SnapshotSource is the part of an unlocked vault that backups need.
type SnapshotSource interface {
	ExportSnapshot(ctx context.Context) ([]byte, error)
	ImportSnapshot(ctx context.Context, blob []byte) error
}

// Backup describes a stored backup.
type Backup struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// UseCase creates, lists and restores backups.
type UseCase interface {
	// Create stores the vault's current snapshot and returns the backup name.
	Create(ctx context.Context, vault SnapshotSource) (string, error)

	// List returns the stored backups, newest first.
	List(ctx context.Context) ([]Backup, error)

	// Restore replaces the vault's profiles with the named backup.
	Restore(ctx context.Context, vault SnapshotSource, name string) error

	// Close releases the bucket.
	Close() error
}

// Store implements UseCase on a blob.Bucket.
type Store struct {
	bucket *blob.Bucket
	now    func() time.Time
	logger *slog.Logger
}

// OpenBucket opens location as a bucket. A gocloud URL (file://, mem://, s3://
// with the driver linked in) is passed to blob.OpenBucket; anything else is
// treated as a local directory and created with mode 0700.
func OpenBucket(ctx context.Context, location string) (*blob.Bucket, error) {
	if strings.Contains(location, "://") {
		bucket, err := blob.OpenBucket(ctx, location)
		if err != nil {
			return nil, fmt.Errorf("failed to open backup bucket: %w", err)
		}
		return bucket, nil
	}

	if err := os.MkdirAll(location, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	bucket, err := fileblob.OpenBucket(location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup directory: %w", err)
	}
	return bucket, nil
}

// NewStore creates a Store. It takes ownership of bucket.
func NewStore(bucket *blob.Bucket, logger *slog.Logger) *Store {
	return &Store{
		bucket: bucket,
		now:    time.Now,
		logger: logger,
	}
}

// Create writes the current snapshot under a name derived from the local time.
// Backups taken within the same second get a numeric suffix.
func (s *Store) Create(ctx context.Context, vault SnapshotSource) (string, error) {
	snapshot, err := vault.ExportSnapshot(ctx)
	if err != nil {
		return "", err
	}

	name, err := s.freeName(ctx)
	if err != nil {
		return "", err
	}

	opts := &blob.WriterOptions{ContentType: "application/octet-stream"}
	if err := s.bucket.WriteAll(ctx, name, snapshot, opts); err != nil {
		return "", fmt.Errorf("failed to write backup %s: %w", name, err)
	}

	s.logger.Info("backup created", slog.String("name", name), slog.Int("size", len(snapshot)))
	return name, nil
}

// List returns every backup in the bucket, newest first.
func (s *Store) List(ctx context.Context) ([]Backup, error) {
	var backups []Backup

	iter := s.bucket.List(&blob.ListOptions{Prefix: namePrefix})
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list backups: %w", err)
		}
		if obj.IsDir || !nameRegex.MatchString(obj.Key) {
			continue
		}
		backups = append(backups, Backup{Name: obj.Key, Size: obj.Size, ModTime: obj.ModTime})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

// Restore reads the named backup and imports it into vault.
func (s *Store) Restore(ctx context.Context, vault SnapshotSource, name string) error {
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidBackupName, name)
	}

	snapshot, err := s.bucket.ReadAll(ctx, name)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return fmt.Errorf("%w: %s", ErrBackupNotFound, name)
		}
		return fmt.Errorf("failed to read backup %s: %w", name, err)
	}

	if err := vault.ImportSnapshot(ctx, snapshot); err != nil {
		return err
	}

	s.logger.Info("backup restored", slog.String("name", name))
	return nil
}

// Close releases the bucket.
func (s *Store) Close() error {
	return s.bucket.Close()
}

func (s *Store) freeName(ctx context.Context) (string, error) {
	base := namePrefix + s.now().Format(timeLayout)

	name := base + nameSuffix
	for i := 1; ; i++ {
		exists, err := s.bucket.Exists(ctx, name)
		if err != nil {
			return "", fmt.Errorf("failed to check backup %s: %w", name, err)
		}
		if !exists {
			return name, nil
		}
		name = fmt.Sprintf("%s_%d%s", base, i, nameSuffix)
	}
}
