package backup

import (
	"context"
	"time"

	"github.com/allisson/connvault/internal/metrics"
)

// useCaseWithMetrics decorates UseCase with metrics instrumentation.
type useCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewUseCaseWithMetrics wraps a backup UseCase with metrics recording.
func NewUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &useCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (u *useCaseWithMetrics) Create(ctx context.Context, vault SnapshotSource) (string, error) {
	start := time.Now()
	name, err := u.next.Create(ctx, vault)
	u.record(ctx, "backup_create", start, err)
	return name, err
}

func (u *useCaseWithMetrics) List(ctx context.Context) ([]Backup, error) {
	start := time.Now()
	backups, err := u.next.List(ctx)
	u.record(ctx, "backup_list", start, err)
	return backups, err
}

func (u *useCaseWithMetrics) Restore(ctx context.Context, vault SnapshotSource, name string) error {
	start := time.Now()
	err := u.next.Restore(ctx, vault, name)
	u.record(ctx, "backup_restore", start, err)
	return err
}

func (u *useCaseWithMetrics) Close() error {
	return u.next.Close()
}

func (u *useCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}

	u.metrics.RecordOperation(ctx, "backup", operation, status)
	u.metrics.RecordDuration(ctx, "backup", operation, time.Since(start), status)
}
