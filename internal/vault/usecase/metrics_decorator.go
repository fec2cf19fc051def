package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/connvault/internal/metrics"
	vaultDomain "github.com/allisson/connvault/internal/vault/domain"
)

// vaultUseCaseWithMetrics decorates VaultUseCase with metrics instrumentation.
type vaultUseCaseWithMetrics struct {
	next    VaultUseCase
	metrics metrics.BusinessMetrics
}

// NewVaultUseCaseWithMetrics wraps a VaultUseCase with metrics recording.
func NewVaultUseCaseWithMetrics(useCase VaultUseCase, m metrics.BusinessMetrics) VaultUseCase {
	return &vaultUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (v *vaultUseCaseWithMetrics) VaultID() uuid.UUID {
	return v.next.VaultID()
}

// List records metrics for profile listings.
func (v *vaultUseCaseWithMetrics) List(ctx context.Context) ([]vaultDomain.ConnectionProfile, error) {
	start := time.Now()
	profiles, err := v.next.List(ctx)
	v.record(ctx, "profile_list", start, err)
	return profiles, err
}

// Snapshot records metrics for generation-tagged listings.
func (v *vaultUseCaseWithMetrics) Snapshot(ctx context.Context) (vaultDomain.Listing, error) {
	start := time.Now()
	listing, err := v.next.Snapshot(ctx)
	v.record(ctx, "profile_snapshot", start, err)
	return listing, err
}

// Get is not instrumented; it cannot fail.
func (v *vaultUseCaseWithMetrics) Get(ctx context.Context, index int) (*vaultDomain.ConnectionProfile, bool) {
	return v.next.Get(ctx, index)
}

// Add records metrics for profile creation.
func (v *vaultUseCaseWithMetrics) Add(ctx context.Context, profile vaultDomain.ConnectionProfile) error {
	start := time.Now()
	err := v.next.Add(ctx, profile)
	v.record(ctx, "profile_add", start, err)
	return err
}

// Update records metrics for profile updates.
func (v *vaultUseCaseWithMetrics) Update(ctx context.Context, index int, profile vaultDomain.ConnectionProfile) error {
	start := time.Now()
	err := v.next.Update(ctx, index, profile)
	v.record(ctx, "profile_update", start, err)
	return err
}

// UpdateAt records metrics for generation-checked profile updates.
func (v *vaultUseCaseWithMetrics) UpdateAt(
	ctx context.Context,
	generation uint64,
	index int,
	profile vaultDomain.ConnectionProfile,
) error {
	start := time.Now()
	err := v.next.UpdateAt(ctx, generation, index, profile)
	v.record(ctx, "profile_update", start, err)
	return err
}

// Remove records metrics for profile removal.
func (v *vaultUseCaseWithMetrics) Remove(ctx context.Context, index int) error {
	start := time.Now()
	err := v.next.Remove(ctx, index)
	v.record(ctx, "profile_remove", start, err)
	return err
}

// RemoveAt records metrics for generation-checked profile removal.
func (v *vaultUseCaseWithMetrics) RemoveAt(ctx context.Context, generation uint64, index int) error {
	start := time.Now()
	err := v.next.RemoveAt(ctx, generation, index)
	v.record(ctx, "profile_remove", start, err)
	return err
}

// ReplaceAll records metrics for whole-list replacement.
func (v *vaultUseCaseWithMetrics) ReplaceAll(ctx context.Context, profiles []vaultDomain.ConnectionProfile) error {
	start := time.Now()
	err := v.next.ReplaceAll(ctx, profiles)
	v.record(ctx, "profile_replace_all", start, err)
	return err
}

// ExportSnapshot records metrics for encrypted exports.
func (v *vaultUseCaseWithMetrics) ExportSnapshot(ctx context.Context) ([]byte, error) {
	start := time.Now()
	blob, err := v.next.ExportSnapshot(ctx)
	v.record(ctx, "snapshot_export", start, err)
	return blob, err
}

// ImportSnapshot records metrics for encrypted imports.
func (v *vaultUseCaseWithMetrics) ImportSnapshot(ctx context.Context, blob []byte) error {
	start := time.Now()
	err := v.next.ImportSnapshot(ctx, blob)
	v.record(ctx, "snapshot_import", start, err)
	return err
}

// ExportPlain records metrics for plain JSON exports.
func (v *vaultUseCaseWithMetrics) ExportPlain(ctx context.Context) ([]byte, error) {
	start := time.Now()
	data, err := v.next.ExportPlain(ctx)
	v.record(ctx, "plain_export", start, err)
	return data, err
}

// ImportPlain records metrics for plain JSON imports.
func (v *vaultUseCaseWithMetrics) ImportPlain(ctx context.Context, data []byte) error {
	start := time.Now()
	err := v.next.ImportPlain(ctx, data)
	v.record(ctx, "plain_import", start, err)
	return err
}

func (v *vaultUseCaseWithMetrics) Close() error {
	return v.next.Close()
}

func (v *vaultUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}

	v.metrics.RecordOperation(ctx, "vault", operation, status)
	v.metrics.RecordDuration(ctx, "vault", operation, time.Since(start), status)
}
