package usecase

import (
	"context"
	"time"

	cryptoDomain "github.com/allisson/connvault/internal/crypto/domain"
	"github.com/allisson/connvault/internal/metrics"
)

// keyStoreUseCaseWithMetrics decorates KeyStoreUseCase with metrics instrumentation.
type keyStoreUseCaseWithMetrics struct {
	next    KeyStoreUseCase
	metrics metrics.BusinessMetrics
}

// NewKeyStoreUseCaseWithMetrics wraps a KeyStoreUseCase with metrics recording.
func NewKeyStoreUseCaseWithMetrics(useCase KeyStoreUseCase, m metrics.BusinessMetrics) KeyStoreUseCase {
	return &keyStoreUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Exists records metrics for key presence checks.
func (k *keyStoreUseCaseWithMetrics) Exists(ctx context.Context) (bool, error) {
	start := time.Now()
	exists, err := k.next.Exists(ctx)
	k.record(ctx, "keystore_exists", start, err)
	return exists, err
}

// Unlock records metrics for unlock attempts, including rejected passwords.
func (k *keyStoreUseCaseWithMetrics) Unlock(ctx context.Context, password string) (*cryptoDomain.Keyring, error) {
	start := time.Now()
	keyring, err := k.next.Unlock(ctx, password)
	k.record(ctx, "keystore_unlock", start, err)
	return keyring, err
}

// ChangePassword records metrics for password changes.
func (k *keyStoreUseCaseWithMetrics) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	start := time.Now()
	err := k.next.ChangePassword(ctx, oldPassword, newPassword)
	k.record(ctx, "keystore_change_password", start, err)
	return err
}

func (k *keyStoreUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}

	k.metrics.RecordOperation(ctx, "keystore", operation, status)
	k.metrics.RecordDuration(ctx, "keystore", operation, time.Since(start), status)
}
