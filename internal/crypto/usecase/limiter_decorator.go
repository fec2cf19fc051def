package usecase

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	cryptoDomain "github.com/allisson/connvault/internal/crypto/domain"
)

// keyStoreUseCaseWithLimiter throttles password attempts with a token bucket.
type keyStoreUseCaseWithLimiter struct {
	next    KeyStoreUseCase
	limiter *rate.Limiter
}

// NewKeyStoreUseCaseWithLimiter allows burst password attempts, refilled one
// every interval. Exists is never throttled.
func NewKeyStoreUseCaseWithLimiter(useCase KeyStoreUseCase, burst int, interval time.Duration) KeyStoreUseCase {
	return &keyStoreUseCaseWithLimiter{
		next:    useCase,
		limiter: rate.NewLimiter(rate.Every(interval), burst),
	}
}

func (k *keyStoreUseCaseWithLimiter) Exists(ctx context.Context) (bool, error) {
	return k.next.Exists(ctx)
}

func (k *keyStoreUseCaseWithLimiter) Unlock(ctx context.Context, password string) (*cryptoDomain.Keyring, error) {
	if !k.limiter.Allow() {
		return nil, cryptoDomain.ErrTooManyAttempts
	}
	return k.next.Unlock(ctx, password)
}

func (k *keyStoreUseCaseWithLimiter) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if !k.limiter.Allow() {
		return cryptoDomain.ErrTooManyAttempts
	}
	return k.next.ChangePassword(ctx, oldPassword, newPassword)
}
