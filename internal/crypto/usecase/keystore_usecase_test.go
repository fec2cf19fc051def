package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/connvault/internal/crypto/domain"
	cryptoService "github.com/allisson/connvault/internal/crypto/service"
	cryptoUsecaseMocks "github.com/allisson/connvault/internal/crypto/usecase/mocks"
	apperrors "github.com/allisson/connvault/internal/errors"
	metricsMocks "github.com/allisson/connvault/internal/metrics/mocks"
	"github.com/allisson/connvault/internal/testutil"
)

// memoryKeyFiles is an in-memory KeyFileRepository.
type memoryKeyFiles struct {
	mu         sync.Mutex
	salt       []byte
	wrapped    []byte
	blobExists bool
	writeErr   error
	keyErr     error
}

func (m *memoryKeyFiles) ReadSalt(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.salt == nil {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "key.salt")
	}
	return append([]byte(nil), m.salt...), nil
}

func (m *memoryKeyFiles) WriteSalt(ctx context.Context, salt []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.salt = append([]byte(nil), salt...)
	return nil
}

func (m *memoryKeyFiles) ReadWrappedKey(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.wrapped == nil {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "key.bin.enc")
	}
	return append([]byte(nil), m.wrapped...), nil
}

func (m *memoryKeyFiles) WriteWrappedKey(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	if m.keyErr != nil {
		return m.keyErr
	}
	m.wrapped = append([]byte(nil), data...)
	return nil
}

func (m *memoryKeyFiles) BlobExists(ctx context.Context) (bool, error) {
	return m.blobExists, nil
}

func newTestKeyStore(t *testing.T, repo KeyFileRepository) KeyStoreUseCase {
	t.Helper()
	keyStore, err := NewKeyStoreUseCase(
		repo,
		cryptoService.NewKeyDeriver(),
		cryptoService.NewKeyManager(cryptoService.NewAEADManager()),
		testutil.FastKDFParams(),
		cryptoDomain.AESGCM,
		testutil.Logger(),
	)
	require.NoError(t, err)
	return keyStore
}

func dekOf(t *testing.T, keyring *cryptoDomain.Keyring) []byte {
	t.Helper()
	var out []byte
	require.NoError(t, keyring.WithKey(func(dek []byte) error {
		out = append([]byte(nil), dek...)
		return nil
	}))
	return out
}

func TestNewKeyStoreUseCase(t *testing.T) {
	t.Run("rejects weak kdf params", func(t *testing.T) {
		params := testutil.FastKDFParams()
		params.MemoryKiB = 1024
		_, err := NewKeyStoreUseCase(&memoryKeyFiles{}, nil, nil, params, cryptoDomain.AESGCM, testutil.Logger())
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKDFParams)
	})

	t.Run("rejects unknown algorithm", func(t *testing.T) {
		_, err := NewKeyStoreUseCase(
			&memoryKeyFiles{},
			nil,
			nil,
			testutil.FastKDFParams(),
			"rot13",
			testutil.Logger(),
		)
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})
}

func TestKeyStoreUseCase_Unlock(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_FirstUseCreatesKey", func(t *testing.T) {
		repo := &memoryKeyFiles{}
		keyStore := newTestKeyStore(t, repo)

		exists, err := keyStore.Exists(ctx)
		require.NoError(t, err)
		assert.False(t, exists)

		keyring, err := keyStore.Unlock(ctx, "correct-horse")
		require.NoError(t, err)
		defer keyring.Close()

		assert.Len(t, repo.salt, cryptoDomain.SaltSize)
		assert.Len(t, repo.wrapped, cryptoDomain.WrappedDekSize)
		assert.Equal(t, cryptoDomain.AESGCM, keyring.Algorithm)

		exists, err = keyStore.Exists(ctx)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Success_SecondUseReturnsSameKey", func(t *testing.T) {
		repo := &memoryKeyFiles{}
		keyStore := newTestKeyStore(t, repo)

		first, err := keyStore.Unlock(ctx, "correct-horse")
		require.NoError(t, err)
		defer first.Close()
		salt := append([]byte(nil), repo.salt...)
		wrapped := append([]byte(nil), repo.wrapped...)

		second, err := keyStore.Unlock(ctx, "correct-horse")
		require.NoError(t, err)
		defer second.Close()

		assert.Equal(t, dekOf(t, first), dekOf(t, second))
		assert.Equal(t, first.VaultID, second.VaultID)
		assert.Equal(t, salt, repo.salt, "unlock must not rewrite the salt")
		assert.Equal(t, wrapped, repo.wrapped, "unlock must not rewrite the wrapped key")
	})

	t.Run("Error_WrongPassword", func(t *testing.T) {
		repo := &memoryKeyFiles{}
		keyStore := newTestKeyStore(t, repo)

		keyring, err := keyStore.Unlock(ctx, "correct-horse")
		require.NoError(t, err)
		keyring.Close()

		_, err = keyStore.Unlock(ctx, "wrong-pw")
		assert.ErrorIs(t, err, cryptoDomain.ErrIncorrectPassword)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("Error_EmptyPasswordOnFirstUse", func(t *testing.T) {
		repo := &memoryKeyFiles{}
		keyStore := newTestKeyStore(t, repo)

		_, err := keyStore.Unlock(ctx, "")
		assert.ErrorIs(t, err, cryptoDomain.ErrPasswordRequired)
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
		assert.Nil(t, repo.salt)
		assert.Nil(t, repo.wrapped)
	})

	t.Run("Error_OrphanedBlob", func(t *testing.T) {
		repo := &memoryKeyFiles{blobExists: true}
		keyStore := newTestKeyStore(t, repo)

		_, err := keyStore.Unlock(ctx, "correct-horse")
		assert.ErrorIs(t, err, cryptoDomain.ErrOrphanedBlob)
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
		assert.Nil(t, repo.wrapped)
	})

	t.Run("Error_MissingSalt", func(t *testing.T) {
		repo := &memoryKeyFiles{}
		keyStore := newTestKeyStore(t, repo)

		keyring, err := keyStore.Unlock(ctx, "correct-horse")
		require.NoError(t, err)
		keyring.Close()

		repo.salt = nil
		_, err = keyStore.Unlock(ctx, "correct-horse")
		assert.ErrorIs(t, err, cryptoDomain.ErrMissingSalt)
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	})

	t.Run("Error_TruncatedFiles", func(t *testing.T) {
		repo := &memoryKeyFiles{}
		keyStore := newTestKeyStore(t, repo)

		keyring, err := keyStore.Unlock(ctx, "correct-horse")
		require.NoError(t, err)
		keyring.Close()
		goodSalt := repo.salt

		repo.salt = goodSalt[:8]
		_, err = keyStore.Unlock(ctx, "correct-horse")
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidSaltFile)

		repo.salt = goodSalt
		repo.wrapped = repo.wrapped[:40]
		_, err = keyStore.Unlock(ctx, "correct-horse")
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeyFile)
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	})

	t.Run("Error_BitFlipIsAuthenticationFailure", func(t *testing.T) {
		// version, aead code, vault id, nonce, ciphertext and tag
		offsets := []int{0, 1, 12, 20, 28, 35, 40, 60, 87}

		for _, offset := range offsets {
			repo := &memoryKeyFiles{}
			keyStore := newTestKeyStore(t, repo)

			keyring, err := keyStore.Unlock(ctx, "correct-horse")
			require.NoError(t, err)
			keyring.Close()

			repo.wrapped[offset] ^= 0x01
			_, err = keyStore.Unlock(ctx, "correct-horse")
			assert.ErrorIs(t, err, cryptoDomain.ErrIncorrectPassword, "offset %d", offset)
		}
	})

	t.Run("Error_KDFParamsOutOfBounds", func(t *testing.T) {
		repo := &memoryKeyFiles{}
		keyStore := newTestKeyStore(t, repo)

		keyring, err := keyStore.Unlock(ctx, "correct-horse")
		require.NoError(t, err)
		keyring.Close()

		// argon2 time cost far above the accepted maximum
		repo.wrapped[3] = 0xff
		_, err = keyStore.Unlock(ctx, "correct-horse")
		assert.ErrorIs(t, err, cryptoDomain.ErrIncorrectPassword)
	})

	t.Run("Error_WriteFailureIsPropagated", func(t *testing.T) {
		writeErr := errors.New("disk full")
		repo := &memoryKeyFiles{writeErr: writeErr}
		keyStore := newTestKeyStore(t, repo)

		_, err := keyStore.Unlock(ctx, "correct-horse")
		assert.ErrorIs(t, err, writeErr)
		assert.NotErrorIs(t, err, cryptoDomain.ErrIncorrectPassword)
	})

	t.Run("Success_SaltWithoutKeyIsFirstUse", func(t *testing.T) {
		repo := &memoryKeyFiles{salt: make([]byte, cryptoDomain.SaltSize)}
		keyStore := newTestKeyStore(t, repo)

		keyring, err := keyStore.Unlock(ctx, "correct-horse")
		require.NoError(t, err)
		defer keyring.Close()

		assert.NotEqual(t, make([]byte, cryptoDomain.SaltSize), repo.salt)
		assert.Len(t, repo.wrapped, cryptoDomain.WrappedDekSize)
	})
}

func TestKeyStoreUseCase_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_SameDekNewPassword", func(t *testing.T) {
		repo := &memoryKeyFiles{}
		keyStore := newTestKeyStore(t, repo)

		before, err := keyStore.Unlock(ctx, "correct-horse")
		require.NoError(t, err)
		defer before.Close()
		oldSalt := append([]byte(nil), repo.salt...)

		require.NoError(t, keyStore.ChangePassword(ctx, "correct-horse", "battery-staple"))
		assert.NotEqual(t, oldSalt, repo.salt)

		after, err := keyStore.Unlock(ctx, "battery-staple")
		require.NoError(t, err)
		defer after.Close()

		assert.Equal(t, dekOf(t, before), dekOf(t, after))
		assert.Equal(t, before.VaultID, after.VaultID)

		_, err = keyStore.Unlock(ctx, "correct-horse")
		assert.ErrorIs(t, err, cryptoDomain.ErrIncorrectPassword)
	})

	t.Run("Error_WrongOldPassword", func(t *testing.T) {
		repo := &memoryKeyFiles{}
		keyStore := newTestKeyStore(t, repo)

		keyring, err := keyStore.Unlock(ctx, "correct-horse")
		require.NoError(t, err)
		keyring.Close()
		wrapped := append([]byte(nil), repo.wrapped...)

		err = keyStore.ChangePassword(ctx, "nope", "battery-staple")
		assert.ErrorIs(t, err, cryptoDomain.ErrIncorrectPassword)
		assert.Equal(t, wrapped, repo.wrapped)
	})

	t.Run("Error_KeyWriteFailsKeepsOldPassword", func(t *testing.T) {
		repo := &memoryKeyFiles{}
		keyStore := newTestKeyStore(t, repo)

		before, err := keyStore.Unlock(ctx, "correct-horse")
		require.NoError(t, err)
		defer before.Close()
		salt := append([]byte(nil), repo.salt...)
		wrapped := append([]byte(nil), repo.wrapped...)

		diskFull := errors.New("disk full")
		repo.keyErr = diskFull

		err = keyStore.ChangePassword(ctx, "correct-horse", "battery-staple")
		assert.ErrorIs(t, err, diskFull)
		assert.Equal(t, salt, repo.salt)
		assert.Equal(t, wrapped, repo.wrapped)

		repo.keyErr = nil

		after, err := keyStore.Unlock(ctx, "correct-horse")
		require.NoError(t, err)
		defer after.Close()
		assert.Equal(t, dekOf(t, before), dekOf(t, after))

		_, err = keyStore.Unlock(ctx, "battery-staple")
		assert.ErrorIs(t, err, cryptoDomain.ErrIncorrectPassword)
	})

	t.Run("Error_EmptyNewPassword", func(t *testing.T) {
		keyStore := newTestKeyStore(t, &memoryKeyFiles{})
		err := keyStore.ChangePassword(ctx, "correct-horse", "")
		assert.ErrorIs(t, err, cryptoDomain.ErrPasswordRequired)
	})

	t.Run("Error_NotInitialized", func(t *testing.T) {
		keyStore := newTestKeyStore(t, &memoryKeyFiles{})
		err := keyStore.ChangePassword(ctx, "correct-horse", "battery-staple")
		assert.ErrorIs(t, err, cryptoDomain.ErrVaultNotInitialized)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestKeyStoreUseCaseWithLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("throttles after burst", func(t *testing.T) {
		next := &cryptoUsecaseMocks.MockKeyStoreUseCase{}
		next.On("Unlock", ctx, "bad").Return(nil, cryptoDomain.ErrIncorrectPassword).Twice()

		limited := NewKeyStoreUseCaseWithLimiter(next, 2, time.Hour)

		for range 2 {
			_, err := limited.Unlock(ctx, "bad")
			assert.ErrorIs(t, err, cryptoDomain.ErrIncorrectPassword)
		}

		_, err := limited.Unlock(ctx, "bad")
		assert.ErrorIs(t, err, cryptoDomain.ErrTooManyAttempts)
		assert.ErrorIs(t, err, apperrors.ErrLocked)

		err = limited.ChangePassword(ctx, "bad", "new-one")
		assert.ErrorIs(t, err, cryptoDomain.ErrTooManyAttempts)

		next.AssertExpectations(t)
	})

	t.Run("exists is not throttled", func(t *testing.T) {
		next := &cryptoUsecaseMocks.MockKeyStoreUseCase{}
		next.On("Exists", ctx).Return(true, nil).Times(3)

		limited := NewKeyStoreUseCaseWithLimiter(next, 1, time.Hour)
		for range 3 {
			exists, err := limited.Exists(ctx)
			require.NoError(t, err)
			assert.True(t, exists)
		}
		next.AssertExpectations(t)
	})
}

func TestKeyStoreUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		next := &cryptoUsecaseMocks.MockKeyStoreUseCase{}
		mockMetrics := &metricsMocks.MockBusinessMetrics{}

		next.On("ChangePassword", ctx, "a", "b").Return(nil).Once()
		mockMetrics.On("RecordOperation", ctx, "keystore", "keystore_change_password", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "keystore", "keystore_change_password",
			mock.AnythingOfType("time.Duration"), "success").Return().Once()

		decorator := NewKeyStoreUseCaseWithMetrics(next, mockMetrics)
		assert.NoError(t, decorator.ChangePassword(ctx, "a", "b"))

		next.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		next := &cryptoUsecaseMocks.MockKeyStoreUseCase{}
		mockMetrics := &metricsMocks.MockBusinessMetrics{}

		next.On("Unlock", ctx, "bad").Return(nil, cryptoDomain.ErrIncorrectPassword).Once()
		mockMetrics.On("RecordOperation", ctx, "keystore", "keystore_unlock", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "keystore", "keystore_unlock",
			mock.AnythingOfType("time.Duration"), "error").Return().Once()

		decorator := NewKeyStoreUseCaseWithMetrics(next, mockMetrics)
		keyring, err := decorator.Unlock(ctx, "bad")
		assert.Nil(t, keyring)
		assert.ErrorIs(t, err, cryptoDomain.ErrIncorrectPassword)

		next.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})
}
