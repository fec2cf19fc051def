package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/connvault/internal/crypto/domain"
	cryptoService "github.com/allisson/connvault/internal/crypto/service"
	apperrors "github.com/allisson/connvault/internal/errors"
)

// keyStoreUseCase implements KeyStoreUseCase.
//
// kdfParams and algorithm apply only to keys created (or re-wrapped) by this
// instance. Unlocking always uses the parameters recorded in the wrapped key.
type keyStoreUseCase struct {
	repo       KeyFileRepository
	keyDeriver cryptoService.KeyDeriver
	keyManager cryptoService.KeyManager
	kdfParams  cryptoDomain.KDFParams
	algorithm  cryptoDomain.Algorithm
	logger     *slog.Logger
}

// Exists reports whether the wrapped key file is present.
func (k *keyStoreUseCase) Exists(ctx context.Context) (bool, error) {
	_, err := k.repo.ReadWrappedKey(ctx)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Unlock creates the vault key on first use, otherwise unwraps the stored one.
func (k *keyStoreUseCase) Unlock(ctx context.Context, password string) (*cryptoDomain.Keyring, error) {
	wrappedData, err := k.repo.ReadWrappedKey(ctx)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return k.create(ctx, password)
		}
		return nil, err
	}

	wrapped, dek, err := k.unwrap(ctx, wrappedData, password)
	if err != nil {
		return nil, err
	}

	k.logger.Debug("vault key unlocked",
		slog.String("vault_id", wrapped.VaultID.String()),
		slog.String("kdf", string(wrapped.KDF.Algorithm)),
	)

	return cryptoDomain.NewKeyring(wrapped.VaultID, wrapped.Algorithm, dek)
}

// ChangePassword unwraps the DEK with oldPassword and persists it wrapped under
// newPassword. If the wrapped key cannot be written the previous salt is put
// back, so the old password keeps working.
func (k *keyStoreUseCase) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if newPassword == "" {
		return cryptoDomain.ErrPasswordRequired
	}

	wrappedData, err := k.repo.ReadWrappedKey(ctx)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return cryptoDomain.ErrVaultNotInitialized
		}
		return err
	}

	current, dek, err := k.unwrap(ctx, wrappedData, oldPassword)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(dek)

	oldSalt, err := k.repo.ReadSalt(ctx)
	if err != nil {
		return err
	}

	salt, err := newSalt()
	if err != nil {
		return err
	}

	wrappingKey, err := k.keyDeriver.Derive([]byte(newPassword), salt, k.kdfParams)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(wrappingKey)

	rewrapped, err := k.keyManager.WrapDek(dek, wrappingKey, current.Algorithm, k.kdfParams, current.VaultID)
	if err != nil {
		return err
	}

	if err := k.persist(ctx, salt, rewrapped); err != nil {
		if apperrors.Is(err, errKeyWrite) {
			if restoreErr := k.repo.WriteSalt(ctx, oldSalt); restoreErr != nil {
				k.logger.Error("failed to restore previous salt",
					slog.String("vault_id", current.VaultID.String()),
					slog.Any("error", restoreErr),
				)
			}
		}
		return err
	}

	k.logger.Info("master password changed",
		slog.String("vault_id", current.VaultID.String()),
		slog.String("kdf", string(k.kdfParams.Algorithm)),
	)
	return nil
}

// create mints the salt, DEK and vault ID of a new vault.
func (k *keyStoreUseCase) create(ctx context.Context, password string) (*cryptoDomain.Keyring, error) {
	if password == "" {
		return nil, cryptoDomain.ErrPasswordRequired
	}

	// A fresh DEK could never open data written under a previous one.
	blobExists, err := k.repo.BlobExists(ctx)
	if err != nil {
		return nil, err
	}
	if blobExists {
		return nil, cryptoDomain.ErrOrphanedBlob
	}

	salt, err := newSalt()
	if err != nil {
		return nil, err
	}

	vaultID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate vault id: %w", err)
	}

	wrappingKey, err := k.keyDeriver.Derive([]byte(password), salt, k.kdfParams)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(wrappingKey)

	wrapped, dek, err := k.keyManager.CreateDek(wrappingKey, k.algorithm, k.kdfParams, vaultID)
	if err != nil {
		return nil, err
	}

	if err := k.persist(ctx, salt, wrapped); err != nil {
		cryptoDomain.Zero(dek)
		return nil, err
	}

	k.logger.Info("vault key created",
		slog.String("vault_id", vaultID.String()),
		slog.String("kdf", string(k.kdfParams.Algorithm)),
		slog.String("algorithm", string(k.algorithm)),
	)

	return cryptoDomain.NewKeyring(vaultID, k.algorithm, dek)
}

// unwrap parses the stored record and opens it with password.
//
// Header fields that fail to parse, and KDF parameters outside the accepted
// bounds, can only come from a modified file, so they are reported the same way
// as a failed AEAD open.
func (k *keyStoreUseCase) unwrap(
	ctx context.Context,
	wrappedData []byte,
	password string,
) (cryptoDomain.WrappedDek, []byte, error) {
	salt, err := k.repo.ReadSalt(ctx)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return cryptoDomain.WrappedDek{}, nil, cryptoDomain.ErrMissingSalt
		}
		return cryptoDomain.WrappedDek{}, nil, err
	}
	if len(salt) != cryptoDomain.SaltSize {
		return cryptoDomain.WrappedDek{}, nil, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			cryptoDomain.ErrInvalidSaltFile,
			cryptoDomain.SaltSize,
			len(salt),
		)
	}

	wrapped, err := cryptoDomain.ParseWrappedDek(wrappedData)
	if err != nil {
		if apperrors.Is(err, cryptoDomain.ErrInvalidKeyFile) {
			return cryptoDomain.WrappedDek{}, nil, err
		}
		return cryptoDomain.WrappedDek{}, nil, cryptoDomain.ErrIncorrectPassword
	}

	wrappingKey, err := k.keyDeriver.Derive([]byte(password), salt, wrapped.KDF)
	if err != nil {
		if apperrors.Is(err, cryptoDomain.ErrInvalidKDFParams) ||
			apperrors.Is(err, cryptoDomain.ErrUnsupportedKDF) {
			return cryptoDomain.WrappedDek{}, nil, cryptoDomain.ErrIncorrectPassword
		}
		return cryptoDomain.WrappedDek{}, nil, err
	}
	defer cryptoDomain.Zero(wrappingKey)

	dek, err := k.keyManager.DecryptDek(wrapped, wrappingKey)
	if err != nil {
		if apperrors.Is(err, cryptoDomain.ErrDecryptionFailed) {
			return cryptoDomain.WrappedDek{}, nil, cryptoDomain.ErrIncorrectPassword
		}
		return cryptoDomain.WrappedDek{}, nil, err
	}

	return wrapped, dek, nil
}

// errKeyWrite marks a persist failure that happened after the salt was written.
var errKeyWrite = apperrors.New("failed to write wrapped key")

// persist writes the salt, then the wrapped key.
func (k *keyStoreUseCase) persist(ctx context.Context, salt []byte, wrapped cryptoDomain.WrappedDek) error {
	data, err := wrapped.MarshalBinary()
	if err != nil {
		return err
	}
	if err := k.repo.WriteSalt(ctx, salt); err != nil {
		return err
	}
	if err := k.repo.WriteWrappedKey(ctx, data); err != nil {
		return fmt.Errorf("%w: %w", errKeyWrite, err)
	}
	return nil
}

func newSalt() ([]byte, error) {
	salt := make([]byte, cryptoDomain.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// NewKeyStoreUseCase creates a KeyStoreUseCase. New keys are derived with
// kdfParams and wrapped with algorithm.
func NewKeyStoreUseCase(
	repo KeyFileRepository,
	keyDeriver cryptoService.KeyDeriver,
	keyManager cryptoService.KeyManager,
	kdfParams cryptoDomain.KDFParams,
	algorithm cryptoDomain.Algorithm,
	logger *slog.Logger,
) (KeyStoreUseCase, error) {
	if err := kdfParams.Validate(); err != nil {
		return nil, err
	}
	if _, err := cryptoDomain.AlgorithmCode(algorithm); err != nil {
		return nil, err
	}
	return &keyStoreUseCase{
		repo:       repo,
		keyDeriver: keyDeriver,
		keyManager: keyManager,
		kdfParams:  kdfParams,
		algorithm:  algorithm,
		logger:     logger,
	}, nil
}
