// Package usecase implements the envelope key store: creating the vault key on
// first use, unlocking it with the master password and re-wrapping it when the
// password changes.
package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/connvault/internal/crypto/domain"
)

// KeyFileRepository persists the salt and the wrapped DEK.
//
// Read methods return an error wrapping apperrors.ErrNotFound when the file does
// not exist. Writes must be atomic: a reader sees either the old or the new contents.
type KeyFileRepository interface {
	ReadSalt(ctx context.Context) ([]byte, error)
	WriteSalt(ctx context.Context, salt []byte) error
	ReadWrappedKey(ctx context.Context) ([]byte, error)
	WriteWrappedKey(ctx context.Context, data []byte) error

	// BlobExists reports whether encrypted profile data is already present.
	BlobExists(ctx context.Context) (bool, error)
}

// KeyStoreUseCase manages the vault DEK behind the master password.
type KeyStoreUseCase interface {
	// Exists reports whether a wrapped key has been created.
	Exists(ctx context.Context) (bool, error)

	// Unlock returns the keyring for password.
	//
	// On first use a salt, a DEK and a vault ID are generated and persisted.
	// Afterwards the stored DEK is unwrapped; any authentication failure yields
	// ErrIncorrectPassword. The caller owns the keyring and must Close it.
	Unlock(ctx context.Context, password string) (*cryptoDomain.Keyring, error)

	// ChangePassword re-wraps the existing DEK under newPassword and a fresh salt.
	// The encrypted profile data is untouched.
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
}
