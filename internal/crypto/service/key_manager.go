package service

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/connvault/internal/crypto/domain"
)

// KeyManagerService implements the KeyManager interface for envelope encryption.
//
// The DEK is sealed under the password-derived wrapping key with the record
// header as associated data. The service uses AEADManager to create cipher
// instances so the algorithm stays a per-record choice.
type KeyManagerService struct {
	aeadManager AEADManager
}

// NewKeyManager creates a new KeyManagerService instance with the provided AEADManager.
func NewKeyManager(aeadManager AEADManager) *KeyManagerService {
	return &KeyManagerService{
		aeadManager: aeadManager,
	}
}

// CreateDek generates a random 32-byte DEK and wraps it with wrappingKey.
func (km *KeyManagerService) CreateDek(
	wrappingKey []byte,
	alg cryptoDomain.Algorithm,
	kdf cryptoDomain.KDFParams,
	vaultID uuid.UUID,
) (cryptoDomain.WrappedDek, []byte, error) {
	dek := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(dek); err != nil {
		return cryptoDomain.WrappedDek{}, nil, fmt.Errorf("failed to generate DEK: %w", err)
	}

	wrapped, err := km.WrapDek(dek, wrappingKey, alg, kdf, vaultID)
	if err != nil {
		cryptoDomain.Zero(dek)
		return cryptoDomain.WrappedDek{}, nil, err
	}

	return wrapped, dek, nil
}

// WrapDek seals dek with wrappingKey using alg. The KDF parameters and vault ID
// are recorded in the header and authenticated.
func (km *KeyManagerService) WrapDek(
	dek []byte,
	wrappingKey []byte,
	alg cryptoDomain.Algorithm,
	kdf cryptoDomain.KDFParams,
	vaultID uuid.UUID,
) (cryptoDomain.WrappedDek, error) {
	if len(dek) != cryptoDomain.KeySize {
		return cryptoDomain.WrappedDek{}, cryptoDomain.ErrInvalidKeySize
	}

	aead, err := km.aeadManager.CreateCipher(wrappingKey, alg)
	if err != nil {
		return cryptoDomain.WrappedDek{}, err
	}

	wrapped := cryptoDomain.WrappedDek{
		Version:   cryptoDomain.WrappedDekVersion,
		VaultID:   vaultID,
		Algorithm: alg,
		KDF:       kdf,
	}

	header, err := wrapped.Header()
	if err != nil {
		return cryptoDomain.WrappedDek{}, err
	}

	encryptedKey, nonce, err := aead.Encrypt(dek, header)
	if err != nil {
		return cryptoDomain.WrappedDek{}, fmt.Errorf("failed to encrypt DEK: %w", err)
	}

	wrapped.EncryptedKey = encryptedKey
	wrapped.Nonce = nonce
	return wrapped, nil
}

// DecryptDek recovers the plaintext DEK. The result must be kept in memory only.
func (km *KeyManagerService) DecryptDek(
	wrapped cryptoDomain.WrappedDek,
	wrappingKey []byte,
) ([]byte, error) {
	aead, err := km.aeadManager.CreateCipher(wrappingKey, wrapped.Algorithm)
	if err != nil {
		return nil, err
	}

	header, err := wrapped.Header()
	if err != nil {
		return nil, err
	}

	dek, err := aead.Decrypt(wrapped.EncryptedKey, wrapped.Nonce, header)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	if len(dek) != cryptoDomain.KeySize {
		cryptoDomain.Zero(dek)
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return dek, nil
}
