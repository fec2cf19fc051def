package service

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/connvault/internal/crypto/domain"
)

func TestNewKeyManager(t *testing.T) {
	km := NewKeyManager(NewAEADManager())
	assert.NotNil(t, km)
	assert.NotNil(t, km.aeadManager)
}

func newWrappingKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestKeyManagerService_CreateDek(t *testing.T) {
	km := NewKeyManager(NewAEADManager())
	wrappingKey := newWrappingKey(t)
	vaultID := uuid.Must(uuid.NewV7())

	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
		t.Run(string(alg), func(t *testing.T) {
			wrapped, dek, err := km.CreateDek(wrappingKey, alg, fastArgon2, vaultID)
			require.NoError(t, err)

			assert.Len(t, dek, cryptoDomain.KeySize)
			assert.Equal(t, alg, wrapped.Algorithm)
			assert.Equal(t, vaultID, wrapped.VaultID)
			assert.Equal(t, fastArgon2, wrapped.KDF)
			assert.Equal(t, uint8(cryptoDomain.WrappedDekVersion), wrapped.Version)
			assert.Len(t, wrapped.Nonce, cryptoDomain.NonceSize)
			assert.Len(t, wrapped.EncryptedKey, cryptoDomain.KeySize+cryptoDomain.TagSize)
			assert.False(t, bytes.Contains(wrapped.EncryptedKey, dek))

			decrypted, err := km.DecryptDek(wrapped, wrappingKey)
			require.NoError(t, err)
			assert.Equal(t, dek, decrypted)
		})
	}

	t.Run("each DEK is random", func(t *testing.T) {
		_, dek1, err := km.CreateDek(wrappingKey, cryptoDomain.AESGCM, fastArgon2, vaultID)
		require.NoError(t, err)
		_, dek2, err := km.CreateDek(wrappingKey, cryptoDomain.AESGCM, fastArgon2, vaultID)
		require.NoError(t, err)
		assert.NotEqual(t, dek1, dek2)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		_, _, err := km.CreateDek(wrappingKey, "invalid", fastArgon2, vaultID)
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})

	t.Run("invalid wrapping key size", func(t *testing.T) {
		_, _, err := km.CreateDek(make([]byte, 16), cryptoDomain.AESGCM, fastArgon2, vaultID)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}

func TestKeyManagerService_DecryptDek(t *testing.T) {
	km := NewKeyManager(NewAEADManager())
	wrappingKey := newWrappingKey(t)
	vaultID := uuid.Must(uuid.NewV7())

	wrapped, _, err := km.CreateDek(wrappingKey, cryptoDomain.ChaCha20, fastArgon2, vaultID)
	require.NoError(t, err)

	t.Run("wrong wrapping key", func(t *testing.T) {
		_, err := km.DecryptDek(wrapped, newWrappingKey(t))
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		tampered := wrapped
		tampered.EncryptedKey = bytes.Clone(wrapped.EncryptedKey)
		tampered.EncryptedKey[5] ^= 0x80
		_, err := km.DecryptDek(tampered, wrappingKey)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("tampered header", func(t *testing.T) {
		tampered := wrapped
		tampered.KDF.Iterations++
		_, err := km.DecryptDek(tampered, wrappingKey)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("different vault id", func(t *testing.T) {
		tampered := wrapped
		tampered.VaultID = uuid.Must(uuid.NewV7())
		_, err := km.DecryptDek(tampered, wrappingKey)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})
}

func TestKeyManagerService_WrapDek(t *testing.T) {
	km := NewKeyManager(NewAEADManager())
	vaultID := uuid.Must(uuid.NewV7())

	t.Run("rewrap keeps the same DEK", func(t *testing.T) {
		oldKey := newWrappingKey(t)
		newKey := newWrappingKey(t)

		original, dek, err := km.CreateDek(oldKey, cryptoDomain.AESGCM, fastArgon2, vaultID)
		require.NoError(t, err)

		rewrapped, err := km.WrapDek(dek, newKey, cryptoDomain.AESGCM, minPBKDF2, vaultID)
		require.NoError(t, err)
		assert.NotEqual(t, original.EncryptedKey, rewrapped.EncryptedKey)

		recovered, err := km.DecryptDek(rewrapped, newKey)
		require.NoError(t, err)
		assert.Equal(t, dek, recovered)

		_, err = km.DecryptDek(rewrapped, oldKey)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("invalid DEK size", func(t *testing.T) {
		_, err := km.WrapDek([]byte("short"), newWrappingKey(t), cryptoDomain.AESGCM, fastArgon2, vaultID)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}
