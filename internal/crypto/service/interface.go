// Package service provides the cryptographic primitives of the vault's envelope encryption:
// AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305), password key derivation and DEK wrapping.
package service

import (
	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/connvault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and a fresh nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyDeriver turns a master password into a wrapping key.
type KeyDeriver interface {
	// Derive returns a 32-byte key. Deterministic for equal inputs.
	Derive(password, salt []byte, params cryptoDomain.KDFParams) ([]byte, error)
}

// KeyManager defines DEK generation and wrapping.
type KeyManager interface {
	// CreateDek generates a random DEK and wraps it. The plaintext DEK is returned
	// alongside the record; the caller owns it and must zero it.
	CreateDek(
		wrappingKey []byte,
		alg cryptoDomain.Algorithm,
		kdf cryptoDomain.KDFParams,
		vaultID uuid.UUID,
	) (cryptoDomain.WrappedDek, []byte, error)

	// WrapDek seals an existing DEK under wrappingKey.
	WrapDek(
		dek []byte,
		wrappingKey []byte,
		alg cryptoDomain.Algorithm,
		kdf cryptoDomain.KDFParams,
		vaultID uuid.UUID,
	) (cryptoDomain.WrappedDek, error)

	// DecryptDek opens a wrapped DEK. Returns ErrDecryptionFailed on authentication failure.
	DecryptDek(wrapped cryptoDomain.WrappedDek, wrappingKey []byte) ([]byte, error)
}
